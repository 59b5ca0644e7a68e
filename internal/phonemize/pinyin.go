package phonemize

import (
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/example/go-pocket-tts/internal/text"
)

// pinyinArgs configures go-pinyin for TONE3-style output (e.g. "zhong1",
// "guo2"), matching the bilingual and Kokoro phonemizers' intermediate
// representation.
var pinyinArgs = newPinyinArgs()

func newPinyinArgs() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Tone3
	a.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}
	return a
}

// ToPinyinSyllables converts a run of CJK characters to TONE3-style pinyin
// syllables, one per character, appending the neutral-tone digit "5" to any
// syllable go-pinyin emits without a trailing tone number.
func ToPinyinSyllables(s string) []string {
	syllables := pinyin.LazyPinyin(s, pinyinArgs)
	for i, syl := range syllables {
		syllables[i] = ensureToneDigit(syl)
	}
	return syllables
}

func ensureToneDigit(syl string) string {
	if syl == "" {
		return syl
	}
	last := syl[len(syl)-1]
	if last >= '1' && last <= '5' {
		return syl
	}
	return syl + "5"
}

// ToPinyinString joins the per-character pinyin syllables of s with spaces.
func ToPinyinString(s string) string {
	return strings.Join(ToPinyinSyllables(s), " ")
}

// digitRunToPinyin reads a run of ASCII digits as a Chinese number (with
// "点" for any decimal point) and converts that reading to pinyin
// syllables, for the bilingual phonemizer's digit-run handling.
func digitRunToPinyin(digits string) []string {
	reading := chineseDigitRunReading(digits)
	return ToPinyinSyllables(reading)
}

// chineseDigitRunReading reads a bare digit run (optionally containing one
// decimal point) character-by-character in Chinese, using "点" for the
// decimal point.
func chineseDigitRunReading(digits string) string {
	var b strings.Builder
	for _, r := range digits {
		if r == '.' {
			b.WriteString("点")
			continue
		}
		if text.IsASCIIDigit(r) {
			d := int(r - '0')
			b.WriteString(chineseDigitGlyphs[d])
			continue
		}
	}
	return b.String()
}

var chineseDigitGlyphs = [10]string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
