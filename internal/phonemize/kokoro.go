package phonemize

import (
	"context"
	"strings"

	"github.com/example/go-pocket-tts/internal/text"
)

// kokoroMaxTokens is the fixed input length the Kokoro ONNX graph expects;
// shorter sequences are zero-padded, longer ones truncated (spec §4.3.4).
const kokoroMaxTokens = 512

// kokoroPadID is both the padding id and the start/end sentinel.
const kokoroPadID = 0

// kokoroVocab is the fixed 114-entry sparse vocabulary (ids 0-177) Kokoro's
// text encoder was trained against. Entry 0 is reserved for PAD/start-end;
// the remaining 113 entries cover ASCII punctuation, the four Gruut-US tone
// arrows, the Latin alphabet plus the five Gruut-US diphthong letters, the
// core IPA phoneme inventory Gruut-US and the pinyin G2P below emit, stress
// and length marks, ASCII digits, and a tail of secondary IPA diacritics.
var kokoroVocab = buildKokoroVocab()

func buildKokoroVocab() map[rune]int {
	pairs := []struct {
		sym rune
		id  int
	}{
		{' ', 2}, {',', 3}, {'.', 5}, {'!', 6}, {'?', 8}, {';', 9}, {':', 11},
		{'\'', 13}, {'"', 14}, {'-', 16}, {'—', 17}, {'…', 19}, {'(', 20},
		{')', 22}, {'[', 23}, {']', 25},
		{'→', 27}, {'↗', 28}, {'↓', 30}, {'↘', 31},
		{'a', 33}, {'b', 34}, {'c', 36}, {'d', 38}, {'e', 39}, {'f', 41},
		{'g', 42}, {'h', 44}, {'i', 45}, {'j', 47}, {'k', 49}, {'l', 50},
		{'m', 52}, {'n', 53}, {'o', 55}, {'p', 56}, {'q', 58}, {'r', 60},
		{'s', 61}, {'t', 63}, {'u', 64}, {'v', 66}, {'w', 67}, {'x', 69},
		{'y', 70}, {'z', 72},
		{'A', 74}, {'I', 75}, {'O', 77}, {'W', 78}, {'Y', 80},
		{'ɡ', 81}, {'ɹ', 83}, {'ʃ', 85}, {'ʒ', 86}, {'θ', 88}, {'ð', 89},
		{'ŋ', 91}, {'ə', 92}, {'ɪ', 94}, {'ʊ', 96}, {'ɛ', 97}, {'ɔ', 99},
		{'æ', 100}, {'ʌ', 102}, {'ɑ', 103}, {'ʧ', 105}, {'ʤ', 107}, {'ɻ', 108},
		{'ɜ', 110},
		{'ˈ', 111}, {'ˌ', 113}, {'ː', 114},
		{'0', 116}, {'1', 117}, {'2', 119}, {'3', 121}, {'4', 122}, {'5', 124},
		{'6', 125}, {'7', 127}, {'8', 128}, {'9', 130},
		{'ʰ', 132}, {'ʲ', 133}, {'ʷ', 135}, {'ˠ', 136}, {'ʼ', 138}, {'˞', 139},
		{'ʔ', 141}, {'χ', 143}, {'ɲ', 144}, {'ɣ', 146}, {'ɾ', 147}, {'ʍ', 149},
		{'ʎ', 150}, {'ʐ', 152}, {'ʑ', 154}, {'ɢ', 155}, {'ɴ', 157}, {'ʁ', 158},
		{'ɦ', 160}, {'ɸ', 161}, {'β', 163}, {'ɕ', 164}, {'ɟ', 166}, {'ɳ', 168},
		{'ʂ', 169}, {'ɰ', 171}, {'ɭ', 172}, {'ʙ', 174}, {'ⱱ', 175}, {'ɽ', 177},
	}
	m := make(map[rune]int, len(pairs)+1)
	for _, p := range pairs {
		m[p.sym] = p.id
	}
	return m
}

// toneArrow maps a pinyin Tone3 digit to the Gruut-US tone-arrow glyph.
// Tone 5 (neutral) carries no arrow.
func toneArrow(digit byte) string {
	switch digit {
	case '1':
		return "→"
	case '2':
		return "↗"
	case '3':
		return "↓"
	case '4':
		return "↘"
	default:
		return ""
	}
}

// pinyinInitials lists recognized syllable-initial consonants, longest
// first so "zh"/"ch"/"sh" match before their leading letter alone.
var pinyinInitials = []string{
	"zh", "ch", "sh",
	"b", "p", "m", "f", "d", "t", "n", "l", "g", "k", "h",
	"j", "q", "x", "r", "z", "c", "s", "y", "w",
}

// pinyinInitialIPA renders each initial's IPA approximation in the Gruut-US
// flavored symbol set the Kokoro vocabulary contains.
var pinyinInitialIPA = map[string]string{
	"b": "p", "p": "pʰ", "m": "m", "f": "f",
	"d": "t", "t": "tʰ", "n": "n", "l": "l",
	"g": "k", "k": "kʰ", "h": "h",
	"j": "tʧ", "q": "tʧʰ", "x": "ʃ",
	"zh": "tʂ", "ch": "tʂʰ", "sh": "ʂ", "r": "ɻ",
	"z": "ts", "c": "tsʰ", "s": "s",
	"y": "j", "w": "w",
}

// pinyinFinalIPA maps the remaining syllable body (final, with "v" standing
// in for "ü" per go-pinyin's ASCII rendering) to its Gruut-US IPA reading.
var pinyinFinalIPA = map[string]string{
	"i": "i", "a": "a", "o": "o", "e": "ə", "u": "u", "v": "y",
	"ai": "ai", "ei": "ei", "ao": "au", "ou": "ou", "er": "ɑɹ",
	"an": "an", "en": "ən", "ang": "aŋ", "eng": "əŋ", "ong": "uŋ",
	"ia": "ia", "ie": "iɛ", "iao": "iau", "iu": "iou",
	"ian": "iɛn", "in": "in", "iang": "iaŋ", "ing": "iŋ", "iong": "iuŋ",
	"ua": "ua", "uo": "uo", "uai": "uai", "ui": "uei",
	"uan": "uan", "un": "uən", "uang": "uaŋ", "ueng": "uəŋ",
	"ve": "yɛ", "van": "yɛn", "vn": "yn",
}

// splitInitialFinal peels a recognized initial off a bare (tone-stripped)
// pinyin syllable body and returns the initial (possibly empty, for
// zero-initial syllables like "an") and the remaining final.
func splitInitialFinal(body string) (initial, final string) {
	for _, ini := range pinyinInitials {
		if strings.HasPrefix(body, ini) {
			return ini, body[len(ini):]
		}
	}
	return "", body
}

// pinyinSyllableToIPA converts one Tone3-style syllable ("zhong1", "a5") to
// its Gruut-US IPA reading plus trailing tone arrow, covering the three
// retroflex/dental syllabic-final special cases and the j/q/x "u means ü"
// rewrite.
func pinyinSyllableToIPA(syl string) string {
	if syl == "" {
		return ""
	}
	last := syl[len(syl)-1]
	body, arrow := syl, ""
	if last >= '1' && last <= '5' {
		body = syl[:len(syl)-1]
		arrow = toneArrow(last)
	}

	initial, final := splitInitialFinal(body)

	switch {
	case (initial == "zh" || initial == "ch" || initial == "sh" || initial == "r") && final == "i":
		return pinyinInitialIPA[initial] + "ɻ" + arrow
	case (initial == "z" || initial == "c" || initial == "s") && final == "i":
		return pinyinInitialIPA[initial] + "ɹ" + arrow
	case (initial == "j" || initial == "q" || initial == "x") && strings.HasPrefix(final, "u"):
		final = "v" + final[1:]
	}

	initialIPA := pinyinInitialIPA[initial]
	finalIPA := lookupFinalIPA(final)
	return initialIPA + finalIPA + arrow
}

func lookupFinalIPA(final string) string {
	if final == "" {
		return ""
	}
	if ipa, ok := pinyinFinalIPA[final]; ok {
		return ipa
	}
	// Unrecognized final (e.g. a dialectal or truncated form): pass it
	// through verbatim rather than dropping it.
	return final
}

// KokoroPhonemizer implements the Kokoro end-to-end pipeline (spec §4.3.4):
// pinyin-derived IPA for Chinese runs, the shared English/Gruut-US pipeline
// for Latin runs, a digit-to-pinyin reading for digit runs, and a
// one-Unicode-scalar-at-a-time tokenizer against the fixed 114-entry
// vocabulary, padded or truncated to 512 tokens.
type KokoroPhonemizer struct {
	english *EnglishPhonemizer
}

// NewKokoroPhonemizer constructs the Kokoro phonemizer. english may be nil,
// in which case Latin runs contribute no tokens.
func NewKokoroPhonemizer(english *EnglishPhonemizer) *KokoroPhonemizer {
	return &KokoroPhonemizer{english: english}
}

// Phonemize converts input to a fixed-length (kokoroMaxTokens) slice of
// vocabulary ids, zero-padded on the right or truncated to fit.
func (p *KokoroPhonemizer) Phonemize(ctx context.Context, input string) []int {
	ipa := p.toIPA(ctx, input)
	return p.tokenize(ipa)
}

func (p *KokoroPhonemizer) toIPA(ctx context.Context, input string) string {
	runs := text.SegmentByScript(input)
	var b strings.Builder
	for _, run := range runs {
		switch run.Kind {
		case text.ScriptCJK:
			b.WriteString(p.chineseRunIPA(run.Text))
		case text.ScriptDigit:
			b.WriteString(p.chineseRunIPA(chineseDigitRunReading(run.Text)))
		case text.ScriptLatin:
			b.WriteString(p.latinRunIPA(ctx, run.Text))
		default:
			b.WriteString(run.Text)
		}
	}
	return b.String()
}

func (p *KokoroPhonemizer) chineseRunIPA(s string) string {
	syllables := ToPinyinSyllables(s)
	var b strings.Builder
	for _, syl := range syllables {
		b.WriteString(pinyinSyllableToIPA(syl))
	}
	return b.String()
}

func (p *KokoroPhonemizer) latinRunIPA(ctx context.Context, s string) string {
	if p.english == nil {
		return ""
	}
	words := strings.Fields(s)
	var b strings.Builder
	for _, w := range words {
		raw, err := p.english.runner.Run(ctx, w)
		if err != nil {
			continue
		}
		b.WriteString(ApplyGruutUS(CleanRawIPA(raw)))
		b.WriteString(" ")
	}
	return b.String()
}

// tokenize walks ipa one Unicode scalar at a time, mapping each through the
// Kokoro vocabulary and silently skipping unknown scalars, then pads with
// kokoroPadID or truncates to exactly kokoroMaxTokens entries.
func (p *KokoroPhonemizer) tokenize(ipa string) []int {
	ids := make([]int, 0, kokoroMaxTokens)
	ids = append(ids, kokoroPadID)
	for _, r := range ipa {
		id, ok := kokoroVocab[r]
		if !ok {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= kokoroMaxTokens-1 {
			break
		}
	}
	ids = append(ids, kokoroPadID)

	if len(ids) > kokoroMaxTokens {
		ids = ids[:kokoroMaxTokens]
	}
	for len(ids) < kokoroMaxTokens {
		ids = append(ids, kokoroPadID)
	}
	return ids
}
