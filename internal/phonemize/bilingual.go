package phonemize

import (
	"context"
	"strconv"
	"strings"

	"github.com/example/go-pocket-tts/internal/text"
)

// unknownTokenID is the fallback id for any bilingual segment that cannot
// be resolved through pinyin, IPA, or punctuation mapping (spec §4.3.3).
const unknownTokenID = 1

// BilingualPhonemizer implements the Matcha-ZH-EN pipeline: it segments
// input by script class and routes each run through pinyin (CJK), IPA via
// the English pipeline (Latin), a digit-to-pinyin reading (digits), or
// ASCII punctuation mapping. It does not insert blank tokens.
type BilingualPhonemizer struct {
	tokenMap map[string]int
	english  *EnglishPhonemizer
}

// NewBilingualPhonemizer constructs the bilingual phonemizer. english may
// be nil, in which case Latin runs fall back to the unknown token id.
func NewBilingualPhonemizer(tokenMap map[string]int, english *EnglishPhonemizer) *BilingualPhonemizer {
	return &BilingualPhonemizer{tokenMap: tokenMap, english: english}
}

func (p *BilingualPhonemizer) Phonemize(ctx context.Context, input string) []int {
	runs := text.SegmentByScript(input)

	var ids []int
	for _, run := range runs {
		switch run.Kind {
		case text.ScriptCJK:
			ids = append(ids, p.phonemizeCJK(run.Text)...)
		case text.ScriptLatin:
			ids = append(ids, p.phonemizeLatin(ctx, run.Text)...)
		case text.ScriptDigit:
			ids = append(ids, p.phonemizeDigits(run.Text)...)
		default:
			ids = append(ids, p.phonemizeOther(run.Text)...)
		}
	}
	return ids
}

func (p *BilingualPhonemizer) lookupSyllable(syl string) int {
	if id, ok := p.tokenMap[syl]; ok {
		return id
	}
	if id, ok := p.tokenMap[strings.ToLower(syl)]; ok {
		return id
	}
	return unknownTokenID
}

func (p *BilingualPhonemizer) phonemizeCJK(s string) []int {
	syllables := ToPinyinSyllables(s)
	ids := make([]int, 0, len(syllables))
	for _, syl := range syllables {
		ids = append(ids, p.lookupSyllable(syl))
	}
	return ids
}

func (p *BilingualPhonemizer) phonemizeDigits(s string) []int {
	syllables := digitRunToPinyin(s)
	ids := make([]int, 0, len(syllables))
	for _, syl := range syllables {
		ids = append(ids, p.lookupSyllable(syl))
	}
	return ids
}

// phonemizeLatin walks space-separated words within a Latin run. A word
// that parses as a Roman numeral is routed to the numeric-reading path
// (digit-by-digit Chinese reading → pinyin); all other words go through the
// English IPA pipeline.
func (p *BilingualPhonemizer) phonemizeLatin(ctx context.Context, s string) []int {
	words := strings.Fields(s)
	var ids []int
	for _, w := range words {
		if n, ok := text.RomanToInt(w); ok {
			ids = append(ids, p.phonemizeDigits(strconv.Itoa(n))...)
			continue
		}
		if p.english == nil {
			ids = append(ids, unknownTokenID)
			continue
		}
		wordIDs, err := p.english.Phonemize(ctx, w)
		if err != nil || len(wordIDs) == 0 {
			ids = append(ids, unknownTokenID)
			continue
		}
		ids = append(ids, wordIDs...)
	}
	return ids
}

func (p *BilingualPhonemizer) phonemizeOther(s string) []int {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		ascii := r
		if mapped, ok := text.CJKToASCIIPunct(r); ok {
			ascii = mapped
		}
		if id, ok := p.tokenMap[string(ascii)]; ok {
			ids = append(ids, id)
			continue
		}
		ids = append(ids, unknownTokenID)
	}
	return ids
}
