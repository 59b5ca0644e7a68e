package phonemize

import (
	"log/slog"
	"strings"

	"github.com/example/go-pocket-tts/internal/text"
)

// phonemeFallbackMap covers a handful of lexicon phonemes that don't appear
// verbatim in the shipped vocabulary (mis-toned or alternate spellings),
// mapped to the nearest symbol the vocabulary does contain.
var phonemeFallbackMap = map[string]string{
	"shei2": "she2",
	"hm":    "hm1",
	"ng":    "ng1",
	"m":     "m1",
}

// pauseTokenCandidates are tried in order when a punctuation segment has no
// direct token or ASCII-mapped equivalent.
var pauseTokenCandidates = []string{"sil", "sp", "<eps>"}

// ChinesePhonemizer implements the Matcha-ZH pipeline (spec §4.3.1):
// punctuation normalization, maximum-match segmentation, lexicon lookup,
// and per-character fallback.
type ChinesePhonemizer struct {
	lexicon   map[string][]string
	tokenMap  map[string]int
	segmenter *Segmenter
}

// NewChinesePhonemizer constructs the Matcha-ZH phonemizer from a loaded
// lexicon and token map. seg may be nil to use the bundled sample
// segmenter.
func NewChinesePhonemizer(lexicon map[string][]string, tokenMap map[string]int, seg *Segmenter) *ChinesePhonemizer {
	if seg == nil {
		seg = DefaultSegmenter()
	}
	return &ChinesePhonemizer{lexicon: lexicon, tokenMap: tokenMap, segmenter: seg}
}

// NormalizeZHPunctuation rewrites CJK/ASCII punctuation to the model's
// expected glyph set: ":、；" → "，"; "." → "。"; "?" → "？"; "!" → "！".
func NormalizeZHPunctuation(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ':', '、', '；', ';':
			b.WriteRune('，')
		case '.':
			b.WriteRune('。')
		case '?':
			b.WriteRune('？')
		case '!':
			b.WriteRune('！')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phonemize converts input to token ids by segmenting, then resolving each
// segment through the lexicon, direct token lookup, punctuation mapping,
// or character-level recursion, in that priority order.
func (p *ChinesePhonemizer) Phonemize(input string) []int {
	normalized := NormalizeZHPunctuation(input)
	words := CleanupSegments(p.segmenter.Segment(normalized))

	var ids []int
	for _, w := range words {
		ids = append(ids, p.phonemizeWord(w)...)
	}
	return ids
}

func (p *ChinesePhonemizer) phonemizeWord(w string) []int {
	lower := strings.ToLower(w)
	if phonemes, ok := p.lexicon[lower]; ok {
		var ids []int
		for _, ph := range phonemes {
			if id, ok := p.lookupPhonemeID(ph); ok {
				ids = append(ids, id)
			} else {
				slog.Warn("chinese phonemizer: unknown phoneme", "phoneme", ph, "word", w)
			}
		}
		return ids
	}

	if id, ok := p.tokenMap[w]; ok {
		return []int{id}
	}

	if isPunctSegment(w) {
		return p.phonemizePunct(w)
	}

	// Recurse into individual UTF-8 characters.
	chars := text.Chars(w)
	if len(chars) <= 1 {
		return nil
	}
	var ids []int
	for _, c := range chars {
		ids = append(ids, p.phonemizeWord(c)...)
	}
	return ids
}

func (p *ChinesePhonemizer) phonemizePunct(w string) []int {
	for _, r := range w {
		if ascii, ok := text.CJKToASCIIPunct(r); ok {
			if id, ok := p.tokenMap[string(ascii)]; ok {
				return []int{id}
			}
		}
		if id, ok := p.tokenMap[string(r)]; ok {
			return []int{id}
		}
	}
	for _, cand := range pauseTokenCandidates {
		if id, ok := p.tokenMap[cand]; ok {
			return []int{id}
		}
	}
	return nil
}

func (p *ChinesePhonemizer) lookupPhonemeID(phoneme string) (int, bool) {
	if id, ok := p.tokenMap[phoneme]; ok {
		return id, true
	}
	if alt, ok := phonemeFallbackMap[phoneme]; ok {
		if id, ok := p.tokenMap[alt]; ok {
			return id, true
		}
	}
	if n := len(phoneme); n > 0 {
		last := phoneme[n-1]
		if last >= '1' && last <= '5' {
			if id, ok := p.tokenMap[phoneme[:n-1]]; ok {
				return id, true
			}
		} else {
			if id, ok := p.tokenMap[phoneme+"1"]; ok {
				return id, true
			}
		}
	}
	return 0, false
}

func isPunctSegment(w string) bool {
	trimmed := strings.TrimSpace(w)
	if trimmed == "" {
		return true
	}
	for _, r := range trimmed {
		if !text.IsPunct(r) {
			return false
		}
	}
	return true
}
