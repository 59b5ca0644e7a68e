package phonemize

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/example/go-pocket-tts/internal/text"
)

//go:embed testdata/jieba_dict_sample.txt
var jiebaDictSample string

// Segmenter performs maximum-match (longest-prefix) word segmentation over
// a shipped frequency dictionary in the spirit of the original cppjieba
// dictionary clone, scaled down to a sample vocabulary.
type Segmenter struct {
	words   map[string]struct{}
	maxLen  int // max word length in runes
}

var (
	defaultSegmenterOnce sync.Once
	defaultSegmenter     *Segmenter
)

// DefaultSegmenter returns the process-wide segmenter seeded from the
// bundled sample dictionary, built once on first use.
func DefaultSegmenter() *Segmenter {
	defaultSegmenterOnce.Do(func() {
		defaultSegmenter = NewSegmenterFromDictText(jiebaDictSample)
	})
	return defaultSegmenter
}

// NewSegmenterFromDictText parses a "word<TAB>freq<TAB>pos" dictionary,
// one entry per line, and builds a Segmenter from the word column.
func NewSegmenterFromDictText(dictText string) *Segmenter {
	s := &Segmenter{words: make(map[string]struct{}), maxLen: 1}
	for _, line := range strings.Split(dictText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		word := fields[0]
		s.words[word] = struct{}{}
		if n := len([]rune(word)); n > s.maxLen {
			s.maxLen = n
		}
	}
	return s
}

// Segment splits s into words using a greedy forward maximum-match: at
// each position, the longest dictionary word starting there is preferred;
// if none matches, a single rune is emitted as its own segment.
func (sg *Segmenter) Segment(s string) []string {
	runes := []rune(s)
	var out []string
	i := 0
	for i < len(runes) {
		matched := false
		for l := sg.maxLen; l >= 2; l-- {
			if i+l > len(runes) {
				continue
			}
			cand := string(runes[i : i+l])
			if _, ok := sg.words[cand]; ok {
				out = append(out, cand)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, string(runes[i]))
			i++
		}
	}
	return out
}

// CleanupSegments collapses runs of whitespace and punctuation segments
// produced after segmentation, leaving a single representative punctuation
// segment in place of each run.
func CleanupSegments(words []string) []string {
	var out []string
	for _, w := range words {
		if isAllSpaceOrPunct(w) {
			if len(out) > 0 && isAllSpaceOrPunct(out[len(out)-1]) {
				if strings.TrimSpace(out[len(out)-1]) == "" {
					out[len(out)-1] = w
				}
				continue
			}
		}
		out = append(out, w)
	}
	return out
}

func isAllSpaceOrPunct(s string) bool {
	trimmed := strings.TrimSpace(s)
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
