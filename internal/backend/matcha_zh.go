package backend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/example/go-pocket-tts/internal/phonemize"
	"github.com/example/go-pocket-tts/internal/text"
)

// matchaZhBackend implements the Matcha-ZH pipeline (spec §4.3.1, §4.4):
// maximum-match segmentation, lexicon lookup, and fallback, with blank
// insertion between every token.
type matchaZhBackend struct {
	state     matchaState
	phonemizer *phonemize.ChinesePhonemizer
}

// NewMatchaZh constructs an uninitialized Matcha-ZH backend.
func NewMatchaZh() Backend {
	return &matchaZhBackend{}
}

func (b *matchaZhBackend) Initialize(cfg Config) error {
	tokenMap, err := text.ReadTokenMap(filepath.Join(cfg.ModelDir, "tokens.txt"), 0)
	if err != nil {
		return fmt.Errorf("matcha-zh: load tokens: %w", err)
	}
	lexicon, err := text.ReadLexicon(filepath.Join(cfg.ModelDir, "lexicon.txt"))
	if err != nil {
		return fmt.Errorf("matcha-zh: load lexicon: %w", err)
	}

	b.phonemizer = phonemize.NewChinesePhonemizer(lexicon, tokenMap, nil)

	return b.state.initialize(cfg, matchaInitOptions{
		acousticFile:  "model-steps-3.onnx",
		metaSidecar:   "model-steps-3.onnx.meta.json",
		usesBlank:     true,
		defaultLength: 1.0,
		tokenize: func(_ context.Context, s string) ([]int, error) {
			return b.phonemizer.Phonemize(text.NormalizeSpeech(s, text.LangZH)), nil
		},
	})
}

func (b *matchaZhBackend) Synthesize(ctx context.Context, t string) (Result, error) {
	return b.state.Synthesize(ctx, t)
}

func (b *matchaZhBackend) SetSpeed(speed float32) error   { return b.state.SetSpeed(speed) }
func (b *matchaZhBackend) SetSpeaker(id int32) error       { return b.state.SetSpeaker(id) }
func (b *matchaZhBackend) Shutdown() error                 { return b.state.Shutdown() }
func (b *matchaZhBackend) SampleRate() int                 { return b.state.SampleRate() }
func (b *matchaZhBackend) NumSpeakers() int                { return 1 }
