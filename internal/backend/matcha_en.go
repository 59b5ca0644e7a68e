package backend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/example/go-pocket-tts/internal/phonemize"
	"github.com/example/go-pocket-tts/internal/text"
)

// matchaEnBackend implements the Matcha-EN pipeline (spec §4.3.2, §4.4):
// espeak-ng-backed IPA phonemization through a shared token vocabulary,
// with blank insertion between every token.
type matchaEnBackend struct {
	state      matchaState
	phonemizer *phonemize.EnglishPhonemizer
}

// NewMatchaEn constructs an uninitialized Matcha-EN backend.
func NewMatchaEn() Backend {
	return &matchaEnBackend{}
}

func (b *matchaEnBackend) Initialize(cfg Config) error {
	tokenMap, err := text.ReadTokenMap(filepath.Join(cfg.ModelDir, "tokens.txt"), 0)
	if err != nil {
		return fmt.Errorf("matcha-en: load tokens: %w", err)
	}

	runner := phonemize.NewESpeakRunner(cfg.ESpeakPath)
	if err := runner.Probe(); err != nil {
		return fmt.Errorf("matcha-en: espeak-ng unavailable: %w", err)
	}
	b.phonemizer = phonemize.NewEnglishPhonemizer(runner, tokenMap)

	return b.state.initialize(cfg, matchaInitOptions{
		acousticFile:  "model-steps-3.onnx",
		metaSidecar:   "model-steps-3.onnx.meta.json",
		usesBlank:     true,
		defaultLength: 1.0,
		tokenize: func(ctx context.Context, s string) ([]int, error) {
			return b.phonemizer.Phonemize(ctx, text.NormalizeSpeech(s, text.LangEN))
		},
	})
}

func (b *matchaEnBackend) Synthesize(ctx context.Context, t string) (Result, error) {
	return b.state.Synthesize(ctx, t)
}

func (b *matchaEnBackend) SetSpeed(speed float32) error { return b.state.SetSpeed(speed) }
func (b *matchaEnBackend) SetSpeaker(id int32) error     { return b.state.SetSpeaker(id) }
func (b *matchaEnBackend) Shutdown() error               { return b.state.Shutdown() }
func (b *matchaEnBackend) SampleRate() int               { return b.state.SampleRate() }
func (b *matchaEnBackend) NumSpeakers() int              { return 1 }
