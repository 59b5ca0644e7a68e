package backend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/example/go-pocket-tts/internal/phonemize"
	"github.com/example/go-pocket-tts/internal/text"
)

// matchaZhEnBackend implements the Matcha-ZH-EN pipeline (spec §4.3.3,
// §4.4): script-routed bilingual phonemization over a single 1-indexed
// vocabulary, with no blank insertion.
type matchaZhEnBackend struct {
	state      matchaState
	phonemizer *phonemize.BilingualPhonemizer
}

// NewMatchaZhEn constructs an uninitialized Matcha-ZH-EN backend.
func NewMatchaZhEn() Backend {
	return &matchaZhEnBackend{}
}

func (b *matchaZhEnBackend) Initialize(cfg Config) error {
	tokenMap, err := text.ReadTokenMap(filepath.Join(cfg.ModelDir, "vocab_tts.txt"), 1)
	if err != nil {
		return fmt.Errorf("matcha-zh-en: load vocab: %w", err)
	}

	runner := phonemize.NewESpeakRunner(cfg.ESpeakPath)
	if err := runner.Probe(); err != nil {
		return fmt.Errorf("matcha-zh-en: espeak-ng unavailable: %w", err)
	}
	english := phonemize.NewEnglishPhonemizer(runner, tokenMap)
	b.phonemizer = phonemize.NewBilingualPhonemizer(tokenMap, english)

	return b.state.initialize(cfg, matchaInitOptions{
		acousticFile:  "model-steps-3.onnx",
		metaSidecar:   "model-steps-3.onnx.meta.json",
		usesBlank:     false,
		defaultLength: 1.0,
		tokenize: func(ctx context.Context, s string) ([]int, error) {
			return b.phonemizer.Phonemize(ctx, text.NormalizeSpeech(s, text.LangAuto)), nil
		},
	})
}

func (b *matchaZhEnBackend) Synthesize(ctx context.Context, t string) (Result, error) {
	return b.state.Synthesize(ctx, t)
}

func (b *matchaZhEnBackend) SetSpeed(speed float32) error { return b.state.SetSpeed(speed) }
func (b *matchaZhEnBackend) SetSpeaker(id int32) error     { return b.state.SetSpeaker(id) }
func (b *matchaZhEnBackend) Shutdown() error               { return b.state.Shutdown() }
func (b *matchaZhEnBackend) SampleRate() int               { return b.state.SampleRate() }
func (b *matchaZhEnBackend) NumSpeakers() int              { return 1 }
