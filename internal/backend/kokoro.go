package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/example/go-pocket-tts/internal/audio"
	"github.com/example/go-pocket-tts/internal/onnx"
	"github.com/example/go-pocket-tts/internal/phonemize"
	"github.com/example/go-pocket-tts/internal/text"
	"github.com/example/go-pocket-tts/internal/voice"
)

// kokoroSampleRate is fixed; Kokoro never resamples (spec §4.7).
const kokoroSampleRate = 24000

// kokoroBackend implements the single-session Kokoro pipeline (spec §4.7):
// no ISTFT, no blank insertion, an inverted speed input, and a style
// vector selected by clamped token length from a per-voice matrix.
type kokoroBackend struct {
	mu sync.Mutex

	initialized bool
	shutdown    bool

	session    *onnx.Runner
	phonemizer *phonemize.KokoroPhonemizer
	english    *phonemize.EnglishPhonemizer

	voice      *voice.Matrix
	cfg        Config
	speechRate float64
	speakerID  int32
}

// NewKokoro constructs an uninitialized Kokoro backend. english is the
// phonemizer's espeak-ng-backed fallback for Latin-script runs; a fresh
// one is built from cfg.ESpeakPath during Initialize if nil.
func NewKokoro(english *phonemize.EnglishPhonemizer) Backend {
	return &kokoroBackend{english: english}
}

func (b *kokoroBackend) Initialize(cfg Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return ErrAlreadyInitialized
	}

	english := b.english
	if english == nil {
		runner := phonemize.NewESpeakRunner(cfg.ESpeakPath)
		if err := runner.Probe(); err != nil {
			return fmt.Errorf("kokoro: espeak-ng unavailable: %w", err)
		}
		english = phonemize.NewEnglishPhonemizer(runner, map[string]int{})
	}
	b.phonemizer = phonemize.NewKokoroPhonemizer(english)

	modelPath := filepath.Join(cfg.ModelDir, "kokoro-v1.0.onnx")
	session, err := onnx.NewRunner(onnx.GraphSpec{Name: "kokoro", Path: modelPath}, onnx.RunnerConfig{LibraryPath: cfg.ORTLibraryPath})
	if err != nil {
		return fmt.Errorf("kokoro: load model %q: %w", modelPath, err)
	}

	voicePath := filepath.Join(cfg.ModelDir, "voices", cfg.VoiceID+".bin")
	matrix, err := voice.LoadMatrix(voicePath)
	if err != nil {
		session.Close()
		return fmt.Errorf("kokoro: load voice %q: %w", voicePath, err)
	}

	speechRate := cfg.SpeechRate
	if speechRate <= 0 {
		speechRate = 1.0
	}

	b.session = session
	b.voice = matrix
	b.cfg = cfg
	b.speechRate = speechRate
	b.speakerID = int32(cfg.SpeakerID)
	b.initialized = true

	if cfg.Warmup {
		if _, err := b.synthesizeTokens(context.Background(), []int{1, 2, 3}); err != nil {
			return fmt.Errorf("kokoro: warmup: %w", err)
		}
	}

	return nil
}

func (b *kokoroBackend) Synthesize(ctx context.Context, input string) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return Result{}, ErrNotInitialized
	}
	if b.shutdown {
		return Result{}, ErrNotInitialized
	}

	tokens := b.phonemizer.Phonemize(ctx, text.NormalizeSpeech(input, text.LangAuto))
	samples, err := b.synthesizeTokens(ctx, tokens)
	if err != nil {
		return Result{}, err
	}

	samples = audio.PostProcess(samples, audio.PostProcessParams{
		CompressionThreshold: b.cfg.CompressionThreshold,
		CompressionRatio:     b.cfg.CompressionRatio,
		UseRMSNorm:           b.cfg.UseRMSNorm,
		TargetRMS:            b.cfg.TargetRMS,
		RemoveClicks:         b.cfg.RemoveClicks,
	})

	return Result{Samples: samples, SampleRate: kokoroSampleRate, TokenIDs: tokens, IsFinal: true}, nil
}

// synthesizeTokens runs the single Kokoro session given already-tokenized
// input. It assumes the caller holds b.mu.
func (b *kokoroBackend) synthesizeTokens(ctx context.Context, tokens []int) ([]float32, error) {
	ids := make([]int64, len(tokens))
	for i, t := range tokens {
		ids[i] = int64(t)
	}
	inputIDs, err := onnx.NewTensor(ids, []int64{1, int64(len(ids))})
	if err != nil {
		return nil, fmt.Errorf("kokoro: build input_ids tensor: %w", err)
	}

	styleRow := b.voice.SelectRow(len(tokens))
	style, err := onnx.NewTensor(styleRow, []int64{1, int64(voice.StyleDim)})
	if err != nil {
		return nil, fmt.Errorf("kokoro: build style tensor: %w", err)
	}

	speed, err := onnx.NewTensor([]float32{kokoroInverseSpeed(b.speechRate)}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("kokoro: build speed tensor: %w", err)
	}

	outputs, err := b.session.Run(ctx, map[string]*onnx.Tensor{
		"input_ids": inputIDs,
		"style":     style,
		"speed":     speed,
	})
	if err != nil {
		return nil, fmt.Errorf("kokoro: inference: %w", err)
	}
	waveform, ok := outputs["waveform"]
	if !ok {
		return nil, fmt.Errorf("kokoro: output missing %q", "waveform")
	}
	samples, err := onnx.ExtractFloat32(waveform)
	if err != nil {
		return nil, fmt.Errorf("kokoro: extract waveform: %w", err)
	}
	return samples, nil
}

// kokoroInverseSpeed converts a caller-facing speech rate into the value
// the Kokoro session expects on its "speed" input: the session runs faster
// as this value grows, so a caller-facing speed-up (rate > 1) must invert
// to a smaller session speed (spec §4.7, §9 Open Question 3).
func kokoroInverseSpeed(speechRate float64) float32 {
	return float32(1.0 / speechRate)
}

func (b *kokoroBackend) SetSpeed(speed float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	if speed <= 0 {
		return ErrInvalidConfig
	}
	b.speechRate = float64(speed)
	return nil
}

func (b *kokoroBackend) SetSpeaker(id int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	if id < 0 {
		return ErrInvalidConfig
	}
	b.speakerID = id
	return nil
}

// Cleanup order at shutdown: session dropped first, then the environment
// (owned internally by onnx.Runner.Close).
func (b *kokoroBackend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.shutdown {
		return nil
	}
	if b.session != nil {
		b.session.Close()
	}
	b.shutdown = true
	return nil
}

func (b *kokoroBackend) SampleRate() int { return kokoroSampleRate }
func (b *kokoroBackend) NumSpeakers() int { return 1 }
