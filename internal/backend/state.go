package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/example/go-pocket-tts/internal/audio"
	"github.com/example/go-pocket-tts/internal/dsp"
	"github.com/example/go-pocket-tts/internal/onnx"
)

// tokenizeFunc converts normalized text to acoustic-model token ids. Each
// Matcha variant supplies its own (spec §4.3.1-4.3.3); the shared pipeline
// below never inspects the text itself.
type tokenizeFunc func(ctx context.Context, text string) ([]int, error)

// matchaState is the shared lifecycle and inference pipeline for the three
// Matcha variants (spec §4.4, §9: "free functions over state rather than
// inheritance between four near-identical backends"). Each concrete
// backend (MatchaZh, MatchaEn, MatchaZhEn) embeds one, configured with its
// own tokenizer and blank-insertion policy.
type matchaState struct {
	mu sync.Mutex

	initialized bool
	shutdown    bool

	acoustic *onnx.Runner
	vocoder  *onnx.Runner

	cfg Config

	tokenize    tokenizeFunc
	usesBlank   bool
	padID       int
	istft       dsp.ISTFTParams
	nativeRate  int

	speechRate  float64
	lengthScale float64
	speakerID   int32
}

// matchaInitOptions bundles the per-variant pieces that initialize needs
// beyond the shared Config.
type matchaInitOptions struct {
	acousticFile  string // relative to cfg.ModelDir
	metaSidecar   string // relative to cfg.ModelDir; "" skips sidecar read
	tokenize      tokenizeFunc
	usesBlank     bool
	defaultLength float64 // configured_length_scale when cfg doesn't override
}

func (s *matchaState) initialize(cfg Config, opt matchaInitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return ErrAlreadyInitialized
	}

	acousticPath := filepath.Join(cfg.ModelDir, opt.acousticFile)
	acoustic, err := onnx.NewRunner(onnx.GraphSpec{Name: "acoustic", Path: acousticPath}, onnx.RunnerConfig{LibraryPath: cfg.ORTLibraryPath})
	if err != nil {
		return fmt.Errorf("backend: load acoustic model %q: %w", acousticPath, err)
	}

	vocoderPath := cfg.VocoderPath
	vocoder, err := onnx.NewRunner(onnx.GraphSpec{Name: "vocoder", Path: vocoderPath}, onnx.RunnerConfig{LibraryPath: cfg.ORTLibraryPath})
	if err != nil {
		acoustic.Close()
		return fmt.Errorf("backend: load vocoder model %q: %w", vocoderPath, err)
	}

	meta := defaultModelMetadata()
	if opt.metaSidecar != "" {
		meta, err = readModelMetadata(filepath.Join(cfg.ModelDir, opt.metaSidecar))
		if err != nil {
			acoustic.Close()
			vocoder.Close()
			return fmt.Errorf("backend: read model metadata: %w", err)
		}
	}

	nativeRate := cfg.NativeSampleRate
	if nativeRate == 0 {
		nativeRate = meta.SampleRate
	}

	speechRate := cfg.SpeechRate
	if speechRate <= 0 {
		speechRate = 1.0
	}

	s.acoustic = acoustic
	s.vocoder = vocoder
	s.cfg = cfg
	s.tokenize = opt.tokenize
	s.usesBlank = opt.usesBlank
	s.padID = meta.PadID
	s.istft = meta.istftParams()
	s.nativeRate = nativeRate
	s.speechRate = speechRate
	s.lengthScale = opt.defaultLength
	s.speakerID = int32(cfg.SpeakerID)
	s.initialized = true

	if cfg.Warmup {
		if err := s.runWarmup(); err != nil {
			return fmt.Errorf("backend: warmup: %w", err)
		}
	}

	return nil
}

// runWarmup exercises both sessions once with a fixed 3-token sequence
// (spec §4.4: "run the acoustic model once with [1, 2, 3]").
func (s *matchaState) runWarmup() error {
	tokens := []int{1, 2, 3}
	if s.usesBlank {
		tokens = insertBlanks(tokens, s.padID)
	}
	_, err := s.runAcousticAndVocoder(context.Background(), tokens)
	return err
}

func insertBlanks(tokens []int, padID int) []int {
	out := make([]int, 0, len(tokens)*2+1)
	out = append(out, padID)
	for _, t := range tokens {
		out = append(out, t, padID)
	}
	return out
}

// Synthesize runs the full spec §4.4 pipeline: normalize/tokenize (done by
// the caller-supplied tokenize hook), optional blank insertion, acoustic
// inference, vocoder inference, ISTFT, resample, and post-process.
func (s *matchaState) Synthesize(ctx context.Context, text string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return Result{}, ErrNotInitialized
	}
	if s.shutdown {
		return Result{}, ErrNotInitialized
	}

	tokens, err := s.tokenize(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("backend: tokenize: %w", err)
	}
	original := append([]int(nil), tokens...)
	if s.usesBlank {
		tokens = insertBlanks(tokens, s.padID)
	}

	samples, err := s.runAcousticAndVocoder(ctx, tokens)
	if err != nil {
		return Result{}, err
	}

	rate := s.nativeRate
	if s.cfg.OutputSampleRate != 0 && s.cfg.OutputSampleRate != rate {
		samples = audio.Resample(samples, rate, s.cfg.OutputSampleRate)
		rate = s.cfg.OutputSampleRate
	}

	samples = audio.PostProcess(samples, audio.PostProcessParams{
		CompressionThreshold: s.cfg.CompressionThreshold,
		CompressionRatio:     s.cfg.CompressionRatio,
		UseRMSNorm:           s.cfg.UseRMSNorm,
		TargetRMS:            s.cfg.TargetRMS,
		RemoveClicks:         s.cfg.RemoveClicks,
	})

	return Result{Samples: samples, SampleRate: rate, TokenIDs: original, IsFinal: true}, nil
}

// runAcousticAndVocoder runs steps 4-7 of spec §4.4 given final (possibly
// blanked) token ids. It assumes the caller already holds s.mu.
func (s *matchaState) runAcousticAndVocoder(ctx context.Context, tokens []int) ([]float32, error) {
	x := make([]int64, len(tokens))
	for i, t := range tokens {
		x[i] = int64(t)
	}
	xTensor, err := onnx.NewTensor(x, []int64{1, int64(len(x))})
	if err != nil {
		return nil, fmt.Errorf("backend: build x tensor: %w", err)
	}
	xLenTensor, err := onnx.NewTensor([]int64{int64(len(x))}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("backend: build x_length tensor: %w", err)
	}
	noiseScale, err := onnx.NewTensor([]float32{0.667}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("backend: build noise_scale tensor: %w", err)
	}
	lengthScale := s.lengthScale
	if lengthScale <= 0 {
		lengthScale = 1.0
	}
	effectiveLengthScale := float32((1.0 / s.speechRate) * lengthScale)
	lengthScaleTensor, err := onnx.NewTensor([]float32{effectiveLengthScale}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("backend: build length_scale tensor: %w", err)
	}

	acousticOut, err := s.acoustic.Run(ctx, map[string]*onnx.Tensor{
		"x":            xTensor,
		"x_length":     xLenTensor,
		"noise_scale":  noiseScale,
		"length_scale": lengthScaleTensor,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: acoustic inference: %w", err)
	}
	melTensor, ok := acousticOut["mel"]
	if !ok {
		return nil, fmt.Errorf("backend: acoustic output missing %q", "mel")
	}
	mel, err := onnx.ExtractFloat32(melTensor)
	if err != nil {
		return nil, fmt.Errorf("backend: extract mel: %w", err)
	}
	if len(mel) == 0 {
		return nil, nil
	}
	melShape := melTensor.Shape()

	melsTensor, err := onnx.NewTensor(mel, melShape)
	if err != nil {
		return nil, fmt.Errorf("backend: rebuild mels tensor: %w", err)
	}

	vocoderOut, err := s.vocoder.Run(ctx, map[string]*onnx.Tensor{"mels": melsTensor})
	if err != nil {
		return nil, fmt.Errorf("backend: vocoder inference: %w", err)
	}
	mag, err := extractNamed(vocoderOut, "mag")
	if err != nil {
		return nil, err
	}
	xOut, err := extractNamed(vocoderOut, "x")
	if err != nil {
		return nil, err
	}
	yOut, err := extractNamed(vocoderOut, "y")
	if err != nil {
		return nil, err
	}

	shape := vocoderOut["mag"].Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("backend: vocoder output %q has unexpected rank %d", "mag", len(shape))
	}
	numBins := int(shape[1])
	numFrames := int(shape[2])

	real := make([][]float64, numFrames)
	imag := make([][]float64, numFrames)
	for t := 0; t < numFrames; t++ {
		real[t] = make([]float64, numBins)
		imag[t] = make([]float64, numBins)
		for k := 0; k < numBins; k++ {
			idx := k*numFrames + t
			m := float64(mag[idx])
			real[t][k] = m * float64(xOut[idx])
			imag[t][k] = m * float64(yOut[idx])
		}
	}

	samples, err := dsp.Inverse(real, imag, s.istft)
	if err != nil {
		return nil, fmt.Errorf("backend: istft: %w", err)
	}
	return samples, nil
}

func extractNamed(outputs map[string]*onnx.Tensor, name string) ([]float32, error) {
	t, ok := outputs[name]
	if !ok {
		return nil, fmt.Errorf("backend: vocoder output missing %q", name)
	}
	data, err := onnx.ExtractFloat32(t)
	if err != nil {
		return nil, fmt.Errorf("backend: extract %q: %w", name, err)
	}
	return data, nil
}

func (s *matchaState) SetSpeed(speed float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if speed <= 0 {
		return ErrInvalidConfig
	}
	s.speechRate = float64(speed)
	return nil
}

func (s *matchaState) SetSpeaker(id int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if id < 0 {
		return ErrInvalidConfig
	}
	s.speakerID = id
	return nil
}

// Cleanup order at shutdown: sessions dropped first, then the environment
// (owned internally by onnx.Runner.Close). The token map is not released
// here or by the concrete backends' Shutdown; it lives as long as the
// backend value does.
func (s *matchaState) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.shutdown {
		return nil
	}
	if s.vocoder != nil {
		s.vocoder.Close()
	}
	if s.acoustic != nil {
		s.acoustic.Close()
	}
	s.shutdown = true
	return nil
}

func (s *matchaState) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.OutputSampleRate != 0 {
		return s.cfg.OutputSampleRate
	}
	return s.nativeRate
}
