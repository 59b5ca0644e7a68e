package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/go-pocket-tts/internal/asset"
	"github.com/example/go-pocket-tts/internal/audio"
	"github.com/example/go-pocket-tts/internal/backend"
	cfgpkg "github.com/example/go-pocket-tts/internal/config"
	"github.com/example/go-pocket-tts/internal/onnx"
	"github.com/example/go-pocket-tts/internal/text"
	"github.com/example/go-pocket-tts/internal/voice"
)

// assetLang maps an engine backend-kind string to the asset package's
// Matcha directory enum and its vocoder filename/native-rate pair (spec
// §6 cache layout: "vocos-22khz-univ.onnx, vocos-16khz-univ.onnx"). This
// pairing is not named anywhere in spec §6 beyond the two filenames, so
// the mapping is a design decision recorded in DESIGN.md: Matcha-ZH and
// Matcha-EN share the 22kHz vocoder (matching end-to-end scenarios 1-2's
// 22050Hz expectation), Matcha-ZH-EN uses the 16kHz vocoder (matching
// scenario 3's 16000Hz expectation).
type assetLang struct {
	matcha      asset.MatchaLang
	vocoderFile string
	nativeRate  int
}

var assetLangs = map[string]assetLang{
	"matcha-zh":    {matcha: asset.MatchaZh, vocoderFile: "vocos-22khz-univ.onnx", nativeRate: 0},
	"matcha-en":    {matcha: asset.MatchaEn, vocoderFile: "vocos-22khz-univ.onnx", nativeRate: 0},
	"matcha-zh-en": {matcha: asset.MatchaZhEn, vocoderFile: "vocos-16khz-univ.onnx", nativeRate: 16000},
}

// Engine is the façade spec §4.8 describes: it owns exactly one backend
// instance and exposes blocking and pseudo-streaming synthesis.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	kind    backend.Kind
	backend backend.Backend
	voices  *voice.Manager

	httpClient *http.Client
}

// New resolves cfg's backend kind, fetches/locates its model assets under
// cfg.CacheRoot, resolves the ONNX Runtime library (spec §5: "the
// neural-session environment must outlive every session"), constructs the
// matching backend, and initializes it. The returned Engine owns the
// backend exclusively (spec §3 ownership model).
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(0); err != nil {
		return nil, configError(CodeInvalidConfig, "invalid engine config", err)
	}

	kind, ok := backend.KindFromString(cfg.BackendKind)
	if !ok {
		return nil, configError(CodeInvalidConfig, fmt.Sprintf("unsupported backend kind %q", cfg.BackendKind), nil)
	}

	if cfg.ORTLibraryPath == "" {
		info, err := onnx.Bootstrap(cfgpkg.RuntimeConfig{ORTLibraryPath: cfg.ORTLibraryPath})
		if err == nil {
			cfg.ORTLibraryPath = info.LibraryPath
		}
		// A Bootstrap failure here is not fatal: onnx.NewRunner can still
		// succeed against its own library-path resolution inside
		// Initialize, and an empty path only becomes an error there.
	}

	httpClient := &http.Client{Timeout: 0}

	e := &Engine{cfg: cfg, kind: kind, httpClient: httpClient}

	bcfg, err := e.resolveBackendConfig(ctx, cfg, kind)
	if err != nil {
		return nil, err
	}

	b, ok := backend.New(kind)
	if !ok {
		return nil, configError(CodeInvalidConfig, fmt.Sprintf("backend factory rejected kind %q", cfg.BackendKind), nil)
	}
	if err := b.Initialize(bcfg); err != nil {
		return nil, runtimeError(CodeModelNotFound, "backend initialization failed", err)
	}

	e.backend = b
	e.cfg.SampleRate = b.SampleRate()

	if kind == backend.Kokoro {
		if mgr, err := voice.NewManager(filepath.Join(bcfg.ModelDir, "voices")); err == nil {
			e.voices = mgr
		}
	}

	return e, nil
}

// resolveBackendConfig fetches (or locates, if already cached) this kind's
// model assets under cfg.CacheRoot and builds the backend.Config the
// factory-constructed backend expects.
func (e *Engine) resolveBackendConfig(ctx context.Context, cfg Config, kind backend.Kind) (backend.Config, error) {
	bcfg := backend.Config{
		VoiceID:              cfg.VoiceID,
		SpeakerID:            cfg.SpeakerID,
		SpeechRate:           cfg.SpeechRate,
		OutputSampleRate:     cfg.OutputSampleRate,
		TargetRMS:            cfg.TargetRMS,
		CompressionRatio:     cfg.CompressionRatio,
		CompressionThreshold: cfg.CompressionThreshold,
		UseRMSNorm:           cfg.UseRMSNorm,
		RemoveClicks:         cfg.RemoveClicks,
		InferenceThreads:     cfg.InferenceThreads,
		Warmup:               cfg.Warmup,
		ORTLibraryPath:       cfg.ORTLibraryPath,
		ESpeakPath:           cfg.ESpeakPath,
	}

	cacheRoot, err := asset.ResolveCacheRoot(cfg.CacheRoot)
	if err != nil {
		return backend.Config{}, internalError(CodeInternal, "resolve cache root", err)
	}

	if kind == backend.Kokoro {
		modelPath := asset.KokoroModelPath(cacheRoot)
		if cfg.ModelDir != "" {
			modelPath = filepath.Join(cfg.ModelDir, "kokoro-v1.0.onnx")
		} else if _, err := asset.EnsureKokoroAssets(ctx, e.httpClient, cacheRoot, cfg.AssetBaseURL); err != nil {
			return backend.Config{}, networkError(CodeFetchFailed, "fetch kokoro model", err)
		}
		bcfg.ModelDir = filepath.Dir(modelPath)

		if cfg.VoiceID != "" {
			if _, err := asset.EnsureKokoroVoice(ctx, e.httpClient, cacheRoot, cfg.VoiceID, cfg.AssetBaseURL); err != nil {
				return backend.Config{}, networkError(CodeFetchFailed, "fetch kokoro voice", err)
			}
		}
		return bcfg, nil
	}

	al, ok := assetLangs[cfg.BackendKind]
	if !ok {
		return backend.Config{}, configError(CodeInvalidConfig, fmt.Sprintf("no asset mapping for backend kind %q", cfg.BackendKind), nil)
	}

	modelDir := cfg.ModelDir
	if modelDir == "" {
		dir, err := asset.EnsureMatchaAssets(ctx, e.httpClient, cacheRoot, al.matcha, cfg.AssetBaseURL)
		if err != nil {
			return backend.Config{}, networkError(CodeFetchFailed, "fetch matcha model assets", err)
		}
		modelDir = dir
	}
	bcfg.ModelDir = modelDir

	vocoderPath, err := asset.EnsureVocoder(ctx, e.httpClient, cacheRoot, al.vocoderFile, cfg.AssetBaseURL)
	if err != nil {
		return backend.Config{}, networkError(CodeFetchFailed, "fetch vocoder", err)
	}
	bcfg.VocoderPath = vocoderPath

	bcfg.NativeSampleRate = cfg.SampleRate
	if bcfg.NativeSampleRate == 0 {
		bcfg.NativeSampleRate = al.nativeRate
	}

	return bcfg, nil
}

// Call runs a full synthesis (spec §4.8) and returns an owned result.
// An empty input is rejected per spec §7/§8 scenario 5 without touching
// the backend.
func (e *Engine) Call(ctx context.Context, rawText string) (SynthesisResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	requestID := uuid.NewString()

	normalized, err := text.Normalize(rawText)
	if err != nil {
		wrapped := configError(CodeInvalidText, "input text is empty", err)
		return SynthesisResult{RequestID: requestID, Success: false, Err: wrapped}, wrapped
	}
	if e.backend == nil {
		err := runtimeError(CodeNotInitialized, "engine has no backend", nil)
		return SynthesisResult{RequestID: requestID, Success: false, Err: err}, err
	}

	started := time.Now()
	res, err := e.backend.Synthesize(ctx, normalized)
	elapsed := time.Since(started)

	if err != nil {
		wrapped := runtimeError(CodeSynthesisFailed, "synthesis failed", err)
		return SynthesisResult{RequestID: requestID, Success: false, Err: wrapped}, wrapped
	}

	samples := applyVolume(res.Samples, e.cfg.Volume)

	chunk := AudioChunk{Samples: samples, SampleRate: res.SampleRate, Channels: 1, Final: res.IsFinal}
	audioDuration := chunk.DurationMS()
	processing := float64(elapsed.Microseconds()) / 1000

	rtf := 0.0
	if audioDuration > 0 {
		rtf = processing / audioDuration
	}

	return SynthesisResult{
		RequestID: requestID,
		Audio:     chunk,
		Sentences: []SentenceTiming{{Text: rawText, StartMS: 0, DurationMS: audioDuration}},

		AudioDurationMS:  audioDuration,
		ProcessingTimeMS: processing,
		RTF:              rtf,
		Success:          true,
	}, nil
}

// applyVolume scales samples by volume/100, the final linear gain stage
// the engine applies beyond the backend's own post-processing (spec §3's
// volume setter, resolved per DESIGN.md since EngineConfig's attribute
// list never names a volume field alongside the invariant that requires
// one).
func applyVolume(samples []float32, volume float64) []float32 {
	if volume == 100 || len(samples) == 0 {
		return samples
	}
	gain := float32(volume / 100)
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * gain
	}
	return out
}

// CallToFile delegates to Call then writes a canonical 16-bit mono PCM
// WAV to path (spec §4.8, §6).
func (e *Engine) CallToFile(ctx context.Context, text, path string) (SynthesisResult, error) {
	result, err := e.Call(ctx, text)
	if err != nil {
		return result, err
	}

	data, encErr := audio.EncodeWAV(result.Audio.Samples, result.Audio.SampleRate)
	if encErr != nil {
		wrapped := internalError(CodeFileWrite, "encode wav", encErr)
		result.Success = false
		result.Err = wrapped
		return result, wrapped
	}

	if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
		wrapped := internalError(CodeFileWrite, fmt.Sprintf("write wav to %q", path), writeErr)
		result.Success = false
		result.Err = wrapped
		return result, wrapped
	}

	return result, nil
}

// StreamEvent is one event of the pseudo-streaming wrapper (spec §4.8:
// "fires on_open, then the single synthesized result as on_event, then
// on_complete (or on_error), then on_close").
type StreamEvent struct {
	Kind   StreamEventKind
	Chunk  AudioChunk
	Result SynthesisResult
	Err    *Error
}

// StreamEventKind names a StreamEvent's position in the degenerate
// open/event/complete-or-error/close sequence.
type StreamEventKind int

const (
	StreamOpen StreamEventKind = iota
	StreamAudioEvent
	StreamComplete
	StreamError
	StreamClose
)

// StreamingCall is a degenerate wrapper around Call: it emits exactly one
// StreamAudioEvent (no mid-utterance chunking, spec §1 Non-goals), then
// StreamComplete or StreamError, then StreamClose. emit's error aborts the
// sequence and is returned verbatim.
func (e *Engine) StreamingCall(ctx context.Context, text string, emit func(StreamEvent) error) error {
	if err := emit(StreamEvent{Kind: StreamOpen}); err != nil {
		return err
	}

	result, err := e.Call(ctx, text)
	if err != nil {
		engineErr, _ := err.(*Error)
		if emitErr := emit(StreamEvent{Kind: StreamError, Err: engineErr}); emitErr != nil {
			return emitErr
		}
		return emit(StreamEvent{Kind: StreamClose})
	}

	if emitErr := emit(StreamEvent{Kind: StreamAudioEvent, Chunk: result.Audio, Result: result}); emitErr != nil {
		return emitErr
	}
	if emitErr := emit(StreamEvent{Kind: StreamComplete, Result: result}); emitErr != nil {
		return emitErr
	}
	return emit(StreamEvent{Kind: StreamClose})
}

// SetSpeed mutates the config snapshot and delegates to the backend
// (spec §4.8). An invalid speed leaves state untouched (spec §7).
func (e *Engine) SetSpeed(speed float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return runtimeError(CodeNotInitialized, "engine has no backend", nil)
	}
	if err := e.backend.SetSpeed(speed); err != nil {
		return configError(CodeInvalidConfig, "invalid speed", err)
	}
	e.cfg.SpeechRate = float64(speed)
	return nil
}

// SetSpeaker mutates the config snapshot and delegates to the backend.
func (e *Engine) SetSpeaker(id int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return runtimeError(CodeNotInitialized, "engine has no backend", nil)
	}
	if err := e.backend.SetSpeaker(id); err != nil {
		return configError(CodeInvalidConfig, "invalid speaker id", err)
	}
	e.cfg.SpeakerID = int(id)
	return nil
}

// SetVolume mutates the config snapshot's final-gain stage (spec §3
// invariant volume ∈ [0, 100]); it never touches the backend.
func (e *Engine) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if volume < 0 || volume > 100 {
		return configError(CodeInvalidConfig, fmt.Sprintf("volume %v out of range [0, 100]", volume), nil)
	}
	e.cfg.Volume = volume
	return nil
}

// ListVoices reports the Kokoro voices discovered at construction time,
// or nil for non-Kokoro engines.
func (e *Engine) ListVoices() []voice.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.voices == nil {
		return nil
	}
	return e.voices.ListVoices()
}

// Shutdown releases the backend's sessions and environment through the
// backend's own Shutdown, then drops the engine's reference to the backend.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return nil
	}
	err := e.backend.Shutdown()
	e.backend = nil
	return err
}
