// Package engine implements the engine façade (spec §4.8): the single
// entry point that owns one backend instance, dispatches Call/CallToFile/
// StreamingCall, and translates backend/asset/voice errors into the
// (kind, message, detail) triple spec §7 describes.
package engine

import "fmt"

// Config is the engine's view of spec §3's EngineConfig entity. It is
// constructed by the caller and is immutable after New except through the
// dynamic setters SetSpeed, SetSpeaker, and SetVolume.
type Config struct {
	BackendKind string // "matcha-zh", "matcha-en", "matcha-zh-en", "kokoro"

	// CacheRoot resolves model/voice paths via internal/asset when ModelDir
	// is left empty; AssetBaseURL enables on-demand fetch. VoiceDir is not
	// read: Kokoro voices load from the "voices" folder of the model
	// directory.
	CacheRoot    string
	AssetBaseURL string

	ModelDir   string
	VoiceDir   string
	VoiceID    string
	SpeakerID  int
	SpeechRate float64

	// Pitch is carried in the config snapshot but never threaded into any
	// inference path (spec §9 open question: "do not infer a mapping").
	Pitch float64

	// Volume is a final linear gain applied after backend post-processing,
	// in [0, 100] (spec §3 invariant volume ∈ [0, 100]); the data model
	// lists it among the dynamic setters without naming a corresponding
	// EngineConfig attribute, so it defaults to 100 (unity gain) and is
	// applied as samples[i] *= volume/100 at the very end of Call.
	Volume float64

	SampleRate       int // native backend rate; 0 lets the backend pick its default
	OutputSampleRate int // 0 disables resampling

	TargetRMS            float64
	CompressionRatio     float64
	CompressionThreshold float64
	UseRMSNorm           bool
	RemoveClicks         bool

	InferenceThreads int
	Warmup           bool

	ORTLibraryPath string
	ESpeakPath     string
}

// DefaultConfig returns a Config with every invariant from spec §3
// satisfied: speech_rate > 0, sample_rate > 0 once resolved, volume in
// [0, 100].
func DefaultConfig() Config {
	return Config{
		BackendKind:          "matcha-zh",
		SpeechRate:           1.0,
		Volume:               100,
		TargetRMS:            0.2,
		CompressionRatio:     4,
		CompressionThreshold: 0.8,
		UseRMSNorm:           true,
		RemoveClicks:         true,
		InferenceThreads:     1,
	}
}

// Validate checks the invariants spec §3 names, given the backend's
// reported speaker count. numSpeakers ≤ 0 skips the speaker-bound check
// (the caller has not yet resolved a backend).
func (c Config) Validate(numSpeakers int) error {
	if c.SpeechRate <= 0 {
		return fmt.Errorf("engine: speech_rate must be > 0, got %v", c.SpeechRate)
	}
	if c.SpeakerID < 0 {
		return fmt.Errorf("engine: speaker_id must be >= 0, got %d", c.SpeakerID)
	}
	if numSpeakers > 0 && c.SpeakerID >= numSpeakers {
		return fmt.Errorf("engine: speaker_id %d out of range [0, %d)", c.SpeakerID, numSpeakers)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("engine: volume must be in [0, 100], got %v", c.Volume)
	}
	return nil
}
