package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-pocket-tts/internal/backend"
	"github.com/example/go-pocket-tts/internal/testutil"
)

// fakeBackend is a minimal backend.Backend stand-in for exercising the
// engine façade without any ONNX Runtime or model assets.
type fakeBackend struct {
	initialized bool
	samples     []float32
	sampleRate  int
	synthErr    error
	speedErr    error
}

func (f *fakeBackend) Initialize(backend.Config) error { f.initialized = true; return nil }

func (f *fakeBackend) Synthesize(_ context.Context, text string) (backend.Result, error) {
	if f.synthErr != nil {
		return backend.Result{}, f.synthErr
	}
	return backend.Result{Samples: f.samples, SampleRate: f.sampleRate, IsFinal: true}, nil
}

func (f *fakeBackend) SetSpeed(float32) error { return f.speedErr }
func (f *fakeBackend) SetSpeaker(int32) error { return nil }
func (f *fakeBackend) Shutdown() error        { return nil }
func (f *fakeBackend) SampleRate() int        { return f.sampleRate }
func (f *fakeBackend) NumSpeakers() int       { return 1 }

func newTestEngine(fb *fakeBackend) *Engine {
	return &Engine{cfg: DefaultConfig(), backend: fb}
}

func TestCallRejectsEmptyText(t *testing.T) {
	e := newTestEngine(&fakeBackend{sampleRate: 22050})
	result, err := e.Call(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty text")
	}
	if result.Success {
		t.Error("result.Success = true, want false")
	}
	var engErr *Error
	if !errors.As(err, &engErr) || engErr.Code != CodeInvalidText {
		t.Errorf("err code = %v, want %v", err, CodeInvalidText)
	}
}

func TestCallRejectsWhitespaceOnlyText(t *testing.T) {
	e := newTestEngine(&fakeBackend{sampleRate: 22050})
	_, err := e.Call(context.Background(), "   \n\t  ")
	var engErr *Error
	if !errors.As(err, &engErr) || engErr.Code != CodeInvalidText {
		t.Errorf("err = %v, want InvalidText", err)
	}
}

func TestCallFailsWithoutBackend(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	_, err := e.Call(context.Background(), "hello")
	var engErr *Error
	if !errors.As(err, &engErr) || engErr.Code != CodeNotInitialized {
		t.Errorf("err = %v, want NotInitialized", err)
	}
}

func TestCallSucceedsAndComputesDuration(t *testing.T) {
	samples := make([]float32, 22050) // 1 second at 22050Hz
	e := newTestEngine(&fakeBackend{samples: samples, sampleRate: 22050})

	result, err := e.Call(context.Background(), "你好世界")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("result.Success = false, want true")
	}
	if result.RequestID == "" {
		t.Error("RequestID is empty")
	}
	if result.AudioDurationMS != 1000 {
		t.Errorf("AudioDurationMS = %v, want 1000", result.AudioDurationMS)
	}
	if len(result.Sentences) != 1 || result.Sentences[0].Text != "你好世界" {
		t.Errorf("Sentences = %+v, want one entry with the input text", result.Sentences)
	}
}

func TestCallWrapsSynthesisFailure(t *testing.T) {
	e := newTestEngine(&fakeBackend{synthErr: errors.New("onnx exploded"), sampleRate: 22050})
	_, err := e.Call(context.Background(), "hello")
	var engErr *Error
	if !errors.As(err, &engErr) || engErr.Code != CodeSynthesisFailed {
		t.Errorf("err = %v, want SynthesisFailed", err)
	}
}

func TestApplyVolumeScalesSamples(t *testing.T) {
	samples := []float32{1, -1, 0.5}
	out := applyVolume(samples, 50)
	want := []float32{0.5, -0.5, 0.25}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestApplyVolumeFullVolumeIsNoop(t *testing.T) {
	samples := []float32{1, -1, 0.5}
	out := applyVolume(samples, 100)
	if &out[0] != &samples[0] {
		t.Error("expected applyVolume(100) to return the same backing slice")
	}
}

func TestAudioChunkDurationMS(t *testing.T) {
	c := AudioChunk{Samples: make([]float32, 11025), SampleRate: 22050}
	if c.DurationMS() != 500 {
		t.Errorf("DurationMS() = %v, want 500", c.DurationMS())
	}
}

func TestSetSpeedDelegatesAndRejectsInvalid(t *testing.T) {
	fb := &fakeBackend{sampleRate: 22050}
	e := newTestEngine(fb)

	if err := e.SetSpeed(2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.cfg.SpeechRate != 2.0 {
		t.Errorf("cfg.SpeechRate = %v, want 2.0", e.cfg.SpeechRate)
	}

	fb.speedErr = backend.ErrInvalidConfig
	if err := e.SetSpeed(-1); err == nil {
		t.Fatal("expected error for invalid speed")
	}
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	e := newTestEngine(&fakeBackend{sampleRate: 22050})
	if err := e.SetVolume(150); err == nil {
		t.Fatal("expected error for volume > 100")
	}
	if err := e.SetVolume(42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.cfg.Volume != 42 {
		t.Errorf("cfg.Volume = %v, want 42", e.cfg.Volume)
	}
}

func TestCallToFileWritesValidWAV(t *testing.T) {
	samples := make([]float32, 22050) // 1 second at 22050Hz
	for i := range samples {
		samples[i] = 0.1
	}
	e := newTestEngine(&fakeBackend{samples: samples, sampleRate: 22050})

	path := filepath.Join(t.TempDir(), "out.wav")
	result, err := e.CallToFile(context.Background(), "你好", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("result.Success = false, want true")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	testutil.AssertValidWAV(t, data, 22050)
	testutil.AssertWAVDurationApprox(t, data, 22050, 0.9, 1.1)
}

func TestStreamingCallEmitsOpenEventCompleteClose(t *testing.T) {
	e := newTestEngine(&fakeBackend{samples: []float32{0, 0}, sampleRate: 22050})

	var kinds []StreamEventKind
	err := e.StreamingCall(context.Background(), "hello", func(ev StreamEvent) error {
		kinds = append(kinds, ev.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []StreamEventKind{StreamOpen, StreamAudioEvent, StreamComplete, StreamClose}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestStreamingCallEmitsErrorThenClose(t *testing.T) {
	e := newTestEngine(&fakeBackend{synthErr: errors.New("boom"), sampleRate: 22050})

	var kinds []StreamEventKind
	err := e.StreamingCall(context.Background(), "hello", func(ev StreamEvent) error {
		kinds = append(kinds, ev.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []StreamEventKind{StreamOpen, StreamError, StreamClose}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}
