package testutil_test

import (
	"os"
	"testing"

	"github.com/example/go-pocket-tts/internal/testutil"
)

func TestRequireESpeak_SkipsWhenAbsent(t *testing.T) {
	orig := os.Getenv("POCKETTTS_ESPEAK_PATH")
	t.Setenv("POCKETTTS_ESPEAK_PATH", "/nonexistent/espeak-ng-binary")
	defer func() {
		if orig == "" {
			os.Unsetenv("POCKETTTS_ESPEAK_PATH")
		}
	}()

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireESpeak(fakeT)
	if !skipped {
		t.Error("expected RequireESpeak to skip when binary is absent")
	}
}

func TestRequireONNXRuntime_SkipsWhenAbsent(t *testing.T) {
	// Ensure env vars point nowhere.
	t.Setenv("ORT_LIBRARY_PATH", "/nonexistent/libonnxruntime.so")

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireONNXRuntime(fakeT)
	if !skipped {
		t.Error("expected RequireONNXRuntime to skip when library is absent")
	}
}

func TestRequireVoiceFile_SkipsWhenDirAbsent(t *testing.T) {
	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireVoiceFile(fakeT, "/nonexistent/voices-dir", "any-voice")
	if !skipped {
		t.Error("expected RequireVoiceFile to skip when voices directory is absent")
	}
}

func TestRequireVoiceFile_SkipsWhenIDUnknown(t *testing.T) {
	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireVoiceFile(fakeT, t.TempDir(), "unknown-voice")
	if !skipped {
		t.Error("expected RequireVoiceFile to skip when voice id is not found")
	}
}

// skipTracker is a minimal testing.TB implementation that intercepts Skip calls.
type skipTracker struct {
	testing.TB
	onSkip func()
}

func (s *skipTracker) Helper() {}

func (s *skipTracker) Skipf(_ string, _ ...any) {
	s.onSkip()
	// Do NOT call s.TB.Skip — that would actually skip the outer test.
}
