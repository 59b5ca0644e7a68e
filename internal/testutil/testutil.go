// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireESpeak(t)
//	    testutil.RequireVoiceFile(t, "voices-dir", "af_bella")
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"github.com/example/go-pocket-tts/internal/voice"
)

// RequireESpeak skips the test if the espeak-ng binary is not found in PATH
// or at the path given by the POCKETTTS_ESPEAK_PATH environment variable.
// The Matcha-EN, Matcha-ZH-EN, and Kokoro backends all shell out to it for
// English phonemization (spec §4.3.2, §6).
func RequireESpeak(tb testing.TB) {
	tb.Helper()

	exe := os.Getenv("POCKETTTS_ESPEAK_PATH")
	if exe == "" {
		exe = "espeak-ng"
	}

	if _, err := exec.LookPath(exe); err != nil {
		tb.Skipf("espeak-ng binary not available (%q not in PATH); set POCKETTTS_ESPEAK_PATH to override", exe)
	}
}

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located. It checks (in order): the ORT_LIBRARY_PATH env var, then the
// POCKETTTS_ORT_LIB env var, then common system library paths.
func RequireONNXRuntime(tb testing.TB) {
	tb.Helper()

	for _, env := range []string{"ORT_LIBRARY_PATH", "POCKETTTS_ORT_LIB"} {
		if p := os.Getenv(env); p != "" {
			// #nosec G703 -- Integration tests intentionally accept explicit env-provided local library paths.
			_, err := os.Stat(p)
			if err == nil {
				return // found
			}

			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
			return
		}
	}
	// Fall back to common system locations.
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
	}
	for _, p := range candidates {
		_, err := os.Stat(p)
		if err == nil {
			return // found
		}
	}

	tb.Skip("ONNX Runtime shared library not found; set ORT_LIBRARY_PATH or POCKETTTS_ORT_LIB")
}

// RequireVoiceFile skips the test if the voice identified by id cannot be
// resolved from the Kokoro voices directory dir.
func RequireVoiceFile(tb testing.TB, dir, id string) {
	tb.Helper()

	mgr, err := voice.NewManager(dir)
	if err != nil {
		tb.Skipf("voices directory not available at %q: %v", dir, err)
		return
	}

	if _, err := mgr.ResolvePath(id); err != nil {
		tb.Skipf("voice %q not available in %q: %v", id, dir, err)
	}
}
