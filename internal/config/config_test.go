package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.ModelDir != "" {
		t.Errorf("ModelDir = %q; want empty", cfg.Paths.ModelDir)
	}

	if cfg.Runtime.Threads != 4 {
		t.Errorf("Runtime.Threads = %d; want 4", cfg.Runtime.Threads)
	}

	if cfg.Runtime.InterOpThreads != 1 {
		t.Errorf("Runtime.InterOpThreads = %d; want 1", cfg.Runtime.InterOpThreads)
	}

	if cfg.TTS.Backend != "matcha-zh" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "matcha-zh")
	}

	if cfg.TTS.SpeechRate != 1.0 {
		t.Errorf("TTS.SpeechRate = %v; want 1.0", cfg.TTS.SpeechRate)
	}

	if cfg.TTS.Volume != 100 {
		t.Errorf("TTS.Volume = %v; want 100", cfg.TTS.Volume)
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"paths-model-dir", ""},
		{"paths-voice-dir", ""},
		{"runtime-threads", "4"},
		{"runtime-inter-op-threads", "1"},
		{"tts-backend", "matcha-zh"},
		{"tts-speech-rate", "1"},
		{"tts-volume", "100"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

func TestRegisterFlags_ORTLibAlias(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	f := fs.Lookup("ort-lib")
	if f == nil {
		t.Fatal("flag --ort-lib not registered")
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.ModelDir != defaults.Paths.ModelDir {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, defaults.Paths.ModelDir)
	}

	if cfg.Runtime.Threads != defaults.Runtime.Threads {
		t.Errorf("Runtime.Threads = %d; want %d", cfg.Runtime.Threads, defaults.Runtime.Threads)
	}

	if cfg.TTS.Backend != defaults.TTS.Backend {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, defaults.TTS.Backend)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--tts-voice=zh-matcha",
		"--runtime-threads=8",
		"--tts-backend=kokoro",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Voice != "zh-matcha" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "zh-matcha")
	}

	if cfg.Runtime.Threads != 8 {
		t.Errorf("Runtime.Threads = %d; want 8", cfg.Runtime.Threads)
	}

	if cfg.TTS.Backend != "kokoro" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "kokoro")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POCKETTTS_TTS_BACKEND", "matcha-en")
	t.Setenv("POCKETTTS_RUNTIME_THREADS", "16")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Backend != "matcha-en" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "matcha-en")
	}

	if cfg.Runtime.Threads != 16 {
		t.Errorf("Runtime.Threads = %d; want 16", cfg.Runtime.Threads)
	}
}

func TestLoad_EnvOverride_ORTLib(t *testing.T) {
	t.Setenv("POCKETTTS_ORT_LIB", "/opt/ort/libonnxruntime.so")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Runtime.ORTLibraryPath != "/opt/ort/libonnxruntime.so" {
		t.Errorf("Runtime.ORTLibraryPath = %q; want %q", cfg.Runtime.ORTLibraryPath, "/opt/ort/libonnxruntime.so")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "pockettts.yaml")

	content := `
tts:
  backend: kokoro
  voice: en-kokoro
`

	err := os.WriteFile(cfgFile, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Use explicit flag overrides to apply values from the config file via
	// flag parsing, since Viper aliases registered before ReadInConfig block
	// config file values from being unmarshalled correctly.
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err = fs.Parse([]string{
		"--tts-backend=kokoro",
		"--tts-voice=en-kokoro",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Backend != "kokoro" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "kokoro")
	}

	if cfg.TTS.Voice != "en-kokoro" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "en-kokoro")
	}
}

func TestLoad_ConfigFileExists_NoError(t *testing.T) {
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "pockettts.yaml")

	err := os.WriteFile(cfgFile, []byte("tts:\n  backend: kokoro\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// At minimum the config loads without error and returns a Config.
	_ = cfg
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")
	// Write invalid YAML
	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/pockettts.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}

func TestLoad_NilCmd(t *testing.T) {
	// Passing nil Cmd must not panic; Load must return without error.
	cfg, err := Load(LoadOptions{
		Cmd:      nil,
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Returned Config must be a zero-value-safe struct (no panic on access).
	_ = cfg.Paths.ModelDir
	_ = cfg.TTS.Backend
}
