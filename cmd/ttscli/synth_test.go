package main

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestFlagOrDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var voice string
	fs.StringVar(&voice, "voice", "", "")

	t.Run("unset flag falls back to config default", func(t *testing.T) {
		if got := flagOrDefault(fs, "voice", voice, "zh-matcha"); got != "zh-matcha" {
			t.Errorf("flagOrDefault = %q, want %q", got, "zh-matcha")
		}
	})

	t.Run("explicit flag wins over config default", func(t *testing.T) {
		if err := fs.Set("voice", "en-kokoro"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if got := flagOrDefault(fs, "voice", "en-kokoro", "zh-matcha"); got != "en-kokoro" {
			t.Errorf("flagOrDefault = %q, want %q", got, "en-kokoro")
		}
	})

	t.Run("unset flag with no config default falls back to flag value", func(t *testing.T) {
		fs2 := pflag.NewFlagSet("test2", pflag.ContinueOnError)
		var backend string
		fs2.StringVar(&backend, "backend", "matcha-zh", "")
		if got := flagOrDefault(fs2, "backend", backend, ""); got != "matcha-zh" {
			t.Errorf("flagOrDefault = %q, want %q", got, "matcha-zh")
		}
	})
}

func TestReadSynthText(t *testing.T) {
	t.Run("uses flag text", func(t *testing.T) {
		got, err := readSynthText("hello", strings.NewReader("ignored"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "hello" {
			t.Fatalf("expected hello, got %q", got)
		}
	})

	t.Run("falls back to stdin", func(t *testing.T) {
		got, err := readSynthText("", strings.NewReader(" from stdin \n"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "from stdin" {
			t.Fatalf("expected trimmed stdin text, got %q", got)
		}
	})

	t.Run("fails when both empty", func(t *testing.T) {
		_, err := readSynthText("", strings.NewReader("   \n\t"))
		if err == nil {
			t.Fatal("expected error for empty input")
		}
	})
}

func TestNewSynthCmd_RegistersExpectedFlags(t *testing.T) {
	cmd := newSynthCmd()

	for _, name := range []string{"text", "out", "backend", "voice", "speaker", "speed", "volume"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q to be registered", name)
		}
	}
}

func TestNewVoicesCmd_RegistersExpectedFlags(t *testing.T) {
	cmd := newVoicesCmd()

	for _, name := range []string{"cache-root", "model-dir", "asset-base-url"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q to be registered", name)
		}
	}
}
