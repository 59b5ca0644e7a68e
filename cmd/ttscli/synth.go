package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-pocket-tts/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSynthCmd() *cobra.Command {
	var text string
	var out string
	var backendKind string
	var voiceID string
	var speakerID int
	var speed float64
	var volume float64
	var cacheRoot string
	var modelDir string
	var assetBaseURL string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize text to a WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readSynthText(text, os.Stdin)
			if err != nil {
				return err
			}

			flags := cmd.Flags()

			cfg := engine.DefaultConfig()
			cfg.BackendKind = flagOrDefault(flags, "backend", backendKind, appCfg.TTS.Backend)
			cfg.VoiceID = flagOrDefault(flags, "voice", voiceID, appCfg.TTS.Voice)
			cfg.SpeakerID = speakerID
			if !flags.Changed("speaker") {
				cfg.SpeakerID = appCfg.TTS.SpeakerID
			}
			cfg.SpeechRate = speed
			if !flags.Changed("speed") {
				cfg.SpeechRate = appCfg.TTS.SpeechRate
			}
			cfg.Volume = volume
			if !flags.Changed("volume") {
				cfg.Volume = appCfg.TTS.Volume
			}
			cfg.CacheRoot = flagOrDefault(flags, "cache-root", cacheRoot, appCfg.Paths.CacheRoot)
			cfg.ModelDir = flagOrDefault(flags, "model-dir", modelDir, appCfg.Paths.ModelDir)
			cfg.AssetBaseURL = flagOrDefault(flags, "asset-base-url", assetBaseURL, appCfg.Paths.AssetBaseURL)
			cfg.InferenceThreads = appCfg.Runtime.Threads
			cfg.ORTLibraryPath = appCfg.Runtime.ORTLibraryPath

			eng, err := engine.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize engine: %w", err)
			}
			defer eng.Shutdown()

			result, err := eng.CallToFile(cmd.Context(), inputText, out)
			if err != nil {
				return fmt.Errorf("synth failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "request %s: %.0fms audio, %.0fms processing, rtf %.3f -> %s\n",
				result.RequestID, result.AudioDurationMS, result.ProcessingTimeMS, result.RTF, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path")
	cmd.Flags().StringVar(&backendKind, "backend", "", "Backend kind (matcha-zh|matcha-en|matcha-zh-en|kokoro), overrides the configured default")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice id (Kokoro) or speaker profile identifier, overrides the configured default")
	cmd.Flags().IntVar(&speakerID, "speaker", 0, "Speaker id for multi-speaker backends")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Speech rate multiplier (> 0)")
	cmd.Flags().Float64Var(&volume, "volume", 100, "Output volume percentage, 0-100")
	cmd.Flags().StringVar(&cacheRoot, "cache-root", "", "Override the asset cache root directory")
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "Use a local model directory instead of fetching into the cache")
	cmd.Flags().StringVar(&assetBaseURL, "asset-base-url", "", "Override the base URL assets are fetched from")

	return cmd
}

// flagOrDefault returns flagValue when the flag was explicitly set on the
// command line, and configDefault otherwise.
func flagOrDefault(flags *pflag.FlagSet, name, flagValue, configDefault string) string {
	if flags.Changed(name) {
		return flagValue
	}
	if configDefault != "" {
		return configDefault
	}
	return flagValue
}

func readSynthText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}
