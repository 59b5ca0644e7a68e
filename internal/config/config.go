package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	TTS     TTSConfig     `mapstructure:"tts"`
}

// PathsConfig resolves where an engine.Config looks for models and the
// asset cache (spec §5): ModelDir takes precedence over
// CacheRoot/AssetBaseURL when set, matching internal/engine's
// local-dir-first resolution order. VoiceDir is loaded but no command
// passes it on to the engine.
type PathsConfig struct {
	ModelDir     string `mapstructure:"model_dir"`
	VoiceDir     string `mapstructure:"voice_dir"`
	CacheRoot    string `mapstructure:"cache_root"`
	AssetBaseURL string `mapstructure:"asset_base_url"`
}

type RuntimeConfig struct {
	Threads        int    `mapstructure:"threads"`
	InterOpThreads int    `mapstructure:"inter_op_threads"`
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTVersion     string `mapstructure:"ort_version"`
}

// TTSConfig holds the engine.Config defaults a synth/voices invocation
// falls back to when its own flags are left unset (spec §3 EngineConfig).
type TTSConfig struct {
	Backend    string  `mapstructure:"backend"`
	Voice      string  `mapstructure:"voice"`
	SpeakerID  int     `mapstructure:"speaker_id"`
	SpeechRate float64 `mapstructure:"speech_rate"`
	Volume     float64 `mapstructure:"volume"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelDir:     "",
			VoiceDir:     "",
			CacheRoot:    "",
			AssetBaseURL: "",
		},
		Runtime: RuntimeConfig{
			Threads:        4,
			InterOpThreads: 1,
			ORTLibraryPath: "",
			ORTVersion:     "",
		},
		TTS: TTSConfig{
			Backend:    "matcha-zh",
			Voice:      "",
			SpeakerID:  0,
			SpeechRate: 1.0,
			Volume:     100,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-model-dir", defaults.Paths.ModelDir, "Local model directory (skips asset cache resolution)")
	fs.String("paths-voice-dir", defaults.Paths.VoiceDir, "Local voice directory (not read by synth or voices)")
	fs.String("paths-cache-root", defaults.Paths.CacheRoot, "Asset cache root directory")
	fs.String("paths-asset-base-url", defaults.Paths.AssetBaseURL, "Base URL assets are fetched from on cache miss")
	fs.Int("runtime-threads", defaults.Runtime.Threads, "ONNX Runtime intra-op thread count")
	fs.Int("runtime-inter-op-threads", defaults.Runtime.InterOpThreads, "ONNX Runtime inter-op thread count")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.String("runtime-ort-version", defaults.Runtime.ORTVersion, "Expected ONNX Runtime version")
	fs.String("tts-backend", defaults.TTS.Backend, "Backend kind (matcha-zh|matcha-en|matcha-zh-en|kokoro)")
	fs.String("tts-voice", defaults.TTS.Voice, "Voice id (Kokoro) or speaker profile identifier")
	fs.Int("tts-speaker-id", defaults.TTS.SpeakerID, "Speaker id for multi-speaker backends")
	fs.Float64("tts-speech-rate", defaults.TTS.SpeechRate, "Speech rate multiplier (> 0)")
	fs.Float64("tts-volume", defaults.TTS.Volume, "Output volume percentage, 0-100")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("POCKETTTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "POCKETTTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("pockettts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_dir", c.Paths.ModelDir)
	v.SetDefault("paths.voice_dir", c.Paths.VoiceDir)
	v.SetDefault("paths.cache_root", c.Paths.CacheRoot)
	v.SetDefault("paths.asset_base_url", c.Paths.AssetBaseURL)
	v.SetDefault("runtime.threads", c.Runtime.Threads)
	v.SetDefault("runtime.inter_op_threads", c.Runtime.InterOpThreads)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_version", c.Runtime.ORTVersion)
	v.SetDefault("tts.backend", c.TTS.Backend)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.speaker_id", c.TTS.SpeakerID)
	v.SetDefault("tts.speech_rate", c.TTS.SpeechRate)
	v.SetDefault("tts.volume", c.TTS.Volume)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.model_dir", "paths-model-dir")
	v.RegisterAlias("paths.voice_dir", "paths-voice-dir")
	v.RegisterAlias("paths.cache_root", "paths-cache-root")
	v.RegisterAlias("paths.asset_base_url", "paths-asset-base-url")
	v.RegisterAlias("runtime.threads", "runtime-threads")
	v.RegisterAlias("runtime.inter_op_threads", "runtime-inter-op-threads")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_version", "runtime-ort-version")
	v.RegisterAlias("tts.backend", "tts-backend")
	v.RegisterAlias("tts.voice", "tts-voice")
	v.RegisterAlias("tts.speaker_id", "tts-speaker-id")
	v.RegisterAlias("tts.speech_rate", "tts-speech-rate")
	v.RegisterAlias("tts.volume", "tts-volume")
}
