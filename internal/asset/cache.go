// Package asset resolves and fetches the on-disk model assets described by
// spec §6's cache layout: matcha-tts/ acoustic/vocoder graphs and their
// token/lexicon files, and kokoro-tts/ model plus voice blobs. Fetching
// reuses the teacher's checksum-verified HTTP-download idiom
// (internal/model's ONNX bundle downloader), generalized from a single
// HuggingFace-pinned bundle to the spec's per-model tar.gz archives and
// loose files, and extracted with the standard library the way the
// teacher's bundle downloader already does.
package asset

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	matchaDirName = "matcha-tts"
	kokoroDirName = "kokoro-tts"
)

// ResolveCacheRoot returns override unchanged if non-empty, else
// $XDG_CACHE_HOME, else the OS default user cache directory, the latter two
// joined with "pocket-tts".
func ResolveCacheRoot(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pocket-tts"), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pocket-tts"), nil
}

// MatchaModelDir returns <cache_root>/matcha-tts/<name>, the directory spec
// §6 expects each Matcha variant's acoustic model and tokens to live under.
func MatchaModelDir(cacheRoot, name string) string {
	return filepath.Join(cacheRoot, matchaDirName, name)
}

// VocoderPath returns <cache_root>/matcha-tts/<filename>, the shared vocoder
// graph location (spec §6: "vocos-22khz-univ.onnx", "vocos-16khz-univ.onnx").
func VocoderPath(cacheRoot, filename string) string {
	return filepath.Join(cacheRoot, matchaDirName, filename)
}

// KokoroModelPath returns <cache_root>/kokoro-tts/kokoro-v1.0.onnx.
func KokoroModelPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, kokoroDirName, "kokoro-v1.0.onnx")
}

// KokoroVoicePath returns <cache_root>/kokoro-tts/voices/<name>.bin.
func KokoroVoicePath(cacheRoot, name string) string {
	return filepath.Join(cacheRoot, kokoroDirName, "voices", name+".bin")
}

// ErrAssetMissing is returned by EnsurePresent when a required file is
// absent and no fetch spec was supplied to retrieve it.
var ErrAssetMissing = errors.New("asset: required file missing and no download source configured")
