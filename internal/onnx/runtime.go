package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/example/go-pocket-tts/internal/config"
)

// RuntimeInfo describes the ONNX Runtime shared library a backend's
// sessions were opened against (spec §4.3, §4.7: every backend kind loads
// through the same native ORT library, never a per-kind one).
type RuntimeInfo struct {
	LibraryPath string
	Version     string
	Initialized bool
}

var versionPattern = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

var (
	bootstrapOnce sync.Once
	bootstrapInfo RuntimeInfo
	bootstrapErr  error
	shutdownFlag  atomic.Bool
)

// Bootstrap resolves the ORT library once per process and caches the result
// for later Bootstrap calls; NewRunner does not read that cache and opens
// the library named by RunnerConfig.LibraryPath. It is optional: NewRunner also
// works without a prior Bootstrap call, since the purego binding resolves
// its own library path lazily.
func Bootstrap(cfg config.RuntimeConfig) (RuntimeInfo, error) {
	bootstrapOnce.Do(func() {
		info, err := DetectRuntime(cfg)
		if err != nil {
			bootstrapErr = err
			return
		}

		// Keep this process-local marker for future ORT bindings.
		err = os.Setenv("POCKETTTS_ORT_LIB", info.LibraryPath)
		if err != nil {
			bootstrapErr = fmt.Errorf("set POCKETTTS_ORT_LIB: %w", err)
			return
		}

		bootstrapInfo = info
		bootstrapInfo.Initialized = true
	})

	if bootstrapErr != nil {
		return RuntimeInfo{}, bootstrapErr
	}

	return bootstrapInfo, nil
}

// Shutdown marks the process-wide ORT bootstrap as torn down. It does not
// close any backend's Runner sessions — those are each owned and closed by
// their backend's Shutdown (spec §4.9 "shutdown releases every open session
// before returning").
func Shutdown() error {
	if !bootstrapInfo.Initialized {
		return nil
	}

	if shutdownFlag.Swap(true) {
		return nil
	}

	bootstrapInfo.Initialized = false

	return nil
}

func DetectRuntime(cfg config.RuntimeConfig) (RuntimeInfo, error) {
	path := cfg.ORTLibraryPath
	if path == "" {
		path = os.Getenv("POCKETTTS_ORT_LIB")
	}

	if path == "" {
		path = os.Getenv("ORT_LIBRARY_PATH")
	}

	if path == "" {
		candidates := []string{
			"/usr/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/opt/homebrew/lib/libonnxruntime.dylib",
			"C:/onnxruntime/lib/onnxruntime.dll",
		}
		for _, c := range candidates {
			_, err := os.Stat(c)
			if err == nil {
				path = c
				break
			}
		}
	}

	if path == "" {
		return RuntimeInfo{LibraryPath: "not found", Version: "unknown"}, errors.New("unable to detect ONNX Runtime library path")
	}

	_, err := os.Stat(path)
	if err != nil {
		return RuntimeInfo{LibraryPath: path, Version: "unknown"}, fmt.Errorf("onnx runtime library path check failed: %w", err)
	}

	version := cfg.ORTVersion
	if version == "" {
		version = os.Getenv("ORT_VERSION")
	}

	if version == "" {
		version = inferVersionFromPath(path)
	}

	if version == "" {
		version = "unknown"
	}

	return RuntimeInfo{LibraryPath: path, Version: version}, nil
}

func inferVersionFromPath(path string) string {
	name := filepath.Base(path)
	if m := versionPattern.FindStringSubmatch(name); len(m) == 2 {
		return m[1]
	}

	return ""
}
