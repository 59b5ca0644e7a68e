// Package voice manages the Kokoro voice-matrix files under
// <cache_root>/kokoro-tts/voices/ (spec §6): listing what's available,
// resolving a voice id to its file, and loading the raw float32 blob into
// the (N, 256) style matrix the backend selects rows from. Adapted from
// the teacher's manifest-driven VoiceManager (internal/tts/voice.go),
// generalized from an explicit JSON manifest to a directory scan since
// spec §6's voice files carry no accompanying manifest.
package voice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Voice identifies one selectable Kokoro voice.
type Voice struct {
	ID   string
	Path string
}

// Manager lists and resolves voices found under a single directory.
type Manager struct {
	dir    string
	byID   map[string]Voice
	voices []Voice
}

// NewManager scans dir for "*.bin" voice files and indexes them by their
// base filename (without extension) as the voice id.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("voice: directory is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("voice: read voices dir %q: %w", dir, err)
	}

	mgr := &Manager{dir: dir, byID: make(map[string]Voice)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".bin") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".bin")
		v := Voice{ID: id, Path: filepath.Join(dir, e.Name())}
		mgr.byID[id] = v
		mgr.voices = append(mgr.voices, v)
	}
	sort.Slice(mgr.voices, func(i, j int) bool { return mgr.voices[i].ID < mgr.voices[j].ID })

	return mgr, nil
}

// ListVoices returns every voice found at construction time, sorted by id.
func (m *Manager) ListVoices() []Voice {
	return append([]Voice(nil), m.voices...)
}

// ResolvePath returns the on-disk path for id, verifying the file still
// exists.
func (m *Manager) ResolvePath(id string) (string, error) {
	v, ok := m.byID[id]
	if !ok {
		return "", fmt.Errorf("voice: unknown voice id %q", id)
	}
	if _, err := os.Stat(v.Path); err != nil {
		return "", fmt.Errorf("voice: file for %q: %w", id, err)
	}
	return v.Path, nil
}
