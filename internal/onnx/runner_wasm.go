//go:build js && wasm

package onnx

import (
	"context"
	"fmt"
)

// RunnerConfig holds ORT library settings for creating runners.
// In js/wasm builds, native ORT is unavailable; this struct is kept so the
// package API remains build-compatible.
type RunnerConfig struct {
	LibraryPath string
	APIVersion  uint32
}

// GraphSpec names a single ONNX graph on disk; see the native build's
// runner.go for the field meanings.
type GraphSpec struct {
	Name string
	Path string
}

// Runner is unavailable in js/wasm builds: no backend can be constructed
// with a js/wasm target, since all four (matcha-zh, matcha-en,
// matcha-zh-en, kokoro) require native ORT sessions.
type Runner struct {
	name string
}

// NewRunner always returns an error in js/wasm builds.
func NewRunner(spec GraphSpec, _ RunnerConfig) (*Runner, error) {
	return nil, fmt.Errorf("native onnx runner is unavailable in js/wasm for graph %q", spec.Name)
}

// Run always returns an error in js/wasm builds.
func (r *Runner) Run(_ context.Context, _ map[string]*Tensor) (map[string]*Tensor, error) {
	return nil, fmt.Errorf("native onnx runner is unavailable in js/wasm for graph %q", r.name)
}

// Close is a no-op in js/wasm builds.
func (r *Runner) Close() {}

// Name returns the graph name.
func (r *Runner) Name() string {
	return r.name
}
