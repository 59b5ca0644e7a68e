//go:build windows

package onnx

import (
	"context"
	"fmt"
)

// RunnerConfig holds ORT library settings for creating runners.
// In windows builds, native ORT runner support is currently unavailable.
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

// Runner is unavailable in windows builds: the purego ORT binding this
// package depends on only ships cgo-free shims for linux and darwin.
type Runner struct {
	name string
}

// NewRunner always returns an error in windows builds.
func NewRunner(spec GraphSpec, _ RunnerConfig) (*Runner, error) {
	return nil, fmt.Errorf("native onnx runner is unavailable on windows for graph %q", spec.Name)
}

// Run always returns an error in windows builds.
func (r *Runner) Run(_ context.Context, _ map[string]*Tensor) (map[string]*Tensor, error) {
	return nil, fmt.Errorf("native onnx runner is unavailable on windows for graph %q", r.name)
}

// Close is a no-op in windows builds.
func (r *Runner) Close() {}

// Name returns the graph name.
func (r *Runner) Name() string {
	return r.name
}
