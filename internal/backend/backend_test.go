package backend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKindFromStringRoundTrip(t *testing.T) {
	for _, k := range SupportedKinds() {
		got, ok := KindFromString(k.String())
		if !ok {
			t.Fatalf("KindFromString(%q) ok=false", k.String())
		}
		if got != k {
			t.Errorf("KindFromString(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestKindFromStringRejectsUnknown(t *testing.T) {
	if _, ok := KindFromString("not-a-backend"); ok {
		t.Fatal("expected ok=false for unknown kind")
	}
}

func TestAvailableReportsAllSupportedKinds(t *testing.T) {
	for _, k := range SupportedKinds() {
		if !Available(k) {
			t.Errorf("Available(%v) = false, want true", k)
		}
	}
}

func TestNewReturnsFalseForUnknownKind(t *testing.T) {
	if _, ok := New(Kind(99)); ok {
		t.Fatal("expected ok=false for unknown kind")
	}
}

func TestInsertBlanksWrapsEachToken(t *testing.T) {
	got := insertBlanks([]int{5, 6, 7}, 0)
	want := []int{0, 5, 0, 6, 0, 7, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestInsertBlanksEmptyTokens(t *testing.T) {
	got := insertBlanks(nil, 3)
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v, want [3]", got)
	}
}

func TestReadModelMetadataDefaultsWhenMissing(t *testing.T) {
	meta, err := readModelMetadata(filepath.Join(t.TempDir(), "missing.meta.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := defaultModelMetadata()
	if meta != want {
		t.Errorf("meta = %+v, want defaults %+v", meta, want)
	}
}

func TestKokoroSpeedInversion(t *testing.T) {
	tests := []struct {
		speechRate float64
		want       float32
	}{
		{1.0, 1.0},
		{2.0, 0.5},
		{0.5, 2.0},
	}
	for _, tt := range tests {
		got := kokoroInverseSpeed(tt.speechRate)
		if got != tt.want {
			t.Errorf("kokoroInverseSpeed(%v) = %v, want %v", tt.speechRate, got, tt.want)
		}
	}
}

func TestReadModelMetadataOverridesPartialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.meta.json")
	if err := os.WriteFile(path, []byte(`{"hop_length": 512, "pad_id": 7}`), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	meta, err := readModelMetadata(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.HopLength != 512 {
		t.Errorf("HopLength = %d, want 512", meta.HopLength)
	}
	if meta.PadID != 7 {
		t.Errorf("PadID = %d, want 7", meta.PadID)
	}
	// Unspecified fields keep their defaults.
	if meta.NFFT != 1024 || meta.WinLength != 1024 {
		t.Errorf("meta = %+v, want defaulted NFFT/WinLength", meta)
	}
}

