package backend

import (
	"encoding/json"
	"os"

	"github.com/example/go-pocket-tts/internal/dsp"
)

// modelMetadata mirrors the optional "<model>.meta.json" sidecar file read
// alongside an acoustic or vocoder graph. None of the ONNX runtimes in the
// pack expose a stable, verifiable API for reading embedded model metadata
// (producer name, custom key/value pairs) through onnxruntime-purego, so
// the parameters spec §4.4 says are "read from vocoder model metadata" are
// sourced from this sidecar JSON instead, falling back to the documented
// defaults when the file is absent.
type modelMetadata struct {
	NFFT       int `json:"n_fft"`
	HopLength  int `json:"hop_length"`
	WinLength  int `json:"win_length"`
	PadID      int `json:"pad_id"`
	SampleRate int `json:"sample_rate"`
}

func defaultModelMetadata() modelMetadata {
	return modelMetadata{
		NFFT:       1024,
		HopLength:  256,
		WinLength:  1024,
		PadID:      0,
		SampleRate: 22050,
	}
}

// readModelMetadata loads sidecarPath if present, filling any zero-valued
// field from the defaults. A missing file is not an error.
func readModelMetadata(sidecarPath string) (modelMetadata, error) {
	meta := defaultModelMetadata()

	data, err := os.ReadFile(sidecarPath)
	if os.IsNotExist(err) {
		return meta, nil
	}
	if err != nil {
		return meta, err
	}

	var parsed modelMetadata
	if err := json.Unmarshal(data, &parsed); err != nil {
		return meta, err
	}
	if parsed.NFFT != 0 {
		meta.NFFT = parsed.NFFT
	}
	if parsed.HopLength != 0 {
		meta.HopLength = parsed.HopLength
	}
	if parsed.WinLength != 0 {
		meta.WinLength = parsed.WinLength
	}
	if parsed.SampleRate != 0 {
		meta.SampleRate = parsed.SampleRate
	}
	meta.PadID = parsed.PadID

	return meta, nil
}

func (m modelMetadata) istftParams() dsp.ISTFTParams {
	return dsp.ISTFTParams{NFFT: m.NFFT, HopLength: m.HopLength, WinLength: m.WinLength}
}
