package voice

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// StyleDim is the fixed width of a Kokoro voice matrix row (spec §4.7:
// "style (float [1, 256])").
const StyleDim = 256

// Matrix is a Kokoro voice's (N, StyleDim) style-vector table, loaded from
// a raw little-endian float32 blob (spec §6).
type Matrix struct {
	data []float32
	rows int
}

// LoadMatrix reads path as a raw little-endian float32 blob whose length
// must be a multiple of StyleDim*4 bytes, reshaped to (N, StyleDim).
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("voice: read matrix %q: %w", path, err)
	}

	const bytesPerFloat = 4
	rowBytes := StyleDim * bytesPerFloat
	if len(data) == 0 || len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("voice: matrix %q length %d is not a multiple of %d", path, len(data), rowBytes)
	}

	n := len(data) / bytesPerFloat
	flat := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*bytesPerFloat : (i+1)*bytesPerFloat])
		flat[i] = math.Float32frombits(bits)
	}

	return &Matrix{data: flat, rows: n / StyleDim}, nil
}

// Rows reports how many style vectors the matrix holds.
func (m *Matrix) Rows() int {
	return m.rows
}

// SelectRow returns the style vector for the given token length, clamped
// to row min(tokenLen, N-1), never below 0 (spec §4.7).
func (m *Matrix) SelectRow(tokenLen int) []float32 {
	row := tokenLen
	if row > m.rows-1 {
		row = m.rows - 1
	}
	if row < 0 {
		row = 0
	}
	out := make([]float32, StyleDim)
	copy(out, m.data[row*StyleDim:(row+1)*StyleDim])
	return out
}
