// Package dsp implements the numerical reconstruction stage of the
// synthesis pipeline: a hand-rolled inverse short-time Fourier transform
// with Hann-window overlap-add, used to turn a vocoder's magnitude/phase
// (or real/imaginary) frame output into a time-domain waveform.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

// HannWindow builds a symmetric Hann window of n samples:
// w[i] = 0.5 * (1 - cos(2*pi*i/(n-1))), with w[0] = w[n-1] = 0 for n > 1.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	if n <= 1 {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// ISTFTParams carries the STFT configuration read from a vocoder model's
// metadata (spec §4.5), defaulting to n_fft=1024, hop_length=256,
// win_length=1024 when the model does not report its own values.
type ISTFTParams struct {
	NFFT      int
	HopLength int
	WinLength int
}

// DefaultISTFTParams returns the spec-mandated fallback STFT configuration.
func DefaultISTFTParams() ISTFTParams {
	return ISTFTParams{NFFT: 1024, HopLength: 256, WinLength: 1024}
}

// Inverse reconstructs a time-domain waveform from per-frame real and
// imaginary half-spectra, shape [T][K] with K = n_fft/2 + 1, via Hann-window
// overlap-add (spec §4.5):
//
//  1. Allocate an output buffer of length n_fft + (T-1)*hop and an
//     equal-length window-energy accumulator, zero-initialized.
//  2. Build a Hann window of win_length samples.
//  3. For each frame, expand the half-spectrum to a full n_fft complex
//     spectrum via conjugate symmetry, inverse-FFT it, divide by n_fft,
//     window the first win_length samples, and overlap-add into the
//     output (accumulating w[i]^2 into the energy buffer).
//  4. Divide every output sample by its energy-buffer value wherever that
//     value exceeds 1e-8.
func Inverse(real, imag [][]float64, p ISTFTParams) ([]float32, error) {
	t := len(real)
	if t == 0 {
		return nil, nil
	}
	if len(imag) != t {
		return nil, fmt.Errorf("dsp: real/imag frame count mismatch: %d vs %d", t, len(imag))
	}
	if p.NFFT <= 0 || p.NFFT&(p.NFFT-1) != 0 {
		return nil, fmt.Errorf("dsp: n_fft must be a positive power of two, got %d", p.NFFT)
	}
	k := p.NFFT/2 + 1
	for i := range real {
		if len(real[i]) != k || len(imag[i]) != k {
			return nil, fmt.Errorf("dsp: frame %d has %d/%d bins, want %d", i, len(real[i]), len(imag[i]), k)
		}
	}

	outLen := p.NFFT + (t-1)*p.HopLength
	out := make([]float64, outLen)
	energy := make([]float64, outLen)
	window := HannWindow(p.WinLength)

	spectrum := make([]complex128, p.NFFT)
	for frame := 0; frame < t; frame++ {
		fillFullSpectrum(spectrum, real[frame], imag[frame], p.NFFT)
		frameTime := inverseFFT(spectrum)

		offset := frame * p.HopLength
		for i := 0; i < p.WinLength; i++ {
			sample := real128(frameTime[i]) / float64(p.NFFT)
			w := window[i]
			out[offset+i] += sample * w
			energy[offset+i] += w * w
		}
	}

	result := make([]float32, outLen)
	for i, v := range out {
		if energy[i] > 1e-8 {
			v /= energy[i]
		}
		result[i] = float32(v)
	}
	return result, nil
}

func real128(c complex128) float64 {
	return real(c)
}

// fillFullSpectrum expands a one-sided real/imaginary spectrum of
// n/2+1 bins to the full n-bin complex spectrum required by a general
// inverse FFT, using conjugate symmetry for bins n/2+1..n-1.
func fillFullSpectrum(dst []complex128, re, im []float64, n int) {
	k := n/2 + 1
	for i := 0; i < k; i++ {
		dst[i] = complex(re[i], im[i])
	}
	for i := k; i < n; i++ {
		mirror := n - i
		dst[i] = cmplx.Conj(dst[mirror])
	}
}

// inverseFFT computes the unnormalized inverse discrete Fourier transform
// of x (length must be a power of two) via iterative radix-2 Cooley-Tukey.
// Callers divide by len(x) themselves (spec §4.5 step 3a).
func inverseFFT(x []complex128) []complex128 {
	n := len(x)
	a := make([]complex128, n)
	copy(a, x)
	bitReverse(a)

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		angle := 2 * math.Pi / float64(size) // positive angle: inverse transform
		wStep := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for i := 0; i < half; i++ {
				even := a[start+i]
				odd := a[start+i+half] * w
				a[start+i] = even + odd
				a[start+i+half] = even - odd
				w *= wStep
			}
		}
	}
	return a
}

func bitReverse(a []complex128) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j &^= bit
		}
		j |= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}
