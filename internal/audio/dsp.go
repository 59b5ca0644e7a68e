package audio

import "math"

// PeakNormalize scales samples so the peak amplitude reaches 1.0. Silent
// input is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return samples
	}
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s / peak
	}
	return out
}

// dcBlockPole is the feedback coefficient of the single-pole DC-blocking
// filter below. 0.99 puts the cutoff at roughly 25-40 Hz at typical TTS
// sample rates (16-24 kHz) while settling quickly enough not to leave an
// audible DC tail.
const dcBlockPole = 0.99

// DCBlock removes DC offset from samples using a single-pole high-pass
// filter: y[n] = x[n] - x[n-1] + dcBlockPole*y[n-1].
func DCBlock(samples []float32, sampleRate int) []float32 {
	out := make([]float32, len(samples))
	var prevIn, prevOut float64
	for i, s := range samples {
		x := float64(s)
		y := x - prevIn + dcBlockPole*prevOut
		out[i] = float32(y)
		prevIn = x
		prevOut = y
	}
	return out
}

// FadeIn applies a linear fade-in ramp over the given duration in
// milliseconds, leaving samples after the fade window unmodified.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	n := int(ms / 1000.0 * float64(sampleRate))
	if n <= 0 {
		return out
	}
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		gain := float32(i) / float32(n)
		out[i] *= gain
	}
	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in
// milliseconds, leaving samples before the fade window unmodified.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	n := int(ms / 1000.0 * float64(sampleRate))
	if n <= 0 {
		return out
	}
	if n > len(out) {
		n = len(out)
	}
	start := len(out) - n
	for i := start; i < len(out); i++ {
		distFromEnd := len(out) - 1 - i
		gain := float32(distFromEnd) / float32(n)
		out[i] *= gain
	}
	return out
}

// ApplyHooks runs each hook over samples in order, feeding every hook the
// previous hook's output. With no hooks, samples is returned unchanged.
func ApplyHooks(samples []float32, hooks ...func([]float32) []float32) []float32 {
	for _, h := range hooks {
		samples = h(samples)
	}
	return samples
}
