package filters

import (
	"math"
)

// LowPass implements a single-pole (first order RC) low-pass filter used to
// pre-condition samples before spectrogram construction, suppressing
// aliasing energy above the cutoff.
//
// Difference equation:
//
//	y[n] = y[n-1] + alpha * (x[n] - y[n-1])
//
// where alpha = dt / (RC + dt), RC = 1 / (2*pi*fc).
type LowPass struct {
	alpha float64

	// State
	previous float64
}

// NewLowPass creates a low-pass filter with the given cutoff frequency and
// sample rate, both in Hz.
func NewLowPass(cutoffFreq, sampleRate float64) *LowPass {
	rc := 1.0 / (2.0 * math.Pi * cutoffFreq)
	dt := 1.0 / sampleRate

	return &LowPass{
		alpha: dt / (rc + dt),
	}
}

// Process filters a single sample, advancing the filter state.
func (lp *LowPass) Process(sample float64) float64 {
	lp.previous += lp.alpha * (sample - lp.previous)
	return lp.previous
}

// ProcessBuffer filters an entire buffer, returning a new slice. The filter
// state carries across calls so consecutive buffers form one stream.
func (lp *LowPass) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = lp.Process(sample)
	}
	return output
}

// Reset clears the filter state.
func (lp *LowPass) Reset() {
	lp.previous = 0
}
