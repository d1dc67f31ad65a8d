package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Time-domain descriptors computed over a whole decoded signal. They feed
// the per-file audio description alongside the averaged spectrum.

// RMS returns the root-mean-square amplitude, a loudness proxy.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}

// Energy returns the total signal energy, the sum of squared samples.
func Energy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Dot(samples, samples)
}

// ZCR returns the zero-crossing count, the number of sign changes between
// consecutive samples. A pitch/noisiness proxy.
func ZCR(samples []float64) uint64 {
	var crossings uint64
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0 && samples[i] < 0) || (samples[i-1] < 0 && samples[i] >= 0) {
			crossings++
		}
	}
	return crossings
}
