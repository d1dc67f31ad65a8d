package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality over real-valued
// frames, backed by mjibson/go-dsp.
type FFT struct{}

// NewFFT creates a new FFT calculator.
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the forward FFT of a real-valued frame.
// Takes []float64 input and returns the full []complex128 spectrum.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// go-dsp handles all sizes efficiently, including non-power-of-2.
	return fft.FFTReal(x)
}

// ComputeInverse computes the inverse FFT.
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}
