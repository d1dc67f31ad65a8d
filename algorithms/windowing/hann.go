package windowing

import (
	"fmt"
	"math"
)

// Hann represents a Hann (raised cosine) window with precomputed
// coefficients. Overlapped Hann-windowed frames are the pre-conditioning
// step for all short-time spectral analysis in this library.
type Hann struct {
	size         int
	coefficients []float64
}

// NewHann creates a symmetric Hann window of the given size.
func NewHann(size int) *Hann {
	h := &Hann{size: size}
	h.generate()
	return h
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size - 1)
	for i := range h.size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}

// Apply applies the window to a signal, returning a new slice. Returns nil
// if the signal length does not match the window size.
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i := range signal {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place.
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range signal {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients.
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size.
func (h *Hann) Size() int {
	return h.size
}
