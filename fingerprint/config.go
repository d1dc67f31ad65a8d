package fingerprint

import "fmt"

// Config controls spectrogram construction and peak extraction.
type Config struct {
	// WindowSize is the short-time FFT frame size in samples.
	WindowSize int `json:"window_size"`

	// HopSize is the frame advance in samples.
	HopSize int `json:"hop_size"`

	// BandEdges are NumBands+1 ascending frequencies in Hz bounding the
	// contiguous peak bands.
	BandEdges []float64 `json:"band_edges"`

	// PeakThreshold is the band-relative magnitude ratio a local maximum
	// must reach to be kept as a peak.
	PeakThreshold float64 `json:"peak_threshold"`

	// NeighborRadius is the half-width in bins of the local-maximum test.
	NeighborRadius int `json:"neighbor_radius"`

	// LowPassCutoff is the anti-aliasing pre-filter cutoff in Hz.
	LowPassCutoff float64 `json:"low_pass_cutoff"`
}

// DefaultConfig returns the standard fingerprinting parameters: 2048-bin
// frames advanced by 128 samples over 16 kHz input.
func DefaultConfig() *Config {
	return &Config{
		WindowSize:     2048,
		HopSize:        128,
		BandEdges:      []float64{250, 520, 1450, 2500, 3500, 5500},
		PeakThreshold:  0.3,
		NeighborRadius: 3,
		LowPassCutoff:  5512.5,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.HopSize <= 0 || c.HopSize > c.WindowSize {
		return fmt.Errorf("hop size must be in (0, %d], got %d", c.WindowSize, c.HopSize)
	}
	if len(c.BandEdges) != NumBands+1 {
		return fmt.Errorf("expected %d band edges, got %d", NumBands+1, len(c.BandEdges))
	}
	for i := 1; i < len(c.BandEdges); i++ {
		if c.BandEdges[i] <= c.BandEdges[i-1] {
			return fmt.Errorf("band edges must ascend, got %g after %g", c.BandEdges[i], c.BandEdges[i-1])
		}
	}
	if c.BandEdges[0] < 0 {
		return fmt.Errorf("band edges must be non-negative, got %g", c.BandEdges[0])
	}
	if c.PeakThreshold <= 0 || c.PeakThreshold > 1 {
		return fmt.Errorf("peak threshold must be in (0, 1], got %g", c.PeakThreshold)
	}
	if c.NeighborRadius < 1 {
		return fmt.Errorf("neighbor radius must be at least 1, got %d", c.NeighborRadius)
	}
	if c.LowPassCutoff <= 0 {
		return fmt.Errorf("low-pass cutoff must be positive, got %g", c.LowPassCutoff)
	}
	return nil
}
