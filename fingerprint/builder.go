package fingerprint

import (
	"context"
	"fmt"
	"math"

	"github.com/soniclibs/aria/algorithms/filters"
	"github.com/soniclibs/aria/algorithms/ringbuf"
	"github.com/soniclibs/aria/algorithms/spectral"
	"github.com/soniclibs/aria/algorithms/windowing"
	"github.com/soniclibs/aria/logging"
	"github.com/soniclibs/aria/sampler"
)

// Samples are scaled to fixed-point range before the FFT and magnitudes
// scaled back down, matching the integer pipeline the peak normalization
// constants were tuned for.
const (
	sampleScale   = 1024.0 * 64.0
	magnitudeNorm = float64(1 << 17)
	magnitudeMin  = 1e-10
)

// Builder turns a stream of mono samples into a Signature. Feed it
// SampleEvents (or raw samples) in order, then call Build. A Builder is
// single-stream state and is not safe for concurrent use; identical input
// always produces an identical signature.
type Builder struct {
	cfg        *Config
	sampleRate int

	filter  *filters.LowPass
	window  []float64
	fft     *spectral.FFT
	samples *ringbuf.Ring[float64]

	frame   []float64
	mags    []float64
	hopFill int
	total   int
	pass    int32

	peaks  [NumBands][]FrequencyPeak
	logger logging.Logger
}

// NewBuilder creates a signature builder for mono input at sampleRate.
// A nil cfg selects DefaultConfig.
func NewBuilder(cfg *Config, sampleRate int) (*Builder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fingerprint config: %w", err)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	return &Builder{
		cfg:        cfg,
		sampleRate: sampleRate,
		filter:     filters.NewLowPass(cfg.LowPassCutoff, float64(sampleRate)),
		window:     windowing.NewHann(cfg.WindowSize).Coefficients(),
		fft:        spectral.NewFFT(),
		samples:    ringbuf.New[float64](cfg.WindowSize),
		frame:      make([]float64, cfg.WindowSize),
		mags:       make([]float64, cfg.WindowSize/2+1),
		logger:     logging.WithFields(logging.Fields{"component": "fingerprint"}),
	}, nil
}

// AddEvent processes one sampler window. The event's rate must match the
// builder's.
func (b *Builder) AddEvent(event sampler.SampleEvent) error {
	if int(event.SampleRate) != b.sampleRate {
		return fmt.Errorf("event sample rate %d does not match builder rate %d", event.SampleRate, b.sampleRate)
	}
	b.ProcessSamples(event.Data)
	return nil
}

// Consume drains events until the channel closes or ctx is cancelled.
// Cancellation is polled between events and is not an error.
func (b *Builder) Consume(ctx context.Context, events <-chan sampler.SampleEvent) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.Debug("fingerprinting cancelled", logging.Fields{"passes": b.pass})
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := b.AddEvent(event); err != nil {
				return err
			}
		}
	}
}

// ProcessSamples low-pass filters the samples into the analysis ring and
// runs one spectrogram pass per completed hop.
func (b *Builder) ProcessSamples(samples []float64) {
	filtered := b.filter.ProcessBuffer(samples)

	for len(filtered) > 0 {
		n := b.cfg.HopSize - b.hopFill
		if n > len(filtered) {
			n = len(filtered)
		}
		b.samples.Append(filtered[:n])
		b.hopFill += n
		b.total += n
		filtered = filtered[n:]

		if b.hopFill == b.cfg.HopSize {
			b.hopFill = 0
			if b.total >= b.cfg.WindowSize {
				b.processFrame()
			}
		}
	}
}

// Build assembles the signature from every pass so far. The builder can
// keep accepting samples afterwards; Build snapshots the current state.
func (b *Builder) Build() *Signature {
	sig := &Signature{
		SampleRate: int32(b.sampleRate),
		NumSamples: int32(b.total),
	}
	for band, peaks := range &b.peaks {
		sig.PeaksByBand[band] = append([]FrequencyPeak(nil), peaks...)
	}

	b.logger.Debug("signature built", logging.Fields{
		"passes": b.pass,
		"peaks":  sig.PeakCount(),
	})
	return sig
}

func (b *Builder) processFrame() {
	b.samples.Slice(b.frame, -b.cfg.WindowSize)

	for i := range b.frame {
		scaled := math.Round(b.frame[i] * sampleScale)
		b.frame[i] = scaled * b.window[i]
	}

	spectrum := b.fft.Compute(b.frame)
	for i := range b.mags {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		mag := (re*re + im*im) / magnitudeNorm
		if mag < magnitudeMin {
			mag = magnitudeMin
		}
		b.mags[i] = mag
	}

	b.extractPeaks()
	b.pass++
}

// extractPeaks keeps, per band, every bin that is a local maximum within
// NeighborRadius bins and reaches PeakThreshold of the band's loudest
// magnitude this pass. Ties resolve to the lowest bin.
func (b *Builder) extractPeaks() {
	for band := range NumBands {
		lo, hi := b.bandBins(band)
		if lo > hi {
			continue
		}

		bandMax := 0.0
		for bin := lo; bin <= hi; bin++ {
			if b.mags[bin] > bandMax {
				bandMax = b.mags[bin]
			}
		}
		threshold := bandMax * b.cfg.PeakThreshold

		for bin := lo; bin <= hi; bin++ {
			if b.mags[bin] < threshold || !b.isLocalMax(bin) {
				continue
			}
			b.peaks[band] = append(b.peaks[band], FrequencyPeak{
				Pass:      b.pass,
				Magnitude: int32(normalizePeak(b.mags[bin])),
				Bin:       b.refineBin(bin),
			})
		}
	}
}

// bandBins returns the inclusive bin range whose center frequencies fall
// inside band's [low, high) edge interval, clamped so interpolation
// neighbors stay in range.
func (b *Builder) bandBins(band int) (int, int) {
	binHz := float64(b.sampleRate) / float64(b.cfg.WindowSize)

	lo := int(math.Ceil(b.cfg.BandEdges[band] / binHz))
	hi := int(math.Ceil(b.cfg.BandEdges[band+1]/binHz)) - 1

	if lo < 1 {
		lo = 1
	}
	if hi > len(b.mags)-2 {
		hi = len(b.mags) - 2
	}
	return lo, hi
}

// isLocalMax reports whether bin dominates its neighborhood. The left side
// uses >= and the right side > so a flat tie yields exactly one peak, at
// its lowest bin.
func (b *Builder) isLocalMax(bin int) bool {
	for d := 1; d <= b.cfg.NeighborRadius; d++ {
		if left := bin - d; left >= 0 && b.mags[left] >= b.mags[bin] {
			return false
		}
		if right := bin + d; right < len(b.mags) && b.mags[right] > b.mags[bin] {
			return false
		}
	}
	return true
}

// refineBin interpolates the true peak position between bins from the
// normalized magnitudes of the peak and its direct neighbors, in 1/64th-bin
// units.
func (b *Builder) refineBin(bin int) int32 {
	before := normalizePeak(b.mags[bin-1])
	peak := normalizePeak(b.mags[bin])
	after := normalizePeak(b.mags[bin+1])

	denom := 2*peak - after - before
	variation := int32(0)
	if denom != 0 {
		variation = int32(32 * (after - before) / denom)
	}
	return int32(bin)*64 + variation
}

func normalizePeak(x float64) float64 {
	return math.Log(math.Max(x, 1.0/64.0))*1477.3 + 6144.0
}
