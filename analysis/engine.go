package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/soniclibs/aria/algorithms/spectral"
	"github.com/soniclibs/aria/algorithms/windowing"
	"github.com/soniclibs/aria/logging"
	"github.com/soniclibs/aria/transcode"
)

// ErrNoAudioData is returned when a source decodes to zero samples.
var ErrNoAudioData = errors.New("analysis: no audio data processed")

// Engine performs framed, Hann-windowed, overlapped Fourier analysis over a
// decoded stream and produces one AudioDescription per file. The transform
// itself is dispatched to the backend selected by the computing device.
//
// An Engine is a batch, per-file worker: run one Analyze per file, multiple
// engines concurrently. Cancellation is cooperative and polled between
// frames; a cancelled run returns a nil description and a nil error,
// distinct from failure.
type Engine struct {
	windowSize  int
	hopSize     int
	device      ComputingDevice
	window      *windowing.Hann
	transformer Transformer
	logger      logging.Logger
}

// NewEngine creates an analysis engine with frame size windowSize and hop
// size hopSize (hopSize ≤ windowSize, typically half of it).
func NewEngine(device ComputingDevice, windowSize, hopSize int) (*Engine, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if hopSize <= 0 || hopSize > windowSize {
		return nil, fmt.Errorf("hop size must be in (0, %d], got %d", windowSize, hopSize)
	}

	transformer, err := NewTransformer(device, windowSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		windowSize:  windowSize,
		hopSize:     hopSize,
		device:      device,
		window:      windowing.NewHann(windowSize),
		transformer: transformer,
		logger: logging.WithFields(logging.Fields{
			"component": "analysis",
			"device":    device.String(),
		}),
	}, nil
}

// Close releases the transform backend.
func (e *Engine) Close() error {
	return e.transformer.Close()
}

// Analyze decodes the source to mono and analyzes it. See AnalyzeSamples
// for result semantics.
func (e *Engine) Analyze(ctx context.Context, src transcode.Source) (*AudioDescription, error) {
	samples, err := readMono(src)
	if err != nil {
		return nil, fmt.Errorf("decoding source: %w", err)
	}
	return e.AnalyzeSamples(ctx, samples, src.SampleRate())
}

// AnalyzeSamples analyzes an already-decoded mono signal. It returns
// (nil, nil) when ctx is cancelled, including before the first frame, and
// (nil, err) on decode or backend failure.
func (e *Engine) AnalyzeSamples(ctx context.Context, samples []float64, sampleRate int) (*AudioDescription, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return nil, nil
	}
	if len(samples) == 0 {
		return nil, ErrNoAudioData
	}

	// Short signals are zero-padded up to a single frame.
	padded := samples
	if len(padded) < e.windowSize {
		padded = make([]float64, e.windowSize)
		copy(padded, samples)
	}

	sum := make([]complex128, e.windowSize)
	frame := make([]float64, e.windowSize)
	frames := 0

	for start := 0; start+e.windowSize <= len(padded); start += e.hopSize {
		if ctx.Err() != nil {
			e.logger.Debug("analysis cancelled", logging.Fields{"frames_done": frames})
			return nil, nil
		}

		copy(frame, padded[start:start+e.windowSize])
		if err := e.window.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		spectrum, err := e.transformer.Transform(frame)
		if err != nil {
			return nil, fmt.Errorf("transform on %s backend: %w", e.device, err)
		}
		for i, v := range spectrum {
			sum[i] += v
		}
		frames++
	}

	for i := range sum {
		sum[i] /= complex(float64(frames), 0)
	}

	desc := &AudioDescription{
		SampleRate:   uint32(sampleRate),
		Duration:     float64(len(samples)) / float64(sampleRate),
		TotalSamples: uint64(len(samples)),
		Spectrum:     sum,
		RMS:          float32(spectral.RMS(samples)),
		ZCR:          spectral.ZCR(samples),
		Energy:       float32(spectral.Energy(samples)),
	}

	e.logger.Debug("analysis complete", logging.Fields{
		"total_samples": desc.TotalSamples,
		"frames":        frames,
	})

	return desc, nil
}

// readMono drains a source and mixes interleaved channels down to mono by
// averaging. A trailing partial frame is dropped.
func readMono(src transcode.Source) ([]float64, error) {
	channels := src.Channels()
	if channels < 1 {
		channels = 1
	}

	var raw []float64
	buf := make([]float64, 4096*channels)
	for {
		n, err := src.ReadSamples(buf)
		raw = append(raw, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if channels == 1 {
		return raw, nil
	}

	frames := len(raw) / channels
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += raw[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono, nil
}
