package sampler

import (
	"context"
	"fmt"
	"io"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/soniclibs/aria/logging"
	"github.com/soniclibs/aria/transcode"
)

// SampleEvent is one fixed-duration window of mono audio, resampled to the
// sampler's target rate. Events are emitted in window order and stay valid
// after the producing Process call returns.
type SampleEvent struct {
	Index        int       `json:"index"`
	TotalWindows int       `json:"total_windows"`
	SampleRate   uint32    `json:"sample_rate"`
	Duration     float64   `json:"duration"` // seconds
	Data         []float64 `json:"-"`
}

// Sampler slices a decoded stream into a fixed number of fixed-duration
// windows. Each Process call owns its own state; run one Process per file
// and sample multiple files concurrently with separate Samplers.
type Sampler struct {
	windowDuration float64
	windowCount    int
	targetRate     uint32
	logger         logging.Logger
}

// New creates a sampler producing windowCount windows of windowDuration
// seconds each, resampled to targetRate.
func New(windowDuration float64, windowCount int, targetRate uint32) (*Sampler, error) {
	if windowDuration <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %g", windowDuration)
	}
	if windowCount <= 0 {
		return nil, fmt.Errorf("window count must be positive, got %d", windowCount)
	}
	if targetRate == 0 {
		return nil, fmt.Errorf("target sample rate must be positive")
	}

	return &Sampler{
		windowDuration: windowDuration,
		windowCount:    windowCount,
		targetRate:     targetRate,
		logger:         logging.WithFields(logging.Fields{"component": "sampler"}),
	}, nil
}

// Process decodes src and sends one SampleEvent per window to sink, in
// order, until windowCount windows are emitted or the stream ends. A
// trailing partial window is zero-padded and emitted. Cancellation is
// polled between windows: once ctx is done no further events are sent and
// Process returns nil. Decode failures abort with an error; events already
// sent remain valid. Process does not close sink.
func (s *Sampler) Process(ctx context.Context, src transcode.Source, sink chan<- SampleEvent) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srcRate := src.SampleRate()
	if srcRate <= 0 {
		return fmt.Errorf("source reports invalid sample rate %d", srcRate)
	}
	channels := src.Channels()
	if channels < 1 {
		channels = 1
	}

	samplesPerWindow := int(s.windowDuration * float64(srcRate))
	if samplesPerWindow <= 0 {
		return fmt.Errorf("window of %gs is empty at %d Hz", s.windowDuration, srcRate)
	}

	window := make([]float64, 0, samplesPerWindow)
	emitted := 0
	buf := make([]float64, 4096*channels)
	carry := make([]float64, 0, channels)

	for emitted < s.windowCount {
		if ctx.Err() != nil {
			s.logger.Debug("sampling cancelled", logging.Fields{"windows_emitted": emitted})
			return nil
		}

		n, err := src.ReadSamples(buf)

		// Interleaved frames may straddle read boundaries.
		carry = append(carry, buf[:n]...)
		frames := len(carry) / channels
		for f := range frames {
			var sum float64
			for c := range channels {
				sum += carry[f*channels+c]
			}
			window = append(window, sum/float64(channels))

			if len(window) == samplesPerWindow {
				if emitted >= s.windowCount {
					break
				}
				if ctx.Err() != nil {
					return nil
				}
				if sendErr := s.emit(ctx, window, srcRate, emitted, sink); sendErr != nil {
					return sendErr
				}
				emitted++
				window = window[:0]
			}
		}
		carry = append(carry[:0], carry[frames*channels:]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decoding source: %w", err)
		}
	}

	// Zero-pad and flush whatever is left of the final window.
	if len(window) > 0 && emitted < s.windowCount {
		if ctx.Err() != nil {
			return nil
		}
		for len(window) < samplesPerWindow {
			window = append(window, 0)
		}
		if err := s.emit(ctx, window, srcRate, emitted, sink); err != nil {
			return err
		}
		emitted++
	}

	s.logger.Debug("sampling complete", logging.Fields{"windows_emitted": emitted})
	return nil
}

func (s *Sampler) emit(ctx context.Context, window []float64, srcRate, index int, sink chan<- SampleEvent) error {
	data, err := s.resample(window, srcRate)
	if err != nil {
		return fmt.Errorf("resampling window %d: %w", index, err)
	}

	event := SampleEvent{
		Index:        index,
		TotalWindows: s.windowCount,
		SampleRate:   s.targetRate,
		Duration:     s.windowDuration,
		Data:         data,
	}

	select {
	case sink <- event:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// resample converts one window from the source rate to the target rate. A
// fresh engine per window keeps window boundaries independent of filter
// state, so identical windows always produce identical events.
func (s *Sampler) resample(window []float64, srcRate int) ([]float64, error) {
	if uint32(srcRate) == s.targetRate {
		out := make([]float64, len(window))
		copy(out, window)
		return out, nil
	}

	engine, err := resampler.NewEngine(float64(srcRate), float64(s.targetRate), resampler.QualityMedium)
	if err != nil {
		return nil, err
	}

	out, err := engine.Process(window)
	if err != nil {
		return nil, err
	}
	tail, err := engine.Flush()
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}
