package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniclibs/aria/transcode"
)

func collect(t *testing.T, s *Sampler, ctx context.Context, src transcode.Source) []SampleEvent {
	t.Helper()

	sink := make(chan SampleEvent, 64)
	require.NoError(t, s.Process(ctx, src, sink))
	close(sink)

	var events []SampleEvent
	for e := range sink {
		events = append(events, e)
	}
	return events
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(0, 4, 16000)
	assert.Error(t, err)

	_, err = New(1.0, 0, 16000)
	assert.Error(t, err)

	_, err = New(1.0, 4, 0)
	assert.Error(t, err)

	s, err := New(1.0, 4, 16000)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestProcessEmitsOrderedWindows(t *testing.T) {
	t.Parallel()

	const rate = 8000

	// Three full seconds at the source rate, no resampling.
	signal := make([]float64, 3*rate)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 440 * float64(i) / rate)
	}

	s, err := New(1.0, 3, rate)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(signal, rate, 1))
	require.Len(t, events, 3)

	for i, e := range events {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, 3, e.TotalWindows)
		assert.Equal(t, uint32(rate), e.SampleRate)
		assert.InDelta(t, 1.0, e.Duration, 1e-9)
		assert.Len(t, e.Data, rate)
	}

	// Windows are consecutive slices of the input.
	assert.Equal(t, signal[:rate], events[0].Data)
	assert.Equal(t, signal[rate:2*rate], events[1].Data)
}

func TestProcessStopsAtWindowCount(t *testing.T) {
	t.Parallel()

	const rate = 4000

	signal := make([]float64, 10*rate)
	for i := range signal {
		signal[i] = 0.25
	}

	s, err := New(1.0, 2, rate)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(signal, rate, 1))
	assert.Len(t, events, 2)
}

func TestProcessPadsFinalPartialWindow(t *testing.T) {
	t.Parallel()

	const rate = 4000

	// One and a half windows of input.
	signal := make([]float64, rate+rate/2)
	for i := range signal {
		signal[i] = 0.5
	}

	s, err := New(1.0, 4, rate)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(signal, rate, 1))
	require.Len(t, events, 2)

	require.Len(t, events[1].Data, rate)
	assert.Equal(t, 0.5, events[1].Data[0])
	assert.Equal(t, 0.0, events[1].Data[rate-1])
}

func TestProcessMixesStereoToMono(t *testing.T) {
	t.Parallel()

	const rate = 4000

	interleaved := make([]float64, 2*rate)
	for i := 0; i < rate; i++ {
		interleaved[2*i] = 0.2
		interleaved[2*i+1] = 0.6
	}

	s, err := New(1.0, 1, rate)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(interleaved, rate, 2))
	require.Len(t, events, 1)

	for _, v := range events[0].Data {
		assert.InDelta(t, 0.4, v, 1e-12)
	}
}

func TestProcessResamplesToTargetRate(t *testing.T) {
	t.Parallel()

	const srcRate = 44100
	const targetRate = 16000

	signal := make([]float64, srcRate)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 440 * float64(i) / srcRate)
	}

	s, err := New(1.0, 1, targetRate)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(signal, srcRate, 1))
	require.Len(t, events, 1)

	assert.Equal(t, uint32(targetRate), events[0].SampleRate)

	// One second of audio lands near one second's worth of target-rate
	// samples, within resampler latency slack.
	assert.InDelta(t, targetRate, len(events[0].Data), float64(targetRate)/100)
}

func TestProcessCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	const rate = 4000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(1.0, 4, rate)
	require.NoError(t, err)

	events := collect(t, s, ctx, transcode.NewPCMSource(make([]float64, 8*rate), rate, 1))
	assert.Empty(t, events)
}

func TestProcessEmptySourceEmitsNothing(t *testing.T) {
	t.Parallel()

	s, err := New(1.0, 4, 8000)
	require.NoError(t, err)

	events := collect(t, s, context.Background(), transcode.NewPCMSource(nil, 8000, 1))
	assert.Empty(t, events)
}
