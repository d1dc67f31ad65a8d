// Package transcode turns container formats into PCM sample streams for the
// analysis and sampling layers. Decoding is pull-based: callers read
// interleaved float64 samples in [-1, 1] until io.EOF.
package transcode

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when no decoder is registered for a format.
var ErrUnknownFormat = errors.New("transcode: unknown format")

// Source is a decoded PCM stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1 = mono, 2 = stereo).
	Channels() int
	// ReadSamples fills dst with interleaved samples in [-1, 1] and returns
	// the number of values written. n == 0 with io.EOF ends the stream.
	ReadSamples(dst []float64) (int, error)
	// Close releases decoder resources.
	Close() error
}

// DecodeFunc constructs a Source from an input reader.
type DecodeFunc func(r io.Reader) (Source, error)

// Registry maps format keys ("wav", "mp3", "ogg") to decoders.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]DecodeFunc
}

// NewRegistry returns a registry preloaded with the built-in decoders.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]DecodeFunc)}
	r.Register("wav", DecodeWAV)
	r.Register("mp3", DecodeMP3)
	r.Register("ogg", DecodeVorbis)
	return r
}

// Register adds or replaces the decoder for a format key.
func (r *Registry) Register(format string, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[strings.ToLower(format)] = fn
}

// Decode opens a Source for the given format key.
func (r *Registry) Decode(format string, src io.Reader) (Source, error) {
	r.mu.Lock()
	fn, ok := r.codecs[strings.ToLower(format)]
	r.mu.Unlock()
	if !ok {
		return nil, ErrUnknownFormat
	}
	return fn(src)
}

// PCMSource adapts an in-memory sample slice to the Source interface. Used
// for already-decoded audio and throughout the tests.
type PCMSource struct {
	samples    []float64
	sampleRate int
	channels   int
	pos        int
}

// NewPCMSource wraps interleaved samples at the given rate and channel count.
func NewPCMSource(samples []float64, sampleRate, channels int) *PCMSource {
	return &PCMSource{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// SampleRate implements Source.
func (p *PCMSource) SampleRate() int { return p.sampleRate }

// Channels implements Source.
func (p *PCMSource) Channels() int { return p.channels }

// ReadSamples implements Source.
func (p *PCMSource) ReadSamples(dst []float64) (int, error) {
	if p.pos >= len(p.samples) {
		return 0, io.EOF
	}
	n := copy(dst, p.samples[p.pos:])
	p.pos += n
	return n, nil
}

// Close implements Source.
func (p *PCMSource) Close() error { return nil }
