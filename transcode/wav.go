package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned when the input is not a RIFF/WAVE stream.
var ErrNotWAV = errors.New("transcode: not a wav file")

type wavSource struct {
	dec        *wav.Decoder
	buf        *audio.IntBuffer
	scale      float64
	sampleRate int
	channels   int
}

// DecodeWAV opens a WAV stream. The underlying decoder needs seeking, so a
// reader that is not an io.ReadSeeker is buffered in memory first.
func DecodeWAV(r io.Reader) (Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("buffering wav input: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("seeking wav pcm chunk: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	return &wavSource{
		dec: dec,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: int(dec.NumChans),
				SampleRate:  int(dec.SampleRate),
			},
			SourceBitDepth: bitDepth,
		},
		scale:      float64(int64(1) << (bitDepth - 1)),
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
	}, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float64) (int, error) {
	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("reading wav pcm: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float64(s.buf.Data[i]) / s.scale
	}
	return n, nil
}
