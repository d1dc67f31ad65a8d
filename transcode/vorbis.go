package transcode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type vorbisSource struct {
	dec *oggvorbis.Reader
	buf []float32
}

// DecodeVorbis opens an Ogg Vorbis stream.
func DecodeVorbis(r io.Reader) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis: %w", err)
	}
	return &vorbisSource{dec: dec}, nil
}

func (s *vorbisSource) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.dec.Channels() }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) ReadSamples(dst []float64) (int, error) {
	if cap(s.buf) < len(dst) {
		s.buf = make([]float32, len(dst))
	}
	s.buf = s.buf[:len(dst)]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("reading vorbis pcm: %w", err)
		}
		return 0, nil
	}

	for i := range n {
		dst[i] = float64(s.buf[i])
	}
	return n, nil
}
