package transcode

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

type mp3Source struct {
	dec        *gomp3.Decoder
	buf        []byte
	sampleRate int
}

// DecodeMP3 opens an MP3 stream. The decoder always yields 16-bit
// little-endian stereo PCM.
func DecodeMP3(r io.Reader) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3: %w", err)
	}

	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
	}, nil
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return 2 }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) ReadSamples(dst []float64) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("reading mp3 pcm: %w", err)
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float64(v) / 32768.0
	}
	return samples, nil
}
