package fingerprint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// NumBands is fixed by the wire format: every signature carries exactly
// five band sections.
const NumBands = 5

const (
	signatureMagic   uint32 = 0xcafe2580
	signatureVersion uint32 = 1
)

var (
	ErrBadMagic     = errors.New("fingerprint: bad signature magic")
	ErrBadVersion   = errors.New("fingerprint: unsupported signature version")
	ErrTruncated    = errors.New("fingerprint: truncated signature")
	ErrTrailingData = errors.New("fingerprint: trailing bytes after signature")
)

// FrequencyPeak is one spectral peak: the spectrogram pass (frame) it was
// found in, its normalized magnitude, and its interpolated frequency bin
// in 1/64th-bin units.
type FrequencyPeak struct {
	Pass      int32 `json:"pass"`
	Magnitude int32 `json:"magnitude"`
	Bin       int32 `json:"bin"`
}

// Signature is an acoustic fingerprint: per-band peak lists plus the
// sample rate and sample count they were extracted from.
type Signature struct {
	SampleRate  int32                     `json:"sample_rate"`
	NumSamples  int32                     `json:"num_samples"`
	PeaksByBand [NumBands][]FrequencyPeak `json:"peaks_by_band"`
}

// Encode serializes the signature. Layout, all little-endian: magic u32,
// version u32, sample rate i32, sample count i32, then exactly NumBands
// sections of peak count u32 followed by that many (pass, magnitude, bin)
// i32 triples.
func (s *Signature) Encode() []byte {
	size := 16
	for _, peaks := range s.PeaksByBand {
		size += 4 + 12*len(peaks)
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	write := func(v uint32) {
		binary.Write(buf, binary.LittleEndian, v)
	}

	write(signatureMagic)
	write(signatureVersion)
	write(uint32(s.SampleRate))
	write(uint32(s.NumSamples))

	for _, peaks := range s.PeaksByBand {
		write(uint32(len(peaks)))
		for _, p := range peaks {
			write(uint32(p.Pass))
			write(uint32(p.Magnitude))
			write(uint32(p.Bin))
		}
	}

	return buf.Bytes()
}

// Decode parses an encoded signature, rejecting bad magic or version,
// truncation, band counts that disagree with the remaining length, and
// trailing bytes.
func Decode(data []byte) (*Signature, error) {
	pos := 0
	read := func() (uint32, error) {
		if pos+4 > len(data) {
			return 0, ErrTruncated
		}
		v := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		return v, nil
	}

	magic, err := read()
	if err != nil {
		return nil, err
	}
	if magic != signatureMagic {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}

	version, err := read()
	if err != nil {
		return nil, err
	}
	if version != signatureVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}

	sampleRate, err := read()
	if err != nil {
		return nil, err
	}
	numSamples, err := read()
	if err != nil {
		return nil, err
	}

	sig := &Signature{
		SampleRate: int32(sampleRate),
		NumSamples: int32(numSamples),
	}

	for band := range NumBands {
		count, err := read()
		if err != nil {
			return nil, err
		}
		if int(count) > (len(data)-pos)/12 {
			return nil, fmt.Errorf("%w: band %d declares %d peaks", ErrTruncated, band, count)
		}

		if count == 0 {
			continue
		}
		peaks := make([]FrequencyPeak, count)
		for i := range peaks {
			pass, _ := read()
			magnitude, _ := read()
			bin, err := read()
			if err != nil {
				return nil, err
			}
			peaks[i] = FrequencyPeak{
				Pass:      int32(pass),
				Magnitude: int32(magnitude),
				Bin:       int32(bin),
			}
		}
		sig.PeaksByBand[band] = peaks
	}

	if pos != len(data) {
		return nil, fmt.Errorf("%w: %d extra", ErrTrailingData, len(data)-pos)
	}

	return sig, nil
}

// PeakCount returns the total number of peaks across all bands.
func (s *Signature) PeakCount() int {
	total := 0
	for _, peaks := range s.PeaksByBand {
		total += len(peaks)
	}
	return total
}
