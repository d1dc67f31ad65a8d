package fingerprint

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSignature() *Signature {
	sig := &Signature{
		SampleRate: 16000,
		NumSamples: 128000,
	}
	sig.PeaksByBand[0] = []FrequencyPeak{
		{Pass: 0, Magnitude: 6100, Bin: 2304},
		{Pass: 3, Magnitude: 6200, Bin: 2310},
	}
	sig.PeaksByBand[2] = []FrequencyPeak{
		{Pass: 1, Magnitude: 7000, Bin: 12800},
	}
	return sig
}

func TestSignatureRoundTrip(t *testing.T) {
	t.Parallel()

	sig := sampleSignature()

	decoded, err := Decode(sig.Encode())
	require.NoError(t, err)
	assert.Equal(t, sig, decoded)
}

func TestSignatureRoundTripEmpty(t *testing.T) {
	t.Parallel()

	sig := &Signature{SampleRate: 8000, NumSamples: 0}
	data := sig.Encode()

	// Header plus five empty band sections.
	assert.Len(t, data, 36)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sig, decoded)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	t.Parallel()

	data := sampleSignature().Encode()
	binary.LittleEndian.PutUint32(data[0:], 0xdeadbeef)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	t.Parallel()

	data := sampleSignature().Encode()
	binary.LittleEndian.PutUint32(data[4:], 99)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	t.Parallel()

	data := sampleSignature().Encode()

	for _, cut := range []int{0, 3, 8, 15, 20, len(data) - 1} {
		_, err := Decode(data[:cut])
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestDecodeRejectsOverstatedBandCount(t *testing.T) {
	t.Parallel()

	data := sampleSignature().Encode()

	// First band count lives right after the 16-byte header.
	binary.LittleEndian.PutUint32(data[16:], 1<<30)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	t.Parallel()

	data := append(sampleSignature().Encode(), 0x00)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestPeakCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, sampleSignature().PeakCount())
	assert.Equal(t, 0, (&Signature{}).PeakCount())
}
