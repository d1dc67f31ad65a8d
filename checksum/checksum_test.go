package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte("the quick brown fox jumps over the lazy dog")

	a := Sum(data, 0, 0, len(data))
	b := Sum(data, 0, 0, len(data))
	assert.Equal(t, a, b)
	assert.NotZero(t, a)
}

func TestSumSensitiveToSingleByte(t *testing.T) {
	t.Parallel()

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	original := Sum(data, 0, 0, len(data))

	data[100] ^= 0x01
	assert.NotEqual(t, original, Sum(data, 0, 0, len(data)))
}

func TestSumResumableAcrossSplit(t *testing.T) {
	t.Parallel()

	data := []byte("split this byte range anywhere you like")

	full := Sum(data, 0, 0, len(data))
	for split := 0; split <= len(data); split++ {
		partial := Sum(data, 0, 0, split)
		assert.Equal(t, full, Sum(data, partial, split, len(data)), "split at %d", split)
	}
}

func TestSumSubrange(t *testing.T) {
	t.Parallel()

	data := []byte("prefix|payload|suffix")
	sub := Sum(data, 0, 7, 14)
	standalone := Sum([]byte("payload"), 0, 0, 7)
	assert.Equal(t, standalone, sub)
}

func TestSumEmptyRange(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3}
	assert.Equal(t, uint32(0xdeadbeef), Sum(data, 0xdeadbeef, 1, 1))
}
