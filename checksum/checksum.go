// Package checksum implements the 32-bit content hash used to fingerprint
// raw file bytes for dedup and change detection. It is the Vorbis-style
// CRC-32 with generator polynomial 0x1BF52, independent of the acoustic
// fingerprinting path. Collisions are tolerated as incidental; this is not
// a cryptographic hash.
package checksum

// table is the 256-entry lookup table derived once from the generator
// polynomial, applied 8 times per index.
var table = makeTable()

func makeTable() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			r = (r << 1) ^ ((r >> 31) * 0x1bf52)
		}
		t[i] = r
	}
	return t
}

// Sum folds the bytes of data in [from, to) into initial:
//
//	result = (result << 8) ^ table[(b ^ (result >> 24)) & 0xFF]
//
// It is deterministic and resumable: seeding a second call with the result
// of the first over a split range equals a single call over the full range.
func Sum(data []byte, initial uint32, from, to int) uint32 {
	result := initial
	for _, b := range data[from:to] {
		result = (result << 8) ^ table[(uint32(b)^(result>>24))&0xff]
	}
	return result
}
