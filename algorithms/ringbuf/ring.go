package ringbuf

// Ring is a fixed-capacity circular buffer over arbitrary sample types.
// Writes wrap around a cursor and overwrite the oldest data; the buffer
// never grows. It backs real-time sample buffering and the delay lines
// used during spectrogram construction.
type Ring[T any] struct {
	buf    []T
	cursor int
}

// New allocates a ring with size default-valued slots.
func New[T any](size int) *Ring[T] {
	return &Ring[T]{
		buf: make([]T, size),
	}
}

// Len returns the fixed capacity of the ring.
func (r *Ring[T]) Len() int {
	return len(r.buf)
}

// ModIndex normalizes a signed offset relative to the cursor into [0, len).
// Negative offsets are shifted by whole ring lengths until non-negative,
// then reduced modulo the length.
func (r *Ring[T]) ModIndex(i int) int {
	idx := r.cursor + i
	for idx < 0 {
		idx += len(r.buf)
	}
	return idx % len(r.buf)
}

// At returns the element at signed offset i from the cursor. Indices always
// wrap; there are no error conditions.
func (r *Ring[T]) At(i int) T {
	return r.buf[r.ModIndex(i)]
}

// Append writes values at the cursor, wrapping writes longer than the
// remaining contiguous space by splitting them into chunks bounded by the
// distance to the physical end of the buffer. A full buffer is overwritten,
// never grown.
func (r *Ring[T]) Append(values []T) {
	for len(values) > 0 {
		n := len(r.buf) - r.cursor
		if n > len(values) {
			n = len(values)
		}
		copy(r.buf[r.cursor:r.cursor+n], values[:n])
		values = values[n:]
		r.cursor = (r.cursor + n) % len(r.buf)
	}
}

// Slice copies len(dst) elements into dst starting at signed offset from the
// cursor. The read wraps around the physical end and does not modify the
// ring; repeated calls with the same offset yield the same data.
func (r *Ring[T]) Slice(dst []T, offset int) {
	pos := r.ModIndex(offset)
	for len(dst) > 0 {
		n := len(r.buf) - pos
		if n > len(dst) {
			n = len(dst)
		}
		copy(dst[:n], r.buf[pos:pos+n])
		dst = dst[n:]
		pos = (pos + n) % len(r.buf)
	}
}
