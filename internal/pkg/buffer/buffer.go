// Package buffer implements the in-memory accumulator for formatted track
// lines. The buffer has a fixed capacity and rejects appends that would not
// fit, so a record is either stored whole or not at all.
package buffer

import "errors"

// ErrBufferFull is returned by Append when the sample does not fit in the
// remaining capacity. The buffer is left untouched.
var ErrBufferFull = errors.New("sample buffer full")

// MinCapacity is the smallest capacity accepted by NewSampleBuffer, enough
// for one reserved byte and at least one byte of payload.
const MinCapacity = 2

// SampleBuffer accumulates formatted sample lines until they are flushed to
// storage. One byte of capacity is always held back, so the writable capacity
// is Cap()-1. Not safe for concurrent use; it is owned by a single loop.
type SampleBuffer struct {
	buf     []byte
	used    int
	samples int
}

// NewSampleBuffer returns an empty buffer holding up to capacity bytes.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &SampleBuffer{buf: make([]byte, 0, capacity)}
}

// Append stores line at the end of the buffer. If the line would exceed the
// writable capacity it returns ErrBufferFull and the buffer is unchanged.
func (b *SampleBuffer) Append(line []byte) error {
	if b.used+len(line) >= cap(b.buf) {
		return ErrBufferFull
	}
	b.buf = append(b.buf, line...)
	b.used += len(line)
	b.samples++
	return nil
}

// Len returns the number of bytes currently buffered.
func (b *SampleBuffer) Len() int {
	return b.used
}

// Cap returns the total capacity, including the reserved byte.
func (b *SampleBuffer) Cap() int {
	return cap(b.buf)
}

// SampleCount returns the number of samples appended since the last reset.
func (b *SampleBuffer) SampleCount() int {
	return b.samples
}

// ThresholdReached reports whether at least n samples have been appended
// since the last reset. The sample count is what matters here, not the byte
// fill level.
func (b *SampleBuffer) ThresholdReached(n int) bool {
	return b.samples >= n
}

// Snapshot returns the buffered bytes for writing. The returned slice aliases
// the internal storage and is only valid until the next Append or Reset.
func (b *SampleBuffer) Snapshot() []byte {
	return b.buf
}

// Reset empties the buffer. It must be called after every successful flush
// and is the only way content is removed.
func (b *SampleBuffer) Reset() {
	b.buf = b.buf[:0]
	b.used = 0
	b.samples = 0
}
