// Package window provides the fixed-capacity marking buffer used by the
// segmented sieve.
//
// A Window represents one contiguous block [origin, origin+Len()) of the
// numeric domain. Bit i is set once origin+i is resolved, either proven
// composite or promoted to a prime. The buffer is allocated once and reused
// for every block via Reset.
package window

import (
	"github.com/bits-and-blooms/bitset"
)

// Window is a bit-per-candidate buffer with a running mark count.
//
// Window is not safe for concurrent use; each worker owns its own.
type Window struct {
	bits     *bitset.BitSet
	capacity uint32
	length   uint32
	marked   uint32
}

// New allocates a window able to hold capacity candidates.
//
// The active length starts equal to capacity.
func New(capacity uint32) *Window {
	return &Window{
		bits:     bitset.New(uint(capacity)),
		capacity: capacity,
		length:   capacity,
	}
}

// Reset clears every mark and sets the active length for the next block.
//
// length is clamped to the capacity; the underlying buffer is never resized.
func (w *Window) Reset(length uint32) {
	w.bits.ClearAll()
	w.marked = 0
	w.length = min(length, w.capacity)
}

// Mark sets offset as resolved. Marking an already-marked offset is a no-op.
// Offsets outside the active length are ignored.
func (w *Window) Mark(offset uint32) {
	if offset >= w.length {
		return
	}
	if w.bits.Test(uint(offset)) {
		return
	}
	w.bits.Set(uint(offset))
	w.marked++
}

// IsMarked reports whether offset is resolved. Offsets past the active
// length report true so callers never walk off the block.
func (w *Window) IsMarked(offset uint32) bool {
	if offset >= w.length {
		return true
	}

	return w.bits.Test(uint(offset))
}

// NextUnmarked returns the first unresolved offset at or after from.
//
// Returns:
//   - uint32: The offset
//   - bool: false if every offset in [from, Len()) is marked
func (w *Window) NextUnmarked(from uint32) (uint32, bool) {
	if from >= w.length {
		return 0, false
	}
	next, ok := w.bits.NextClear(uint(from))
	if !ok || next >= uint(w.length) {
		return 0, false
	}

	return uint32(next), true //nolint:gosec // bounded by w.length
}

// Marked returns the number of resolved offsets.
func (w *Window) Marked() uint32 {
	return w.marked
}

// Len returns the active length.
func (w *Window) Len() uint32 {
	return w.length
}

// Cap returns the fixed capacity.
func (w *Window) Cap() uint32 {
	return w.capacity
}

// Full reports whether every offset in the active length is resolved.
func (w *Window) Full() bool {
	return w.marked >= w.length
}

// SizeBytes returns the number of bytes backing the bit buffer.
func SizeBytes(capacity uint32) uint64 {
	return (uint64(capacity) + 63) / 64 * 8
}
