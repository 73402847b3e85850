package types

import "fmt"

// Partition represents the half-open numeric range [Lo, Hi) owned by one worker.
//
// Partitions are the unit of work assignment. Adjacent ranks share a
// boundary value: the Hi of rank r is the Lo of rank r+1.
type Partition struct {
	// Rank is the worker that owns this range.
	Rank int `json:"rank"`

	// Lo is the first candidate (inclusive).
	Lo uint32 `json:"lo"`

	// Hi is one past the last candidate (exclusive).
	Hi uint32 `json:"hi"`
}

// Len returns the number of candidates in the range.
func (p Partition) Len() uint32 {
	if p.Hi <= p.Lo {
		return 0
	}

	return p.Hi - p.Lo
}

// Empty reports whether the range holds no candidates.
func (p Partition) Empty() bool {
	return p.Hi <= p.Lo
}

// Contains reports whether n lies inside [Lo, Hi).
func (p Partition) Contains(n uint32) bool {
	return n >= p.Lo && n < p.Hi
}

// String returns the canonical "[lo, hi)" form.
func (p Partition) String() string {
	return fmt.Sprintf("[%d, %d)", p.Lo, p.Hi)
}

// Compare orders partitions by Lo, then by Hi.
//
// Returns:
//   - int: -1 if p < q, 0 if equal, +1 if p > q
func (p Partition) Compare(q Partition) int {
	switch {
	case p.Lo < q.Lo:
		return -1
	case p.Lo > q.Lo:
		return 1
	case p.Hi < q.Hi:
		return -1
	case p.Hi > q.Hi:
		return 1
	default:
		return 0
	}
}
