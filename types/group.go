package types

import "fmt"

// Group identifies one worker inside a fixed-size worker group.
//
// The group is established before a sieve run starts and never changes
// during it. Size 1 is the single-worker degenerate case.
type Group struct {
	// Rank is this worker's index, 0..Size-1.
	Rank int `json:"rank" yaml:"rank"`

	// Size is the number of workers in the group (>= 1).
	Size int `json:"size" yaml:"size"`
}

// SingleWorker returns the group of one.
func SingleWorker() Group {
	return Group{Rank: 0, Size: 1}
}

// Validate checks that Size is positive and Rank lies inside the group.
//
// Returns:
//   - error: ErrInvalidGroup wrapped with details, nil if valid
func (g Group) Validate() error {
	if g.Size < 1 {
		return fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidGroup, g.Size)
	}
	if g.Rank < 0 || g.Rank >= g.Size {
		return fmt.Errorf("%w: rank %d outside [0, %d)", ErrInvalidGroup, g.Rank, g.Size)
	}

	return nil
}

// IsLast reports whether this worker holds the highest rank.
func (g Group) IsLast() bool {
	return g.Rank == g.Size-1
}
