package strategy

import (
	"fmt"

	"github.com/arloliu/segsieve/internal/engine"
	"github.com/arloliu/segsieve/types"
)

// Contiguous splits a range into equal-width adjacent sub-ranges in rank order.
//
// For a group of size s over [L, B):
//
//	lo(r) = L + floor(r*(B-L)/s)
//	hi(r) = lo(r+1), and B for the last rank
//
// Arithmetic is done in uint64 so r*(B-L) cannot overflow. Ranks may receive
// empty ranges when B-L < s.
type Contiguous struct{}

var _ types.PartitionStrategy = (*Contiguous)(nil)

// NewContiguous creates the contiguous partitioning strategy.
//
// Example:
//
//	s, err := segsieve.New(cfg, src, group, segsieve.WithStrategy(strategy.NewContiguous()))
func NewContiguous() *Contiguous {
	return &Contiguous{}
}

// Partition returns the sub-range owned by group.Rank.
//
// Parameters:
//   - group: Rank and size of the calling worker
//   - left: First candidate of the residual range (inclusive)
//   - bound: End of the residual range (exclusive)
//
// Returns:
//   - types.Partition: The rank's [Lo, Hi)
//   - error: types.ErrInvalidRange for an invalid group or bound < left
func (c *Contiguous) Partition(group types.Group, left, bound uint32) (types.Partition, error) {
	if err := group.Validate(); err != nil {
		return types.Partition{}, fmt.Errorf("%w: %w", types.ErrInvalidRange, err)
	}
	if bound < left {
		return types.Partition{}, fmt.Errorf("%w: [%d, %d)", ErrBoundBeforeLeft, left, bound)
	}

	return types.Partition{
		Rank: group.Rank,
		Lo:   edge(group.Rank, group.Size, left, bound),
		Hi:   edge(group.Rank+1, group.Size, left, bound),
	}, nil
}

// PartitionAll returns the sub-ranges of every rank, indexed by rank.
//
// Parameters:
//   - size: Number of workers (>= 1)
//   - left: First candidate of the residual range (inclusive)
//   - bound: End of the residual range (exclusive)
//
// Returns:
//   - []types.Partition: size partitions, adjacent and in rank order
//   - error: types.ErrInvalidRange for size < 1 or bound < left
func (c *Contiguous) PartitionAll(size int, left, bound uint32) ([]types.Partition, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size must be >= 1, got %d", types.ErrInvalidRange, size)
	}

	parts := make([]types.Partition, size)
	for r := range size {
		p, err := c.Partition(types.Group{Rank: r, Size: size}, left, bound)
		if err != nil {
			return nil, err
		}
		parts[r] = p
	}

	return parts, nil
}

// edge returns lo(r); edge(size) is bound.
func edge(r, size int, left, bound uint32) uint32 {
	if r >= size {
		return bound
	}
	span := uint64(bound - left)

	return left + uint32(uint64(r)*span/uint64(size))
}

// SafeBound returns the exclusive end of the range that can be sieved with
// primes up to maxPrime, for a run whose inclusive limit is limit.
//
// The result is min(maxPrime², limit+1), never smaller than left. A prime
// list that reaches sqrt(limit) therefore yields limit+1, so the limit
// itself is covered.
func SafeBound(maxPrime, limit, left uint32) uint32 {
	bound := min(engine.SatSquare(maxPrime), engine.SatAdd(limit, 1))

	return max(bound, left)
}
