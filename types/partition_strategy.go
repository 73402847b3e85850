package types

// PartitionStrategy splits the post-bootstrap domain across a worker group.
//
// Strategies implement different splitting algorithms:
//   - Contiguous: floor-divided contiguous ranges, one per rank
//   - Custom: User-defined algorithms
//
// Strategy implementations should:
//   - Be deterministic (every worker computes the same answer independently)
//   - Cover [left, bound) exactly once with no gap or overlap
//   - Be stateless (no side effects)
type PartitionStrategy interface {
	// Partition returns the range owned by group.Rank.
	//
	// Parameters:
	//   - group: Rank and size of the calling worker
	//   - left: Shared left edge (first value after the bootstrap prefix)
	//   - bound: Exclusive safe upper bound
	//
	// Returns:
	//   - Partition: The caller's half-open range
	//   - error: ErrInvalidRange or ErrInvalidGroup on bad input
	Partition(group Group, left, bound uint32) (Partition, error)

	// PartitionAll returns the ranges of every rank in ascending rank order.
	PartitionAll(size int, left, bound uint32) ([]Partition, error)
}
