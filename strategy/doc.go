// Package strategy provides built-in range partitioning strategies.
//
// A partitioning strategy splits the residual range that remains after the
// bootstrap prefix into one sub-range per worker rank. Every worker evaluates
// the strategy locally with the same inputs, so no assignment has to be
// broadcast.
//
//   - Contiguous: equal-width, gap-free ranges in rank order (default)
//
// Custom strategies can be implemented by satisfying the
// types.PartitionStrategy interface. Implementations must be deterministic
// and must cover [left, bound) exactly once across all ranks.
package strategy
