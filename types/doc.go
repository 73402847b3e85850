// Package types provides core type definitions and interfaces for the segsieve library.
//
// This package contains shared types that are used across multiple packages in the
// segsieve library. By keeping these types in a separate package, we avoid import cycles
// between the main segsieve package and its internal implementations.
//
// Key types:
//   - Phase: Worker sieve lifecycle phase
//   - CacheBudget: Data-cache geometry used to size marking windows
//   - Group: Rank and size of the cooperating worker group
//   - Partition: Half-open numeric range owned by one worker
//   - Transport: Point-to-point count/block transfer between workers
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
