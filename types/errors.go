package types

import "errors"

// Sentinel errors for the segsieve library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// The taxonomy separates caller mistakes (validation) from environment
// failures (resource) and corrupted merges (integrity); none of them is
// retried inside the library.

// Validation errors - rejected before any sieving starts.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRange is returned when the right limit is outside [2, 1e9]
	// or a partition would end before it starts.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidGroup is returned when the worker group rank or size is invalid.
	ErrInvalidGroup = errors.New("invalid worker group")

	// ErrInvalidCacheLevel is returned when a cache level cannot be described.
	ErrInvalidCacheLevel = errors.New("invalid cache level")

	// ErrTransportRequired is returned when a multi-worker group has no transport.
	ErrTransportRequired = errors.New("transport is required for worker groups larger than one")

	// ErrCacheSourceRequired is returned when no cache source was provided.
	ErrCacheSourceRequired = errors.New("cache source is required")
)

// Resource errors - environment could not provide what the sieve needs.
var (
	// ErrResourceExhausted is returned when the marking window or prime list
	// would exceed the configured memory ceilings.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Integrity errors - the merge protocol was violated.
var (
	// ErrTransferIntegrity is returned when a worker's reported prime count
	// does not match what the collector received, or a block is malformed.
	ErrTransferIntegrity = errors.New("transfer integrity violated")
)

// Transport errors - shared by transport implementations.
var (
	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnknownPeer is returned when a rank outside the group is addressed.
	ErrUnknownPeer = errors.New("unknown peer rank")
)
