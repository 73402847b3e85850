package types

import "context"

// CacheSource supplies the cache budget used to size marking windows.
//
// Implementations can query various backends:
//   - CPUID: the running processor's cache descriptors
//   - Static: fixed budget for testing
//   - Custom: any discovery logic
//
// The sieve calls Cache once per run, before any window is allocated.
type CacheSource interface {
	// Cache returns the budget to use.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - CacheBudget: The cache descriptor
	//   - error: Discovery error (nil on success)
	Cache(ctx context.Context) (CacheBudget, error)
}
