package source

import (
	"context"
	"sync"

	"github.com/arloliu/segsieve/types"
)

// Static implements a cache source with a fixed budget.
type Static struct {
	mu     sync.RWMutex
	budget types.CacheBudget
}

var _ types.CacheSource = (*Static)(nil)

// NewStatic creates a new static cache source.
//
// Useful for testing and for reproducing a run from another machine, since
// the window size depends only on the budget.
//
// Parameters:
//   - budget: Fixed cache description
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic(types.CacheBudget{SizeBytes: 32 * 1024, Level: 1})
//	s, err := segsieve.New(cfg, src, types.SingleWorker())
func NewStatic(budget types.CacheBudget) *Static {
	return &Static{budget: budget}
}

// NewStaticBytes creates a static level 1 source of sizeBytes.
func NewStaticBytes(sizeBytes int) *Static {
	return NewStatic(types.CacheBudget{SizeBytes: sizeBytes, Level: 1})
}

// Cache returns the fixed budget.
//
// Returns:
//   - types.CacheBudget: The configured budget
//   - error: ctx.Err() when the context is already done
func (s *Static) Cache(ctx context.Context) (types.CacheBudget, error) {
	if err := ctx.Err(); err != nil {
		return types.CacheBudget{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.budget, nil
}

// Update replaces the budget returned by later Cache calls.
func (s *Static) Update(budget types.CacheBudget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budget = budget
}
