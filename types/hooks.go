package types

import "context"

// Hooks defines callbacks for sieve lifecycle events.
//
// All hooks are optional and are called synchronously on the worker that
// triggered them. A hook error is logged but does not fail the run.
//
// Example:
//
//	hooks := &segsieve.Hooks{
//	    OnPartitionAssigned: func(ctx context.Context, p segsieve.Partition) error {
//	        log.Printf("rank %d sieves %s", p.Rank, p)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnPhaseChanged is called when the worker moves between phases.
	OnPhaseChanged func(ctx context.Context, from, to Phase) error

	// OnPartitionAssigned is called once the worker knows its sub-range.
	OnPartitionAssigned func(ctx context.Context, partition Partition) error

	// OnError is called when the run fails.
	OnError func(ctx context.Context, err error) error
}
