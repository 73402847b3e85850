package segsieve

import "github.com/arloliu/segsieve/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package, which
// avoids import cycles while still giving users segsieve.Partition,
// segsieve.Logger and friends.
type (
	Phase       = types.Phase
	Partition   = types.Partition
	Group       = types.Group
	CacheBudget = types.CacheBudget
	CacheKind   = types.CacheKind
)

// Re-export interfaces from the types package for convenience.
type (
	CacheSource       = types.CacheSource
	PartitionStrategy = types.PartitionStrategy
	Transport         = types.Transport
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export Phase constants from the types package.
const (
	PhaseInit        = types.PhaseInit
	PhaseBootstrap   = types.PhaseBootstrap
	PhasePartitioned = types.PhasePartitioned
	PhaseSieving     = types.PhaseSieving
	PhaseMerging     = types.PhaseMerging
	PhaseDone        = types.PhaseDone
	PhaseFailed      = types.PhaseFailed
)

// Re-export CacheKind constants from the types package.
const (
	DataCache        = types.DataCache
	InstructionCache = types.InstructionCache
)

// SingleWorker returns the group of one.
func SingleWorker() Group {
	return types.SingleWorker()
}
