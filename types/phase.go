package types

// Phase represents where a worker is in one sieve run.
//
// Phases follow a fixed progression:
//
//	PhaseInit → PhaseBootstrap → PhasePartitioned → PhaseSieving → PhaseMerging → PhaseDone
//
// Any phase can move to PhaseFailed, which is terminal.
type Phase int

const (
	// PhaseInit is the initial phase before any work.
	PhaseInit Phase = iota

	// PhaseBootstrap indicates the redundant first-window pass is running.
	PhaseBootstrap

	// PhasePartitioned indicates the worker knows its sub-range.
	PhasePartitioned

	// PhaseSieving indicates the local segmented sieve is running.
	PhaseSieving

	// PhaseMerging indicates the worker is reporting to, or acting as, the collector.
	PhaseMerging

	// PhaseDone indicates the run completed successfully.
	PhaseDone

	// PhaseFailed indicates the run stopped with an error.
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseBootstrap:
		return "Bootstrap"
	case PhasePartitioned:
		return "Partitioned"
	case PhaseSieving:
		return "Sieving"
	case PhaseMerging:
		return "Merging"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
