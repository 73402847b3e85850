package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Workers of an in-process group share one collector, so all methods must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	WorkerMetrics
	SieveMetrics
	MergeMetrics
}

// WorkerMetrics defines metrics for worker-level lifecycle events.
type WorkerMetrics interface {
	// RecordPhaseTransition records a phase change and the time spent in the previous phase.
	//
	// Parameters:
	//   - from: Phase being left
	//   - to: Phase being entered
	//   - duration: Seconds spent in `from`
	RecordPhaseTransition(from, to Phase, duration float64)

	// RecordRunResult records the outcome of one sieve run.
	RecordRunResult(success bool, duration float64)
}

// SieveMetrics defines metrics for the segmented sieve core.
type SieveMetrics interface {
	// RecordWindowSize sets the marking window size in candidates (gauge metric).
	RecordWindowSize(candidates int)

	// RecordWindowsSieved records how many windows a pass resolved.
	//
	// Parameters:
	//   - pass: "bootstrap" or "local"
	//   - count: Number of windows
	RecordWindowsSieved(pass string, count int)

	// RecordPrimesDiscovered records how many primes a pass appended.
	RecordPrimesDiscovered(pass string, count int)
}

// MergeMetrics defines metrics for the result merge protocol.
type MergeMetrics interface {
	// RecordBlockTransferred records one block moved between workers.
	//
	// Parameters:
	//   - direction: "sent" or "received"
	//   - elements: Number of primes in the block
	RecordBlockTransferred(direction string, elements int)

	// RecordMergeDuration records the time the collector spent gathering reports.
	RecordMergeDuration(duration float64)
}
