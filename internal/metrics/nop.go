// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/segsieve/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	s, err := segsieve.New(cfg, src, group, segsieve.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// WorkerMetrics implementation

// RecordPhaseTransition discards the phase transition metric.
func (n *NopMetrics) RecordPhaseTransition(_ /* from */, _ /* to */ types.Phase, _ /* duration */ float64) {
	// No-op
}

// RecordRunResult discards the run outcome metric.
func (n *NopMetrics) RecordRunResult(_ /* success */ bool, _ /* duration */ float64) {
	// No-op
}

// SieveMetrics implementation

// RecordWindowSize discards the window size metric.
func (n *NopMetrics) RecordWindowSize(_ /* candidates */ int) {
	// No-op
}

// RecordWindowsSieved discards the window counter.
func (n *NopMetrics) RecordWindowsSieved(_ /* pass */ string, _ /* count */ int) {
	// No-op
}

// RecordPrimesDiscovered discards the prime counter.
func (n *NopMetrics) RecordPrimesDiscovered(_ /* pass */ string, _ /* count */ int) {
	// No-op
}

// MergeMetrics implementation

// RecordBlockTransferred discards the block transfer metric.
func (n *NopMetrics) RecordBlockTransferred(_ /* direction */ string, _ /* elements */ int) {
	// No-op
}

// RecordMergeDuration discards the merge duration metric.
func (n *NopMetrics) RecordMergeDuration(_ /* duration */ float64) {
	// No-op
}
