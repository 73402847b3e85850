package metrics

import (
	"sync"

	"github.com/arloliu/segsieve/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so building a
// PrometheusCollector that is never exercised leaves the registerer untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	phaseTransitions *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram

	windowSize    prometheus.Gauge
	windowsSieved *prometheus.CounterVec
	primesFound   *prometheus.CounterVec
	blocks        *prometheus.CounterVec
	blockElements *prometheus.CounterVec
	mergeDuration prometheus.Histogram
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "segsieve" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewPrometheus(reg, "")
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "segsieve"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.phaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "phase_transitions_total",
			Help:      "Total worker phase transitions by source and target phase.",
		}, []string{"from", "to"})

		p.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in a phase before leaving it.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
		}, []string{"phase"})

		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "runs_total",
			Help:      "Total sieve runs by outcome (success,failure).",
		}, []string{"result"})

		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one sieve run in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 3, 10), // 1ms .. ~20s
		})

		p.windowSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "sieve",
			Name:      "window_candidates",
			Help:      "Marking window size in candidates.",
		})

		p.windowsSieved = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "sieve",
			Name:      "windows_total",
			Help:      "Total marking windows resolved by pass (bootstrap,local).",
		}, []string{"pass"})

		p.primesFound = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "sieve",
			Name:      "primes_discovered_total",
			Help:      "Total primes appended by pass (bootstrap,local).",
		}, []string{"pass"})

		p.blocks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "merge",
			Name:      "blocks_total",
			Help:      "Total result blocks by direction (sent,received).",
		}, []string{"direction"})

		p.blockElements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "merge",
			Name:      "block_elements_total",
			Help:      "Total primes moved in result blocks by direction.",
		}, []string{"direction"})

		p.mergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "merge",
			Name:      "duration_seconds",
			Help:      "Time the collector spent gathering partial results.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		})

		p.reg.MustRegister(p.phaseTransitions)
		p.reg.MustRegister(p.phaseDuration)
		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.runDuration)
		p.reg.MustRegister(p.windowSize)
		p.reg.MustRegister(p.windowsSieved)
		p.reg.MustRegister(p.primesFound)
		p.reg.MustRegister(p.blocks)
		p.reg.MustRegister(p.blockElements)
		p.reg.MustRegister(p.mergeDuration)
	})
}

// WorkerMetrics implementation

// RecordPhaseTransition counts the transition and observes time spent in from.
func (p *PrometheusCollector) RecordPhaseTransition(from, to types.Phase, duration float64) {
	p.ensureRegistered()
	p.phaseTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.phaseDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordRunResult counts the run outcome and observes its duration.
func (p *PrometheusCollector) RecordRunResult(success bool, duration float64) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.runs.WithLabelValues(result).Inc()
	p.runDuration.Observe(duration)
}

// SieveMetrics implementation

// RecordWindowSize sets the window size gauge.
func (p *PrometheusCollector) RecordWindowSize(candidates int) {
	p.ensureRegistered()
	p.windowSize.Set(float64(candidates))
}

// RecordWindowsSieved adds count to the window counter of the pass.
func (p *PrometheusCollector) RecordWindowsSieved(pass string, count int) {
	p.ensureRegistered()
	p.windowsSieved.WithLabelValues(pass).Add(float64(count))
}

// RecordPrimesDiscovered adds count to the prime counter of the pass.
func (p *PrometheusCollector) RecordPrimesDiscovered(pass string, count int) {
	p.ensureRegistered()
	p.primesFound.WithLabelValues(pass).Add(float64(count))
}

// MergeMetrics implementation

// RecordBlockTransferred counts one block and its elements.
func (p *PrometheusCollector) RecordBlockTransferred(direction string, elements int) {
	p.ensureRegistered()
	p.blocks.WithLabelValues(direction).Inc()
	p.blockElements.WithLabelValues(direction).Add(float64(elements))
}

// RecordMergeDuration observes the collector merge time.
func (p *PrometheusCollector) RecordMergeDuration(duration float64) {
	p.ensureRegistered()
	p.mergeDuration.Observe(duration)
}
