package segsieve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/segsieve/internal/engine"
	"github.com/arloliu/segsieve/internal/hooks"
	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/internal/merge"
	"github.com/arloliu/segsieve/internal/metrics"
	"github.com/arloliu/segsieve/internal/window"
	"github.com/arloliu/segsieve/strategy"
)

// sieveChunkWindows is how many windows the local pass sieves between
// context checks.
const sieveChunkWindows = 256

// purger is implemented by transports that keep merge messages after
// delivery (transport.NATS).
type purger interface {
	Purge(ctx context.Context) error
}

// Sieve is one worker of a segmented sieve run.
//
// Sieve is the main entry point of the segsieve library. Each Run:
//   - sizes the marking window from the cache budget
//   - runs the bootstrap pass over the shared prefix (every worker, redundantly)
//   - derives this rank's sub-range from the partition strategy
//   - sieves the sub-range with the bootstrap primes
//   - merges all partial results on the collector rank
//
// Thread Safety:
//   - Phase() is safe for concurrent use
//   - Concurrent Run calls are serialized
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type PrimeSource interface {
//	    Run(ctx context.Context, limit uint32) (*segsieve.Result, error)
//	}
type Sieve struct {
	cfg    Config
	source CacheSource
	group  Group

	transport Transport
	strategy  PartitionStrategy
	hooks     *Hooks
	metrics   MetricsCollector
	logger    Logger

	phase        atomic.Int32 // Phase
	phaseStarted time.Time
	mu           sync.Mutex
}

// New creates a worker for the given rank of a worker group.
//
// Returns a concrete *Sieve following the "accept interfaces, return structs"
// principle.
//
// Parameters:
//   - cfg: Configuration (missing values are filled with defaults in place)
//   - source: Cache source used to size the marking window
//   - group: This worker's rank and the group size
//   - opts: Optional transport, strategy, hooks, metrics and logger
//
// Returns:
//   - *Sieve: Initialized worker in PhaseInit
//   - error: ErrInvalidConfig, ErrCacheSourceRequired, ErrInvalidGroup or
//     ErrTransportRequired
//
// Example:
//
//	cfg := segsieve.DefaultConfig()
//	s, err := segsieve.New(&cfg, source.NewStaticBytes(32*1024), segsieve.SingleWorker())
//	if err != nil { /* handle */ }
//	res, err := s.Run(ctx, 1_000_000)
func New(cfg *Config, source CacheSource, group Group, opts ...Option) (*Sieve, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if source == nil {
		return nil, ErrCacheSourceRequired
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CollectorRank >= group.Size {
		return nil, fmt.Errorf("%w: CollectorRank %d outside group of %d", ErrInvalidConfig, cfg.CollectorRank, group.Size)
	}

	options := &sieveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if group.Size > 1 && options.transport == nil {
		return nil, ErrTransportRequired
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	var partitioner PartitionStrategy = strategy.NewContiguous()
	if options.strategy != nil {
		partitioner = options.strategy
	}

	s := &Sieve{
		cfg:       *cfg,
		source:    source,
		group:     group,
		transport: options.transport,
		strategy:  partitioner,
		hooks:     hooks.Fill(options.hooks),
		metrics:   metricsCollector,
		logger:    loggerInstance,
	}
	s.phase.Store(int32(PhaseInit))

	return s, nil
}

// Phase returns the current phase of the worker.
func (s *Sieve) Phase() Phase {
	return Phase(s.phase.Load())
}

// Group returns the worker's rank and group size.
func (s *Sieve) Group() Group {
	return s.group
}

// IsCollector reports whether this worker merges the partial results.
func (s *Sieve) IsCollector() bool {
	return s.group.Rank == s.cfg.CollectorRank
}

// Run computes every prime <= limit together with the rest of the group.
//
// Every worker of the group must call Run with the same limit, the same
// configuration and a cache source reporting the same budget. Run blocks
// until the merge completes. On the collector the result holds the merged
// list; on other ranks it holds only local statistics.
//
// A failed run returns a nil result.
//
// Parameters:
//   - ctx: Context for cancellation; also bounds every transport operation
//   - limit: Inclusive right bound, in [MinLimit, MaxLimit]
//
// Returns:
//   - *Result: Run result
//   - error: ErrInvalidRange, ErrResourceExhausted, ErrTransferIntegrity,
//     a transport error or ctx.Err()
func (s *Sieve) Run(ctx context.Context, limit uint32) (*Result, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit %d outside [%d, %d]", ErrInvalidRange, limit, MinLimit, MaxLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	s.phase.Store(int32(PhaseInit))
	s.phaseStarted = started

	res, err := s.run(ctx, limit)
	elapsed := time.Since(started)
	s.metrics.RecordRunResult(err == nil, elapsed.Seconds())

	if err != nil {
		s.transition(ctx, PhaseFailed)
		s.logger.Error("sieve run failed", "rank", s.group.Rank, "limit", limit, "error", err)
		if hookErr := s.hooks.OnError(ctx, err); hookErr != nil {
			s.logger.Error("error hook failed", "error", hookErr)
		}

		return nil, err
	}

	res.Elapsed = elapsed
	s.transition(ctx, PhaseDone)
	s.logger.Info("sieve run complete",
		"rank", s.group.Rank,
		"limit", limit,
		"primes", len(res.Primes),
		"localPrimes", res.LocalPrimes,
		"elapsed", elapsed,
	)

	return res, nil
}

func (s *Sieve) run(ctx context.Context, limit uint32) (*Result, error) {
	budget, err := s.source.Cache(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache budget: %w", err)
	}
	if budget.SizeBytes <= 0 {
		return nil, fmt.Errorf("%w: cache size must be > 0, got %d", ErrInvalidConfig, budget.SizeBytes)
	}

	windowSize := WindowSize(budget, s.cfg.WindowFactor, limit)
	if bytes := window.SizeBytes(windowSize); bytes > s.cfg.MaxWindowBytes {
		return nil, fmt.Errorf("%w: window of %d candidates needs %d bytes, limit %d",
			ErrResourceExhausted, windowSize, bytes, s.cfg.MaxWindowBytes)
	}

	reserve := s.reserveFor(limit, windowSize)
	if bytes := uint64(reserve) * 4; bytes > s.cfg.MaxPrimeListBytes {
		return nil, fmt.Errorf("%w: prime list of ~%d entries needs %d bytes, limit %d",
			ErrResourceExhausted, reserve, bytes, s.cfg.MaxPrimeListBytes)
	}

	s.metrics.RecordWindowSize(int(windowSize))
	s.logger.Debug("window sized", "cache", budget.String(), "window", windowSize, "reserve", reserve)

	// Bootstrap.
	s.transition(ctx, PhaseBootstrap)
	eng := engine.New(windowSize, reserve, s.logger)
	prefixEnd := eng.Bootstrap(limit)
	prefixLen := eng.Len()
	bootstrapWindows := eng.WindowsSieved()
	s.metrics.RecordWindowsSieved(engine.PassBootstrap, bootstrapWindows)
	s.metrics.RecordPrimesDiscovered(engine.PassBootstrap, prefixLen)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Partition.
	bound := strategy.SafeBound(eng.MaxPrime(), limit, prefixEnd)
	if end := engine.SatAdd(limit, 1); bound < end {
		return nil, fmt.Errorf("%w: bootstrap primes reach only %d, need %d", ErrInvalidRange, bound, end)
	}
	part, err := s.strategy.Partition(s.group, prefixEnd, bound)
	if err != nil {
		return nil, fmt.Errorf("failed to partition [%d, %d): %w", prefixEnd, bound, err)
	}
	s.transition(ctx, PhasePartitioned)
	s.logger.Debug("partition assigned", "rank", s.group.Rank, "partition", part.String(), "prefixPrimes", prefixLen)
	if err := s.hooks.OnPartitionAssigned(ctx, part); err != nil {
		s.logger.Error("partition hook failed", "error", err)
	}

	// Local sieve.
	s.transition(ctx, PhaseSieving)
	if err := s.sievePartition(ctx, eng, part); err != nil {
		return nil, err
	}
	local := eng.Primes()[prefixLen:]
	s.metrics.RecordWindowsSieved(engine.PassLocal, eng.WindowsSieved()-bootstrapWindows)
	s.metrics.RecordPrimesDiscovered(engine.PassLocal, len(local))

	res := &Result{
		Limit:           limit,
		Group:           s.group,
		Collector:       s.IsCollector(),
		Cache:           budget,
		WindowSize:      windowSize,
		PrefixEnd:       prefixEnd,
		BootstrapPrimes: prefixLen,
		Partition:       part,
		LocalPrimes:     len(local),
		Windows:         eng.WindowsSieved(),
	}

	// Merge.
	s.transition(ctx, PhaseMerging)
	primes, err := s.merge(ctx, eng.Primes(), prefixLen, budget)
	if err != nil {
		return nil, err
	}
	if res.Collector {
		res.Primes = primes
		res.Digest = Digest(primes)
	}

	return res, nil
}

// sievePartition resolves part in chunks so cancellation is noticed
// during long local passes.
func (s *Sieve) sievePartition(ctx context.Context, eng *engine.Engine, part Partition) error {
	chunk := eng.WindowSize() * sieveChunkWindows
	for lo := part.Lo; lo < part.Hi; {
		hi := min(engine.SatAdd(lo, chunk), part.Hi)
		eng.FindPrimesBetween(lo, hi)
		lo = hi

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

// merge delivers the local suffix to the collector, or on the collector
// gathers every rank's suffix in rank order behind the shared prefix.
func (s *Sieve) merge(ctx context.Context, own []uint32, prefixLen int, budget CacheBudget) ([]uint32, error) {
	if s.group.Size == 1 {
		return own, nil
	}

	busWidth := merge.BusWidth(budget.SizeBytes, s.cfg.TransferDivisor)
	mergeOpts := []merge.Option{merge.WithLogger(s.logger), merge.WithMetrics(s.metrics)}

	if !s.IsCollector() {
		reporter, err := merge.NewReporter(s.transport, busWidth, mergeOpts...)
		if err != nil {
			return nil, err
		}
		if err := reporter.Report(ctx, s.cfg.CollectorRank, own[prefixLen:]); err != nil {
			return nil, fmt.Errorf("failed to report to collector: %w", err)
		}

		return nil, nil
	}

	collector, err := merge.NewCollector(s.transport, busWidth, mergeOpts...)
	if err != nil {
		return nil, err
	}

	// On rank 0 the local suffix already follows the prefix, so appending it
	// in place copies nothing.
	dst, local := own[:prefixLen], own[prefixLen:]
	if s.group.Rank != 0 {
		dst = make([]uint32, 0, cap(own))
		dst = append(dst, own[:prefixLen]...)
	}

	merged, err := collector.Collect(ctx, s.group, local, dst)
	if err != nil {
		return nil, fmt.Errorf("failed to merge results: %w", err)
	}

	if p, ok := s.transport.(purger); ok {
		if err := p.Purge(ctx); err != nil {
			s.logger.Warn("failed to purge merge messages", "error", err)
		}
	}

	return merged, nil
}

// reserveFor returns the prime list capacity to reserve up front. The
// collector reserves for the whole range; other ranks for their share.
func (s *Sieve) reserveFor(limit, windowSize uint32) int {
	total := engine.EstimatePrimeCount(limit)
	if s.group.Size == 1 || s.IsCollector() {
		return total
	}

	// The prefix ends within one window past sqrt(limit) < 1<<16.
	prefix := engine.EstimatePrimeCount(min(limit, engine.SatAdd(windowSize, 1<<16)))

	return total/s.group.Size + prefix
}

// transition moves to a new phase, records its metric and calls the hook.
func (s *Sieve) transition(ctx context.Context, to Phase) {
	from := s.Phase()
	now := time.Now()
	duration := now.Sub(s.phaseStarted).Seconds()
	s.phaseStarted = now
	s.phase.Store(int32(to)) //nolint:gosec // Phase values are a controlled enum

	s.logger.Debug("phase transition", "rank", s.group.Rank, "from", from.String(), "to", to.String())
	s.metrics.RecordPhaseTransition(from, to, duration)

	if err := s.hooks.OnPhaseChanged(ctx, from, to); err != nil {
		s.logger.Error("phase change hook failed", "from", from, "to", to, "error", err)
	}
}

// WindowSize returns the marking window size in candidates:
// min(limit+1, budget.SizeBytes * factor).
func WindowSize(budget CacheBudget, factor int, limit uint32) uint32 {
	size := uint64(max(budget.SizeBytes, 1)) * uint64(max(factor, 1))
	end := uint64(limit) + 1

	return uint32(min(size, end))
}
