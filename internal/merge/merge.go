package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/internal/metrics"
	"github.com/arloliu/segsieve/types"
)

// Directions used for block metrics.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// DefaultTransferDivisor scales the cache size down to the bus width so a
// block and its bookkeeping fit the cache together.
const DefaultTransferDivisor = 1.2

// elementBytes is the size of one transferred prime.
const elementBytes = 4

// BusWidth returns the maximum number of elements per block:
// max(1, floor(cacheBytes / (divisor * 4))).
//
// A non-positive divisor falls back to DefaultTransferDivisor.
func BusWidth(cacheBytes int, divisor float64) int {
	if divisor <= 0 {
		divisor = DefaultTransferDivisor
	}
	w := int(float64(cacheBytes) / (divisor * elementBytes))

	return max(w, 1)
}

// Option configures a Reporter or Collector.
type Option func(*options)

type options struct {
	logger  types.Logger
	metrics types.MetricsCollector
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NewNop(), metrics: metrics.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Reporter sends one worker's partial result to the collector.
type Reporter struct {
	transport types.Transport
	busWidth  int
	logger    types.Logger
	metrics   types.MetricsCollector
}

// NewReporter creates a reporter that sends blocks of at most busWidth elements.
//
// Parameters:
//   - transport: Point-to-point channel to the collector
//   - busWidth: Maximum block size in elements (values < 1 are raised to 1)
//   - opts: Optional logger and metrics
//
// Returns:
//   - *Reporter: Initialized reporter
//   - error: types.ErrTransportRequired if transport is nil
func NewReporter(transport types.Transport, busWidth int, opts ...Option) (*Reporter, error) {
	if transport == nil {
		return nil, types.ErrTransportRequired
	}
	o := buildOptions(opts)

	return &Reporter{
		transport: transport,
		busWidth:  max(busWidth, 1),
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

// Report sends the count of suffix followed by its elements in blocks.
//
// An empty suffix sends only the count.
func (r *Reporter) Report(ctx context.Context, to int, suffix []uint32) error {
	if err := r.transport.SendCount(ctx, to, uint64(len(suffix))); err != nil {
		return fmt.Errorf("send count to rank %d: %w", to, err)
	}

	blocks := 0
	for start := 0; start < len(suffix); start += r.busWidth {
		end := min(start+r.busWidth, len(suffix))
		if err := r.transport.SendBlock(ctx, to, suffix[start:end]); err != nil {
			return fmt.Errorf("send block %d to rank %d: %w", blocks, to, err)
		}
		r.metrics.RecordBlockTransferred(DirectionSent, end-start)
		blocks++
	}

	r.logger.Debug("reported partial result", "to", to, "count", len(suffix), "blocks", blocks)

	return nil
}

// Collector receives partial results and appends them to the global list.
//
// Collector owns one buffer of busWidth elements that is reused for every
// block of every reporter. It is not safe for concurrent use.
type Collector struct {
	transport types.Transport
	arena     []uint32
	logger    types.Logger
	metrics   types.MetricsCollector
}

// NewCollector creates a collector whose receive buffer holds busWidth elements.
//
// Parameters:
//   - transport: Point-to-point channel from the reporters
//   - busWidth: Receive buffer size in elements (values < 1 are raised to 1)
//   - opts: Optional logger and metrics
//
// Returns:
//   - *Collector: Initialized collector
//   - error: types.ErrTransportRequired if transport is nil
func NewCollector(transport types.Transport, busWidth int, opts ...Option) (*Collector, error) {
	if transport == nil {
		return nil, types.ErrTransportRequired
	}
	o := buildOptions(opts)

	return &Collector{
		transport: transport,
		arena:     make([]uint32, max(busWidth, 1)),
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

// Collect gathers the whole group into dst in rank order. The collector's
// own elements, local, are appended at its rank; every other rank is
// drained with CollectFrom.
//
// Parameters:
//   - ctx: Context for the receives
//   - group: Collector's rank and the group size
//   - local: Collector's own elements
//   - dst: Destination, usually holding the sieving prefix
//
// Returns:
//   - []uint32: dst with every rank's elements appended
//   - error: types.ErrTransferIntegrity or a transport error
func (c *Collector) Collect(ctx context.Context, group types.Group, local, dst []uint32) ([]uint32, error) {
	started := time.Now()
	for rank := range group.Size {
		if rank == group.Rank {
			dst = append(dst, local...)
			continue
		}

		var err error
		if dst, err = c.CollectFrom(ctx, rank, dst); err != nil {
			return nil, err
		}
	}
	c.metrics.RecordMergeDuration(time.Since(started).Seconds())

	return dst, nil
}

// CollectFrom receives one reporter's count and blocks and appends them to dst.
//
// The first received element must exceed the last element of dst and every
// block must be strictly increasing. Exactly the announced number of
// elements must arrive.
//
// Returns:
//   - []uint32: dst with the reporter's elements appended
//   - error: types.ErrTransferIntegrity or a transport error
func (c *Collector) CollectFrom(ctx context.Context, from int, dst []uint32) ([]uint32, error) {
	count, err := c.transport.RecvCount(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("receive count from rank %d: %w", from, err)
	}

	remaining := count
	blocks := 0
	for remaining > 0 {
		want := min(uint64(len(c.arena)), remaining)
		n, err := c.transport.RecvBlock(ctx, from, c.arena[:want])
		if err != nil {
			return nil, fmt.Errorf("receive block %d from rank %d: %w", blocks, from, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: empty block %d from rank %d", types.ErrTransferIntegrity, blocks, from)
		}
		if uint64(n) > want {
			return nil, fmt.Errorf("%w: block %d from rank %d has %d elements, expected at most %d",
				types.ErrTransferIntegrity, blocks, from, n, want)
		}

		block := c.arena[:n]
		if err := checkOrder(dst, block); err != nil {
			return nil, fmt.Errorf("%w: block %d from rank %d: %w", types.ErrTransferIntegrity, blocks, from, err)
		}

		dst = append(dst, block...)
		remaining -= uint64(n)
		c.metrics.RecordBlockTransferred(DirectionReceived, n)
		blocks++
	}

	c.logger.Debug("collected partial result", "from", from, "count", count, "blocks", blocks)

	return dst, nil
}

// checkOrder verifies that block is strictly increasing and continues dst.
func checkOrder(dst, block []uint32) error {
	prev, hasPrev := uint32(0), len(dst) > 0
	if hasPrev {
		prev = dst[len(dst)-1]
	}
	for i, v := range block {
		if hasPrev && v <= prev {
			return fmt.Errorf("element %d (%d) does not follow %d", i, v, prev)
		}
		prev, hasPrev = v, true
	}

	return nil
}
