package segsieve

import (
	"context"
	"fmt"

	"github.com/arloliu/segsieve/transport"
	"golang.org/x/sync/errgroup"
)

// RunLocal runs a whole worker group inside this process and returns the
// collector's result.
//
// Each worker runs in its own goroutine with its own window and prime list;
// they communicate only through an in-process transport. The first failing
// worker cancels the others.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Configuration shared by every worker (copied per worker)
//   - source: Cache source shared by every worker
//   - workers: Group size (>= 1)
//   - limit: Inclusive right bound
//   - opts: Options applied to every worker; WithTransport is overridden
//
// Returns:
//   - *Result: The collector's result
//   - error: The first worker error
//
// Example:
//
//	cfg := segsieve.DefaultConfig()
//	res, err := segsieve.RunLocal(ctx, &cfg, src, runtime.NumCPU(), 100_000_000)
//	if err != nil { /* handle */ }
//	fmt.Println(res.Count())
func RunLocal(ctx context.Context, cfg *Config, source CacheSource, workers int, limit uint32, opts ...Option) (*Result, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	net, err := transport.NewLocal(workers)
	if err != nil {
		return nil, err
	}
	defer net.Close()

	sieves := make([]*Sieve, workers)
	for rank := range workers {
		ep, err := net.Endpoint(rank)
		if err != nil {
			return nil, err
		}

		workerCfg := *cfg
		workerOpts := append(append([]Option(nil), opts...), WithTransport(ep))
		sieves[rank], err = New(&workerCfg, source, Group{Rank: rank, Size: workers}, workerOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create worker %d: %w", rank, err)
		}
	}

	results := make([]*Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for rank, s := range sieves {
		g.Go(func() error {
			res, err := s.Run(gctx, limit)
			if err != nil {
				return fmt.Errorf("worker %d: %w", rank, err)
			}
			results[rank] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, s := range sieves {
		if s.IsCollector() {
			return results[s.group.Rank], nil
		}
	}

	return nil, fmt.Errorf("%w: no collector in group", ErrInvalidConfig)
}
