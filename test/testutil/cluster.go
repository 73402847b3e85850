package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/arloliu/segsieve"
	"github.com/arloliu/segsieve/source"
	sievetest "github.com/arloliu/segsieve/testing"
	"github.com/arloliu/segsieve/types"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// PhaseTracker records the phases one worker passes through.
type PhaseTracker struct {
	Rank int

	mu     sync.Mutex
	phases []types.Phase
}

// Hook returns a phase hook that records every target phase.
func (pt *PhaseTracker) Hook() func(context.Context, types.Phase, types.Phase) error {
	return func(_ context.Context, _, to types.Phase) error {
		pt.mu.Lock()
		defer pt.mu.Unlock()
		pt.phases = append(pt.phases, to)

		return nil
	}
}

// Phases returns a copy of the recorded phases.
func (pt *PhaseTracker) Phases() []types.Phase {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	return append([]types.Phase(nil), pt.phases...)
}

// Cluster is a worker group on one embedded NATS server, one client
// connection per worker.
type Cluster struct {
	Server   *server.Server
	Config   segsieve.Config
	Source   segsieve.CacheSource
	Trackers []*PhaseTracker
	T        *testing.T

	sieves []*segsieve.Sieve
}

// NewCluster creates workers ranks of a group sharing runID.
//
// Parameters:
//   - t: Testing handle; connections and transports close on cleanup
//   - srv: Embedded server from sievetest.StartEmbeddedNATS
//   - workers: Group size
//   - cfg: Configuration shared by every worker (copied per worker)
//   - cacheBytes: Cache budget every worker sizes its window from
//
// Returns:
//   - *Cluster: Ready group; call Run to sieve
func NewCluster(t *testing.T, srv *server.Server, workers int, cfg segsieve.Config, cacheBytes int) *Cluster {
	t.Helper()

	c := &Cluster{
		Server: srv,
		Config: cfg,
		Source: source.NewStaticBytes(cacheBytes),
		T:      t,
	}

	logger := sievetest.NewTestLogger(t)
	for rank := range workers {
		workerCfg := cfg
		group := segsieve.Group{Rank: rank, Size: workers}

		tr, err := segsieve.NewNATSTransport(t.Context(), sievetest.Connect(t, srv), group, &workerCfg, logger)
		require.NoError(t, err, "transport for rank %d", rank)
		t.Cleanup(func() { _ = tr.Close() })

		tracker := &PhaseTracker{Rank: rank}
		c.Trackers = append(c.Trackers, tracker)

		s, err := segsieve.New(&workerCfg, c.Source, group,
			segsieve.WithTransport(tr),
			segsieve.WithLogger(logger),
			segsieve.WithHooks(&segsieve.Hooks{OnPhaseChanged: tracker.Hook()}),
		)
		require.NoError(t, err, "worker %d", rank)
		c.sieves = append(c.sieves, s)
	}

	return c
}

// Run runs every worker concurrently and returns the results by rank.
func (c *Cluster) Run(ctx context.Context, limit uint32) ([]*segsieve.Result, error) {
	results := make([]*segsieve.Result, len(c.sieves))

	g, gctx := errgroup.WithContext(ctx)
	for rank, s := range c.sieves {
		g.Go(func() error {
			res, err := s.Run(gctx, limit)
			if err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			results[rank] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Collector returns the result holding the merged list.
func Collector(t *testing.T, results []*segsieve.Result) *segsieve.Result {
	t.Helper()

	for _, res := range results {
		if res != nil && res.Collector {
			return res
		}
	}
	t.Fatal("no collector result")

	return nil
}

// NewStaticSource returns a fixed cache budget of cacheBytes.
func NewStaticSource(cacheBytes int) segsieve.CacheSource {
	return source.NewStaticBytes(cacheBytes)
}
