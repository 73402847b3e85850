package segsieve

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arloliu/segsieve/source"
	sievetest "github.com/arloliu/segsieve/testing"
	"github.com/arloliu/segsieve/transport"
	"github.com/stretchr/testify/require"
)

// trialDivision lists every prime <= limit the slow way.
func trialDivision(limit uint32) []uint32 {
	var primes []uint32
	for n := uint32(2); n <= limit; n++ {
		prime := true
		for d := uint32(2); d*d <= n; d++ {
			if n%d == 0 {
				prime = false
				break
			}
		}
		if prime {
			primes = append(primes, n)
		}
	}

	return primes
}

func runSingle(t *testing.T, cacheBytes int, limit uint32) *Result {
	t.Helper()

	cfg := TestConfig()
	s, err := New(&cfg, source.NewStaticBytes(cacheBytes), SingleWorker(), WithLogger(sievetest.NewTestLogger(t)))
	require.NoError(t, err)

	res, err := s.Run(t.Context(), limit)
	require.NoError(t, err)

	return res
}

type failingSource struct{ err error }

func (f failingSource) Cache(context.Context) (CacheBudget, error) {
	return CacheBudget{}, f.err
}

func TestNew(t *testing.T) {
	src := source.NewStaticBytes(64)

	t.Run("creates a single worker without transport", func(t *testing.T) {
		cfg := DefaultConfig()
		s, err := New(&cfg, src, SingleWorker())
		require.NoError(t, err)
		require.Equal(t, PhaseInit, s.Phase())
		require.True(t, s.IsCollector())
		require.Equal(t, SingleWorker(), s.Group())
	})

	t.Run("fills missing config values", func(t *testing.T) {
		cfg := Config{}
		_, err := New(&cfg, src, SingleWorker())
		require.NoError(t, err)
		require.Equal(t, 4, cfg.WindowFactor)
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := New(nil, src, SingleWorker())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects nil cache source", func(t *testing.T) {
		cfg := DefaultConfig()
		_, err := New(&cfg, nil, SingleWorker())
		require.ErrorIs(t, err, ErrCacheSourceRequired)
	})

	t.Run("rejects rank outside the group", func(t *testing.T) {
		cfg := DefaultConfig()
		_, err := New(&cfg, src, Group{Rank: 2, Size: 2})
		require.ErrorIs(t, err, ErrInvalidGroup)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WindowFactor = 32
		_, err := New(&cfg, src, SingleWorker())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects collector outside the group", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CollectorRank = 3
		net, err := transport.NewLocal(2)
		require.NoError(t, err)
		ep, err := net.Endpoint(0)
		require.NoError(t, err)

		_, err = New(&cfg, src, Group{Rank: 0, Size: 2}, WithTransport(ep))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires a transport for larger groups", func(t *testing.T) {
		cfg := DefaultConfig()
		_, err := New(&cfg, src, Group{Rank: 1, Size: 3})
		require.ErrorIs(t, err, ErrTransportRequired)
	})
}

func TestSieve_Run_Boundaries(t *testing.T) {
	tests := []struct {
		limit uint32
		want  []uint32
	}{
		{2, []uint32{2}},
		{3, []uint32{2, 3}},
		{10, []uint32{2, 3, 5, 7}},
		{30, []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	}

	for _, cacheBytes := range []int{1, 2, 16, 32 * 1024} {
		for _, tt := range tests {
			res := runSingle(t, cacheBytes, tt.limit)
			require.Equal(t, tt.want, res.Primes, "limit %d cache %d", tt.limit, cacheBytes)
			require.Equal(t, len(tt.want), res.Count())
		}
	}
}

func TestSieve_Run_CrossWindow(t *testing.T) {
	t.Run("window of eight up to thirty", func(t *testing.T) {
		res := runSingle(t, 2, 30)

		require.Equal(t, uint32(8), res.WindowSize)
		require.Equal(t, uint32(8), res.PrefixEnd)
		require.Equal(t, 4, res.BootstrapPrimes)
		require.Equal(t, Partition{Rank: 0, Lo: 8, Hi: 31}, res.Partition)
		require.Equal(t, 6, res.LocalPrimes)
		require.Equal(t, 4, res.Windows)
		require.Equal(t, []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, res.Primes)
	})

	t.Run("window of eight excludes composites of larger primes", func(t *testing.T) {
		res := runSingle(t, 2, 100)

		require.Equal(t, trialDivision(100), res.Primes)
		require.NotContains(t, res.Primes, uint32(49))
		require.NotContains(t, res.Primes, uint32(77))
		require.NotContains(t, res.Primes, uint32(91))
	})
}

func TestSieve_Run_MatchesTrialDivision(t *testing.T) {
	want := trialDivision(30_000)

	for _, cacheBytes := range []int{1, 3, 16, 100, 1024, 32 * 1024} {
		res := runSingle(t, cacheBytes, 30_000)
		require.Equal(t, want, res.Primes, "cache %d", cacheBytes)
		require.Equal(t, Digest(want), res.Digest)
	}
}

func TestSieve_Run_Errors(t *testing.T) {
	t.Run("rejects limits outside the accepted range", func(t *testing.T) {
		cfg := DefaultConfig()
		s, err := New(&cfg, source.NewStaticBytes(64), SingleWorker())
		require.NoError(t, err)

		for _, limit := range []uint32{0, 1, MaxLimit + 1} {
			res, err := s.Run(t.Context(), limit)
			require.ErrorIs(t, err, ErrInvalidRange)
			require.Nil(t, res)
		}
		require.Equal(t, PhaseInit, s.Phase())
	})

	t.Run("rejects a window above the byte cap", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxWindowBytes = 1
		s, err := New(&cfg, source.NewStaticBytes(64), SingleWorker())
		require.NoError(t, err)

		res, err := s.Run(t.Context(), 1000)
		require.ErrorIs(t, err, ErrResourceExhausted)
		require.Nil(t, res)
		require.Equal(t, PhaseFailed, s.Phase())
	})

	t.Run("rejects a prime list above the byte cap", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxPrimeListBytes = 4
		s, err := New(&cfg, source.NewStaticBytes(64), SingleWorker())
		require.NoError(t, err)

		_, err = s.Run(t.Context(), 1000)
		require.ErrorIs(t, err, ErrResourceExhausted)
	})

	t.Run("propagates cache source failures", func(t *testing.T) {
		boom := errors.New("boom")
		cfg := DefaultConfig()
		s, err := New(&cfg, failingSource{err: boom}, SingleWorker())
		require.NoError(t, err)

		_, err = s.Run(t.Context(), 1000)
		require.ErrorIs(t, err, boom)
	})

	t.Run("rejects an empty cache budget", func(t *testing.T) {
		cfg := DefaultConfig()
		s, err := New(&cfg, source.NewStatic(CacheBudget{}), SingleWorker())
		require.NoError(t, err)

		_, err = s.Run(t.Context(), 1000)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("returns no result when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		cfg := DefaultConfig()
		s, err := New(&cfg, source.NewStaticBytes(64), SingleWorker())
		require.NoError(t, err)

		res, err := s.Run(ctx, 1000)
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, res)
	})
}

func TestSieve_Run_Hooks(t *testing.T) {
	t.Run("reports every phase in order", func(t *testing.T) {
		var (
			mu     sync.Mutex
			phases []Phase
			parts  []Partition
		)
		hooks := &Hooks{
			OnPhaseChanged: func(_ context.Context, _, to Phase) error {
				mu.Lock()
				defer mu.Unlock()
				phases = append(phases, to)

				return nil
			},
			OnPartitionAssigned: func(_ context.Context, p Partition) error {
				parts = append(parts, p)

				return errors.New("ignored")
			},
		}

		cfg := DefaultConfig()
		s, err := New(&cfg, source.NewStaticBytes(16), SingleWorker(), WithHooks(hooks))
		require.NoError(t, err)

		_, err = s.Run(t.Context(), 500)
		require.NoError(t, err)

		require.Equal(t, []Phase{PhaseBootstrap, PhasePartitioned, PhaseSieving, PhaseMerging, PhaseDone}, phases)
		require.Len(t, parts, 1)
		require.Equal(t, uint32(501), parts[0].Hi)
		require.Equal(t, PhaseDone, s.Phase())
	})

	t.Run("reports failures", func(t *testing.T) {
		var got error
		hooks := &Hooks{
			OnError: func(_ context.Context, err error) error {
				got = err
				return nil
			},
		}

		cfg := DefaultConfig()
		cfg.MaxWindowBytes = 1
		s, err := New(&cfg, source.NewStaticBytes(64), SingleWorker(), WithHooks(hooks))
		require.NoError(t, err)

		_, err = s.Run(t.Context(), 1000)
		require.Error(t, err)
		require.ErrorIs(t, got, ErrResourceExhausted)
	})
}

func TestSieve_Run_Repeatable(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(&cfg, source.NewStaticBytes(32), SingleWorker())
	require.NoError(t, err)

	first, err := s.Run(t.Context(), 5000)
	require.NoError(t, err)
	second, err := s.Run(t.Context(), 5000)
	require.NoError(t, err)

	require.Equal(t, first.Primes, second.Primes)
	require.Equal(t, first.Digest, second.Digest)
}

func TestWindowSize(t *testing.T) {
	l1 := CacheBudget{SizeBytes: 32 * 1024}

	require.Equal(t, uint32(128*1024), WindowSize(l1, 4, MaxLimit))
	require.Equal(t, uint32(101), WindowSize(l1, 4, 100))
	require.Equal(t, uint32(8), WindowSize(CacheBudget{SizeBytes: 2}, 4, 30))
	require.Equal(t, uint32(1), WindowSize(CacheBudget{SizeBytes: 1}, 1, 30))
}
