package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arloliu/segsieve"
	"github.com/stretchr/testify/require"
)

func collectorResult(primes ...uint32) *segsieve.Result {
	return &segsieve.Result{
		Limit:     30,
		Group:     segsieve.SingleWorker(),
		Collector: true,
		Primes:    primes,
		Elapsed:   1500 * time.Microsecond,
		Digest:    segsieve.Digest(primes),
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"l":    ModeList,
		"t":    ModeTime,
		"a":    ModeAll,
		"list": ModeList,
		"all":  ModeAll,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "x", "L"} {
		_, err := ParseMode(in)
		require.ErrorIs(t, err, ErrInvalidMode, in)
	}

	require.Equal(t, "a", ModeAll.String())
}

func TestText_Write(t *testing.T) {
	res := collectorResult(2, 3, 5, 7)

	t.Run("list mode", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewText(&buf, ModeList).Write(t.Context(), res))
		require.Equal(t, "2 3 5 7 \n", buf.String())
	})

	t.Run("time mode", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewText(&buf, ModeTime).Write(t.Context(), res))
		require.Equal(t, "0.001500\n", buf.String())
	})

	t.Run("all mode prints list then time", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewText(&buf, ModeAll).Write(t.Context(), res))
		require.Equal(t, "2 3 5 7 \n0.001500\n", buf.String())
	})

	t.Run("time mode accepts a non-collector result", func(t *testing.T) {
		var buf bytes.Buffer
		res := &segsieve.Result{Elapsed: 2 * time.Second}
		require.NoError(t, NewText(&buf, ModeTime).Write(t.Context(), res))
		require.Equal(t, "2.000000\n", buf.String())
	})

	t.Run("list mode needs the merged list", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewText(&buf, ModeList).Write(t.Context(), &segsieve.Result{})
		require.ErrorIs(t, err, ErrNoPrimes)
		require.ErrorIs(t, NewText(&buf, ModeList).Write(t.Context(), nil), ErrNoPrimes)
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		var buf bytes.Buffer
		err := NewText(&buf, ModeList).Write(ctx, res)
		require.ErrorIs(t, err, context.Canceled)
	})
}

type recordingSink struct {
	calls int
	err   error
}

func (r *recordingSink) Write(context.Context, *segsieve.Result) error {
	r.calls++
	return r.err
}

func TestMulti_Write(t *testing.T) {
	boom := errors.New("boom")
	first, failing, last := &recordingSink{}, &recordingSink{err: boom}, &recordingSink{}

	err := Multi{first, failing, last}.Write(t.Context(), collectorResult(2))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, failing.calls)
	require.Zero(t, last.calls)
}
