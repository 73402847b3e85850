package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/arloliu/segsieve/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	require.NotNil(t, hooks.OnPhaseChanged)
	require.NotNil(t, hooks.OnPartitionAssigned)
	require.NotNil(t, hooks.OnError)

	require.NoError(t, hooks.OnPhaseChanged(ctx, types.PhaseInit, types.PhaseBootstrap))
	require.NoError(t, hooks.OnPartitionAssigned(ctx, types.Partition{Rank: 0, Lo: 8, Hi: 31}))
	require.NoError(t, hooks.OnError(ctx, context.Canceled))
}

func TestFill(t *testing.T) {
	t.Run("nil hooks become no-ops", func(t *testing.T) {
		hooks := Fill(nil)

		require.NotNil(t, hooks.OnPhaseChanged)
		require.NotNil(t, hooks.OnPartitionAssigned)
		require.NotNil(t, hooks.OnError)
	})

	t.Run("user callbacks are preserved", func(t *testing.T) {
		errHook := errors.New("hook failed")
		var seen types.Partition
		user := &types.Hooks{
			OnPartitionAssigned: func(_ context.Context, p types.Partition) error {
				seen = p
				return errHook
			},
		}

		hooks := Fill(user)
		err := hooks.OnPartitionAssigned(context.Background(), types.Partition{Rank: 1, Lo: 10, Hi: 20})

		require.ErrorIs(t, err, errHook)
		require.Equal(t, uint32(10), seen.Lo)
		require.NotNil(t, hooks.OnPhaseChanged)
		require.Nil(t, user.OnPhaseChanged, "input must not be mutated")
	})
}
