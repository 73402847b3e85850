package transport

import (
	"context"
	"testing"
	"time"

	"github.com/arloliu/segsieve/types"
	"github.com/stretchr/testify/require"
)

func TestNewLocal(t *testing.T) {
	t.Run("rejects an empty group", func(t *testing.T) {
		_, err := NewLocal(0)
		require.ErrorIs(t, err, types.ErrInvalidGroup)
	})

	t.Run("rejects unknown endpoints", func(t *testing.T) {
		net, err := NewLocal(2)
		require.NoError(t, err)

		_, err = net.Endpoint(2)
		require.ErrorIs(t, err, types.ErrUnknownPeer)
	})
}

func TestLocal_Delivery(t *testing.T) {
	net, err := NewLocal(3)
	require.NoError(t, err)
	defer net.Close()

	sender, err := net.Endpoint(2)
	require.NoError(t, err)
	receiver, err := net.Endpoint(0)
	require.NoError(t, err)

	ctx := t.Context()

	t.Run("preserves order per route", func(t *testing.T) {
		block := []uint32{11, 13, 17}
		require.NoError(t, sender.SendCount(ctx, 0, 5))
		require.NoError(t, sender.SendBlock(ctx, 0, block))
		require.NoError(t, sender.SendBlock(ctx, 0, []uint32{19, 23}))
		block[0] = 999

		count, err := receiver.RecvCount(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, uint64(5), count)

		buf := make([]uint32, 4)
		n, err := receiver.RecvBlock(ctx, 2, buf)
		require.NoError(t, err)
		require.Equal(t, []uint32{11, 13, 17}, buf[:n], "sent block must be copied")

		n, err = receiver.RecvBlock(ctx, 2, buf)
		require.NoError(t, err)
		require.Equal(t, []uint32{19, 23}, buf[:n])
	})

	t.Run("rejects a block where a count is expected", func(t *testing.T) {
		require.NoError(t, sender.SendBlock(ctx, 0, []uint32{29}))

		_, err := receiver.RecvCount(ctx, 2)
		require.ErrorIs(t, err, types.ErrTransferIntegrity)
		require.ErrorIs(t, err, ErrUnexpectedMessage)
	})

	t.Run("rejects a block larger than the buffer", func(t *testing.T) {
		require.NoError(t, sender.SendBlock(ctx, 0, []uint32{31, 37, 41}))

		_, err := receiver.RecvBlock(ctx, 2, make([]uint32, 2))
		require.ErrorIs(t, err, types.ErrTransferIntegrity)
	})

	t.Run("rejects unknown peers", func(t *testing.T) {
		err := sender.SendCount(ctx, 7, 1)
		require.ErrorIs(t, err, types.ErrUnknownPeer)
	})
}

func TestLocal_Blocking(t *testing.T) {
	t.Run("receive honors context cancellation", func(t *testing.T) {
		net, err := NewLocal(2)
		require.NoError(t, err)
		defer net.Close()

		ep, err := net.Endpoint(0)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		_, err = ep.RecvCount(ctx, 1)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("send blocks when the mailbox is full", func(t *testing.T) {
		net, err := NewLocal(2, WithMailboxDepth(1))
		require.NoError(t, err)
		defer net.Close()

		ep, err := net.Endpoint(1)
		require.NoError(t, err)
		require.NoError(t, ep.SendCount(t.Context(), 0, 1))

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		err = ep.SendCount(ctx, 0, 2)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("close releases blocked receivers", func(t *testing.T) {
		net, err := NewLocal(2)
		require.NoError(t, err)

		ep, err := net.Endpoint(0)
		require.NoError(t, err)

		errCh := make(chan error, 1)
		go func() {
			_, err := ep.RecvCount(context.Background(), 1)
			errCh <- err
		}()

		require.NoError(t, net.Close())
		require.NoError(t, net.Close())

		select {
		case err := <-errCh:
			require.ErrorIs(t, err, types.ErrTransportClosed)
		case <-time.After(time.Second):
			t.Fatal("receiver was not released")
		}
	})
}
