package types

import "context"

// Transport moves unsigned integers between two ranks of a worker group.
//
// Every transfer is a count followed by the payload, split into blocks.
// Implementations must deliver messages between one sender/receiver pair at
// least once and in order; they do not retry on behalf of the caller.
//
// Send and receive block until the transfer completes or ctx is done.
type Transport interface {
	// SendCount announces how many elements will follow to rank `to`.
	SendCount(ctx context.Context, to int, count uint64) error

	// SendBlock sends one block of elements to rank `to`.
	SendBlock(ctx context.Context, to int, block []uint32) error

	// RecvCount receives the element count announced by rank `from`.
	RecvCount(ctx context.Context, from int) (uint64, error)

	// RecvBlock receives the next block from rank `from` into buf.
	//
	// Returns:
	//   - int: Number of elements written to buf
	//   - error: ErrTransferIntegrity if the block does not fit buf
	RecvBlock(ctx context.Context, from int, buf []uint32) (int, error)
}
