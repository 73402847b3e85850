package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/segsieve/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// DefaultMailboxDepth is the number of messages a sender can queue per
// destination before blocking.
const DefaultMailboxDepth = 16

type route struct {
	from int
	to   int
}

type message struct {
	isCount bool
	count   uint64
	block   []uint32
}

// Local is an in-process network connecting the ranks of one worker group.
//
// Each ordered (from, to) pair has its own buffered mailbox, created on
// first use. Local is safe for concurrent use by all endpoints.
type Local struct {
	size      int
	depth     int
	boxes     *xsync.Map[route, chan message]
	closed    chan struct{}
	closeOnce sync.Once
}

// LocalOption configures a Local network.
type LocalOption func(*Local)

// WithMailboxDepth sets the per-route queue depth (minimum 1).
func WithMailboxDepth(depth int) LocalOption {
	return func(l *Local) {
		l.depth = max(depth, 1)
	}
}

// NewLocal creates an in-process network for size ranks.
//
// Parameters:
//   - size: Number of ranks (>= 1)
//   - opts: Optional configuration
//
// Returns:
//   - *Local: Network ready to hand out endpoints
//   - error: types.ErrInvalidGroup if size < 1
//
// Example:
//
//	net, _ := transport.NewLocal(4)
//	defer net.Close()
//	ep, _ := net.Endpoint(2)
func NewLocal(size int, opts ...LocalOption) (*Local, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size must be >= 1, got %d", types.ErrInvalidGroup, size)
	}

	l := &Local{
		size:   size,
		depth:  DefaultMailboxDepth,
		boxes:  xsync.NewMap[route, chan message](),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Endpoint returns the transport used by rank.
func (l *Local) Endpoint(rank int) (*LocalEndpoint, error) {
	if rank < 0 || rank >= l.size {
		return nil, fmt.Errorf("%w: rank %d outside [0, %d)", types.ErrUnknownPeer, rank, l.size)
	}

	return &LocalEndpoint{net: l, rank: rank}, nil
}

// Close releases every blocked sender and receiver with ErrTransportClosed.
// It is safe to call more than once.
func (l *Local) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
	})

	return nil
}

func (l *Local) mailbox(from, to int) (chan message, error) {
	if to < 0 || to >= l.size {
		return nil, fmt.Errorf("%w: rank %d outside [0, %d)", types.ErrUnknownPeer, to, l.size)
	}
	if from < 0 || from >= l.size {
		return nil, fmt.Errorf("%w: rank %d outside [0, %d)", types.ErrUnknownPeer, from, l.size)
	}

	key := route{from: from, to: to}
	if ch, ok := l.boxes.Load(key); ok {
		return ch, nil
	}
	ch, _ := l.boxes.LoadOrStore(key, make(chan message, l.depth))

	return ch, nil
}

// LocalEndpoint is one rank's view of a Local network.
type LocalEndpoint struct {
	net  *Local
	rank int
}

var _ types.Transport = (*LocalEndpoint)(nil)

// Rank returns the rank this endpoint sends from.
func (e *LocalEndpoint) Rank() int {
	return e.rank
}

// SendCount queues a count message for rank to.
func (e *LocalEndpoint) SendCount(ctx context.Context, to int, count uint64) error {
	return e.send(ctx, to, message{isCount: true, count: count})
}

// SendBlock queues a copy of block for rank to.
func (e *LocalEndpoint) SendBlock(ctx context.Context, to int, block []uint32) error {
	return e.send(ctx, to, message{block: append([]uint32(nil), block...)})
}

// RecvCount waits for the next message from rank from, which must be a count.
func (e *LocalEndpoint) RecvCount(ctx context.Context, from int) (uint64, error) {
	msg, err := e.recv(ctx, from)
	if err != nil {
		return 0, err
	}
	if !msg.isCount {
		return 0, fmt.Errorf("%w: %w: got a block, want a count", types.ErrTransferIntegrity, ErrUnexpectedMessage)
	}

	return msg.count, nil
}

// RecvBlock waits for the next message from rank from, which must be a
// block no longer than buf, and copies it into buf.
func (e *LocalEndpoint) RecvBlock(ctx context.Context, from int, buf []uint32) (int, error) {
	msg, err := e.recv(ctx, from)
	if err != nil {
		return 0, err
	}
	if msg.isCount {
		return 0, fmt.Errorf("%w: %w: got a count, want a block", types.ErrTransferIntegrity, ErrUnexpectedMessage)
	}
	if len(msg.block) > len(buf) {
		return 0, fmt.Errorf("%w: block of %d elements exceeds buffer of %d",
			types.ErrTransferIntegrity, len(msg.block), len(buf))
	}

	return copy(buf, msg.block), nil
}

func (e *LocalEndpoint) send(ctx context.Context, to int, msg message) error {
	ch, err := e.net.mailbox(e.rank, to)
	if err != nil {
		return err
	}

	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.net.closed:
		return types.ErrTransportClosed
	}
}

func (e *LocalEndpoint) recv(ctx context.Context, from int) (message, error) {
	ch, err := e.net.mailbox(from, e.rank)
	if err != nil {
		return message{}, err
	}

	select {
	case msg := <-ch:
		return msg, nil
	case <-ctx.Done():
		return message{}, ctx.Err()
	case <-e.net.closed:
		return message{}, types.ErrTransportClosed
	}
}
