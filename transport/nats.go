package transport

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/arloliu/segsieve/internal/jsutil"
	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/internal/natsutil"
	"github.com/arloliu/segsieve/types"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
)

// Message headers.
const (
	HeaderKind     = "Segsieve-Kind"
	HeaderChecksum = "Segsieve-Checksum"

	kindCount = "count"
	kindBlock = "block"
)

// Defaults for NATSConfig.
const (
	DefaultSubjectPrefix    = "segsieve"
	DefaultStreamName       = "SEGSIEVE"
	DefaultFetchWait        = time.Second
	DefaultOperationTimeout = 10 * time.Second
	DefaultMaxRetries       = 3
	DefaultMaxAge           = time.Hour
)

// ErrChecksumMismatch indicates a payload does not match its checksum header.
var ErrChecksumMismatch = errors.New("payload checksum mismatch")

// NATSConfig configures a NATS transport.
type NATSConfig struct {
	// SubjectPrefix roots every subject: <prefix>.<runID>.<from>.<to>.
	SubjectPrefix string

	// StreamName is the JetStream stream capturing <prefix>.>.
	StreamName string

	// RunID separates concurrent or repeated runs sharing one stream.
	// Every worker of a group must use the same value.
	RunID string

	// Storage is "memory" or "file".
	Storage string

	// FetchWait bounds a single consumer fetch; receives loop until ctx ends.
	FetchWait time.Duration

	// OperationTimeout bounds each publish and stream operation.
	OperationTimeout time.Duration

	// MaxRetries bounds stream creation and publish retries.
	MaxRetries int

	// MaxAge expires stream messages that were never purged.
	MaxAge time.Duration
}

func (c *NATSConfig) setDefaults() {
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = DefaultSubjectPrefix
	}
	if c.StreamName == "" {
		c.StreamName = DefaultStreamName
	}
	if c.FetchWait <= 0 {
		c.FetchWait = DefaultFetchWait
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
}

// NATS is a types.Transport over NATS JetStream.
//
// Every message is published to <prefix>.<runID>.<from>.<to> and captured by
// one stream. The receiver reads each source rank through its own ordered
// consumer, which delivers in publish order and survives reconnects.
// Publishes carry a message ID unique to this transport instance, so
// JetStream drops retried duplicates but never a later run's messages.
// Creating a transport purges the rank's outbound subjects of the run.
type NATS struct {
	js        jetstream.JetStream
	nonce     string
	stream    jetstream.Stream
	cfg       NATSConfig
	group     types.Group
	maxBlock  int
	consumers *xsync.Map[int, jetstream.Consumer]
	sequences *xsync.Map[int, *atomic.Uint64]
	logger    types.Logger
	closed    atomic.Bool
}

var _ types.Transport = (*NATS)(nil)

// NATSOption configures a NATS transport.
type NATSOption func(*NATS)

// WithNATSLogger sets the logger.
func WithNATSLogger(logger types.Logger) NATSOption {
	return func(n *NATS) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNATS creates a JetStream transport for one rank of group.
//
// The stream is created on first use by whichever worker gets there first;
// the others open it.
//
// Parameters:
//   - ctx: Context for stream setup
//   - conn: Connected NATS client
//   - group: This worker's rank and the group size
//   - cfg: Transport configuration (zero fields take defaults; RunID is required)
//   - opts: Optional configuration
//
// Returns:
//   - *NATS: Ready transport
//   - error: types.ErrInvalidConfig, types.ErrInvalidGroup, or a JetStream error
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	tr, err := transport.NewNATS(ctx, nc, types.Group{Rank: 1, Size: 4},
//	    transport.NATSConfig{RunID: "run-42"})
func NewNATS(ctx context.Context, conn *nats.Conn, group types.Group, cfg NATSConfig, opts ...NATSOption) (*NATS, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: NATS connection is required", types.ErrInvalidConfig)
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if cfg.RunID == "" {
		return nil, fmt.Errorf("%w: run ID is required", types.ErrInvalidConfig)
	}
	cfg.setDefaults()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate transport nonce: %w", err)
	}

	n := &NATS{
		js:        js,
		nonce:     hex.EncodeToString(nonce),
		cfg:       cfg,
		group:     group,
		maxBlock:  maxBlockElements(conn.MaxPayload()),
		consumers: xsync.NewMap[int, jetstream.Consumer](),
		sequences: xsync.NewMap[int, *atomic.Uint64](),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()

	n.stream, err = jsutil.EnsureStreamWithRetry(opCtx, js, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "segsieve partial results",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Storage:     jsutil.StorageType(cfg.Storage),
		MaxAge:      cfg.MaxAge,
		Retention:   jetstream.LimitsPolicy,
	}, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	// Leftovers of an earlier attempt of this rank under the same run ID
	// would otherwise be replayed to receivers.
	outbound := fmt.Sprintf("%s.%s.%d.>", cfg.SubjectPrefix, cfg.RunID, group.Rank)
	if err := n.stream.Purge(opCtx, jetstream.WithPurgeSubject(outbound)); err != nil {
		return nil, fmt.Errorf("failed to purge stale messages of rank %d: %w", group.Rank, err)
	}

	return n, nil
}

// maxBlockElements returns how many uint32 values fit in one message.
func maxBlockElements(maxPayload int64) int {
	if maxPayload <= 0 {
		maxPayload = 1 << 20
	}

	return max(int(maxPayload/4)-64, 1)
}

// Subject returns the subject carrying messages from one rank to another.
func (n *NATS) Subject(from, to int) string {
	return fmt.Sprintf("%s.%s.%d.%d", n.cfg.SubjectPrefix, n.cfg.RunID, from, to)
}

// SendCount publishes a count message to rank to.
func (n *NATS) SendCount(ctx context.Context, to int, count uint64) error {
	payload := binary.LittleEndian.AppendUint64(make([]byte, 0, 8), count)

	return n.publish(ctx, to, kindCount, payload)
}

// SendBlock publishes block to rank to. Blocks larger than the server's
// maximum payload are split into several messages.
func (n *NATS) SendBlock(ctx context.Context, to int, block []uint32) error {
	for start := 0; start < len(block); start += n.maxBlock {
		end := min(start+n.maxBlock, len(block))
		if err := n.publish(ctx, to, kindBlock, encodeBlock(block[start:end])); err != nil {
			return err
		}
	}

	return nil
}

// RecvCount waits for the next message from rank from, which must be a count.
func (n *NATS) RecvCount(ctx context.Context, from int) (uint64, error) {
	payload, err := n.next(ctx, from, kindCount)
	if err != nil {
		return 0, err
	}
	if len(payload) != 8 {
		return 0, fmt.Errorf("%w: count payload has %d bytes", types.ErrTransferIntegrity, len(payload))
	}

	return binary.LittleEndian.Uint64(payload), nil
}

// RecvBlock waits for the next message from rank from, which must be a
// block no longer than buf, and decodes it into buf.
func (n *NATS) RecvBlock(ctx context.Context, from int, buf []uint32) (int, error) {
	payload, err := n.next(ctx, from, kindBlock)
	if err != nil {
		return 0, err
	}
	if len(payload)%4 != 0 {
		return 0, fmt.Errorf("%w: block payload has %d bytes", types.ErrTransferIntegrity, len(payload))
	}
	count := len(payload) / 4
	if count > len(buf) {
		return 0, fmt.Errorf("%w: block of %d elements exceeds buffer of %d",
			types.ErrTransferIntegrity, count, len(buf))
	}
	for i := range count {
		buf[i] = binary.LittleEndian.Uint32(payload[i*4:])
	}

	return count, nil
}

// Purge removes every message of this run from the stream. The collector
// calls it once the merge is complete.
func (n *NATS) Purge(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, n.cfg.OperationTimeout)
	defer cancel()

	subject := fmt.Sprintf("%s.%s.>", n.cfg.SubjectPrefix, n.cfg.RunID)
	if err := n.stream.Purge(opCtx, jetstream.WithPurgeSubject(subject)); err != nil {
		return fmt.Errorf("failed to purge run %s: %w", n.cfg.RunID, err)
	}

	return nil
}

// Close stops using the transport. Ordered consumers are ephemeral and are
// removed by the server once idle. It is safe to call more than once.
func (n *NATS) Close() error {
	n.closed.Store(true)
	n.consumers.Clear()

	return nil
}

func (n *NATS) checkPeer(rank int) error {
	if n.closed.Load() {
		return types.ErrTransportClosed
	}
	if rank < 0 || rank >= n.group.Size {
		return fmt.Errorf("%w: rank %d outside [0, %d)", types.ErrUnknownPeer, rank, n.group.Size)
	}

	return nil
}

func (n *NATS) publish(ctx context.Context, to int, kind string, payload []byte) error {
	if err := n.checkPeer(to); err != nil {
		return err
	}

	seq, _ := n.sequences.LoadOrStore(to, &atomic.Uint64{})
	msg := &nats.Msg{
		Subject: n.Subject(n.group.Rank, to),
		Data:    payload,
		Header:  nats.Header{},
	}
	msg.Header.Set(HeaderKind, kind)
	msg.Header.Set(HeaderChecksum, strconv.FormatUint(xxh3.Hash(payload), 16))
	msgID := fmt.Sprintf("%s-%s-%d", msg.Subject, n.nonce, seq.Add(1))
	msg.Header.Set(jetstream.MsgIDHeader, msgID)

	var lastErr error
	for attempt := range n.cfg.MaxRetries {
		opCtx, cancel := context.WithTimeout(ctx, n.cfg.OperationTimeout)
		ack, err := n.js.PublishMsg(opCtx, msg)
		cancel()
		if err == nil {
			// A duplicate on a retry means an earlier attempt was stored.
			if ack.Duplicate && attempt == 0 {
				return fmt.Errorf("%w: %s to rank %d dropped as duplicate of message %s",
					types.ErrTransferIntegrity, kind, to, msgID)
			}

			return nil
		}
		lastErr = err
		if !natsutil.IsConnectivityError(err) || ctx.Err() != nil {
			break
		}
		n.logger.Warn("publish failed, retrying", "subject", msg.Subject, "attempt", attempt+1, "error", err)
	}

	return fmt.Errorf("failed to publish %s to rank %d: %w", kind, to, lastErr)
}

func (n *NATS) consumer(ctx context.Context, from int) (jetstream.Consumer, error) {
	if cons, ok := n.consumers.Load(from); ok {
		return cons, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, n.cfg.OperationTimeout)
	defer cancel()

	cons, err := n.stream.OrderedConsumer(opCtx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{n.Subject(from, n.group.Rank)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for rank %d: %w", from, err)
	}
	n.consumers.Store(from, cons)

	return cons, nil
}

// next returns the payload of the next message from rank from and checks
// its kind and checksum.
func (n *NATS) next(ctx context.Context, from int, kind string) ([]byte, error) {
	if err := n.checkPeer(from); err != nil {
		return nil, err
	}
	cons, err := n.consumer(ctx, from)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.closed.Load() {
			return nil, types.ErrTransportClosed
		}

		msg, err := cons.Next(jetstream.FetchMaxWait(n.cfg.FetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, jetstream.ErrNoMessages) {
				continue
			}

			return nil, fmt.Errorf("failed to receive from rank %d: %w", from, err)
		}

		return verify(msg, kind)
	}
}

func verify(msg jetstream.Msg, kind string) ([]byte, error) {
	header := msg.Headers()
	if got := header.Get(HeaderKind); got != kind {
		return nil, fmt.Errorf("%w: %w: got %q, want %q", types.ErrTransferIntegrity, ErrUnexpectedMessage, got, kind)
	}

	payload := msg.Data()
	want := header.Get(HeaderChecksum)
	if want != strconv.FormatUint(xxh3.Hash(payload), 16) {
		return nil, fmt.Errorf("%w: %w", types.ErrTransferIntegrity, ErrChecksumMismatch)
	}

	return payload, nil
}

func encodeBlock(block []uint32) []byte {
	buf := make([]byte, 0, len(block)*4)
	for _, v := range block {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}

	return buf
}
