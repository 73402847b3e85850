package segsieve

import (
	"context"

	"github.com/arloliu/segsieve/transport"
	"github.com/nats-io/nats.go"
)

// NewNATSTransport builds a JetStream transport for one worker from the
// Transport section of cfg.
//
// Parameters:
//   - ctx: Context for stream setup
//   - conn: Connected NATS client
//   - group: This worker's rank and the group size
//   - cfg: Configuration (defaults are applied in place)
//   - logger: Logger for transport warnings (nil for none)
//
// Returns:
//   - *transport.NATS: Transport to pass to WithTransport
//   - error: Configuration or JetStream failure
//
// Example:
//
//	cfg.Transport.RunID = "nightly-2024-06-01"
//	tr, err := segsieve.NewNATSTransport(ctx, nc, group, &cfg, logger)
//	if err != nil { /* handle */ }
//	s, err := segsieve.New(&cfg, src, group, segsieve.WithTransport(tr))
func NewNATSTransport(ctx context.Context, conn *nats.Conn, group Group, cfg *Config, logger Logger) (*transport.NATS, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	SetDefaults(cfg)

	tc := cfg.Transport

	return transport.NewNATS(ctx, conn, group, transport.NATSConfig{
		SubjectPrefix:    tc.SubjectPrefix,
		StreamName:       tc.StreamName,
		RunID:            tc.RunID,
		Storage:          tc.Storage,
		FetchWait:        tc.FetchWait,
		OperationTimeout: tc.OperationTimeout,
		MaxRetries:       tc.MaxRetries,
		MaxAge:           tc.MaxAge,
	}, transport.WithNATSLogger(logger))
}
