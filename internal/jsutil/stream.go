// Package jsutil provides helpers for NATS JetStream streams.
package jsutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStreamWithRetry creates or opens a stream, retrying transient failures.
//
// Every worker of a group calls this at startup, so concurrent creation of
// the same stream is expected: a name conflict opens the existing stream.
// Retries back off exponentially (10ms, 20ms, 40ms, ...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: Stream configuration
//   - maxRetries: Maximum number of attempts (default: 3)
//
// Returns:
//   - jetstream.Stream: The stream handle
//   - error: The last error once every attempt failed
//
// Example:
//
//	stream, err := jsutil.EnsureStreamWithRetry(ctx, js, jetstream.StreamConfig{
//	    Name:     "SEGSIEVE",
//	    Subjects: []string{"segsieve.>"},
//	}, 3)
func EnsureStreamWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.StreamConfig,
	maxRetries int,
) (jetstream.Stream, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error

	for attempt := range maxRetries {
		stream, err := js.CreateStream(ctx, config)
		if err == nil {
			return stream, nil
		}

		if errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
			stream, err := js.Stream(ctx, config.Name)
			if err == nil {
				return stream, nil
			}
			lastErr = fmt.Errorf("stream exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during stream creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open stream %s after %d attempts: %w",
		config.Name, maxRetries, lastErr)
}

// StorageType maps a storage name to a JetStream storage type.
// "file" selects file storage; anything else, including "", selects memory.
func StorageType(name string) jetstream.StorageType {
	if name == "file" {
		return jetstream.FileStorage
	}

	return jetstream.MemoryStorage
}
