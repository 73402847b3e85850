// Command segsieve prints every prime up to a bound.
//
// Usage:
//
//	segsieve <right-limit> (l|t|a) [flags]
//
// The output mode prints the prime list (l), the elapsed time in seconds
// (t), or both (a). Workers run in this process by default; with
// --transport=nats each process is one rank of a group that merges over
// NATS JetStream.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
