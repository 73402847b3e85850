// Package transport provides point-to-point transports for the merge protocol.
//
//   - Local: in-process mailboxes for worker groups running as goroutines
//   - NATS: JetStream-backed transport for workers in separate processes
//
// Both implement types.Transport. Messages between one ordered pair of ranks
// are delivered in send order; a count message always precedes the blocks
// it announces.
package transport
