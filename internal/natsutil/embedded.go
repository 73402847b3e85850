package natsutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// ErrServerNotReady is returned when an embedded server does not accept
// connections within the startup timeout.
var ErrServerNotReady = errors.New("embedded NATS server not ready")

// Embedded is an in-process NATS server with JetStream and a client
// connection to it.
type Embedded struct {
	Server *server.Server
	Conn   *nats.Conn
}

// StartEmbedded starts an in-process NATS server with JetStream on a random
// local port and connects to it.
//
// Parameters:
//   - storeDir: JetStream storage directory ("" for a temporary one)
//   - timeout: How long to wait for the server to accept connections
//
// Returns:
//   - *Embedded: Running server and connected client
//   - error: Startup or connection failure
func StartEmbedded(storeDir string, timeout time.Duration) (*Embedded, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
		NoSigs:    true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(timeout) {
		ns.Shutdown()
		return nil, ErrServerNotReady
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(2*time.Second))
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("connect to embedded NATS server: %w", err)
	}

	return &Embedded{Server: ns, Conn: nc}, nil
}

// Close closes the client and shuts the server down.
func (e *Embedded) Close() {
	e.Conn.Close()
	e.Server.Shutdown()
	e.Server.WaitForShutdown()
}
