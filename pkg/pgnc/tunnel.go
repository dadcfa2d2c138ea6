package pgnc

import "context"

// Tunnel is an open local port forward to the database endpoint.
type Tunnel interface {
	// LocalPort is the loopback port that forwards to the remote endpoint.
	LocalPort() int

	// Close tears the tunnel down. Safe to call more than once.
	Close() error
}

// TunnelOpener establishes tunnels. Implementations must clean up any
// partially established state before returning an error.
type TunnelOpener interface {
	Open(ctx context.Context, cfg TunnelConfig) (Tunnel, error)
}
