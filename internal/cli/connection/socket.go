// Package connection provides connection management for ignite-cli.
package connection

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewSocketClient creates a client that speaks the same management API
// over the server's local unix socket. Access control is the socket's
// file permissions; no token is sent.
func NewSocketClient(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}

	return &Client{
		// The host is a placeholder; the transport always dials the socket.
		baseURL: "http://localhost",
		target:  "unix://" + socketPath,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}
