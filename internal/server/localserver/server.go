// Package localserver provides the local management server.
package localserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
)

// socketMode restricts the socket to its owner.
const socketMode = 0o600

// Server serves the management API on a Unix domain socket.
//
// @req RQ-0303
// @design DS-0301
type Server struct {
	httpServer *http.Server
	path       string
}

// New creates a local server serving handler on the socket at
// socketPath. The handler is usually the management router built
// without a bearer token; the socket file permissions gate access
// instead.
func New(socketPath string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{Handler: handler},
		path:       socketPath,
	}
}

// ListenAndServe binds the socket and serves until Shutdown.
//
// @req RQ-0303
func (s *Server) ListenAndServe() error {
	if err := s.clearStaleSocket(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, socketMode); err != nil {
		ln.Close()
		return fmt.Errorf("restrict socket permissions: %w", err)
	}

	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server. Closing the listener
// unlinks the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// clearStaleSocket removes a socket file nothing listens on. A socket
// that still answers belongs to a running process and is an error.
func (s *Server) clearStaleSocket() error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	conn, err := net.Dial("unix", s.path)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socket %s is in use by another process", s.path)
	}

	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}
