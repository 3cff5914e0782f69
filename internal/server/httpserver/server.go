// Package httpserver provides the management HTTP server for Ignite.
//
// It uses the Go standard library net/http for implementation, serving
// the management API assembled by NewRouter. TLS certificates are
// reloaded on change without a restart.
package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/bradthebeeble/ignite/internal/infra/tlsroots"
)

// Server represents the management HTTP server.
//
// @req RQ-0301
// @design DS-0301
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	watcher    *tlsroots.Watcher
}

// New creates a new HTTP server.
//
// @design DS-0301
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		handler: handler,
	}
}

// ListenAndServe starts the HTTP server.
//
// @design DS-0301
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server. The certificate pair is
// watched and hot-reloaded on change. A non-empty clientCADir enables
// mutual TLS against the CA certificates found in that directory.
//
// @design DS-0301
func (s *Server) ListenAndServeTLS(certFile, keyFile, clientCADir string) error {
	watcher, err := tlsroots.NewWatcher(certFile, keyFile)
	if err != nil {
		return err
	}
	watcher.StartAsync()
	s.watcher = watcher

	tlsConf := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: watcher.GetCertificate,
	}
	if clientCADir != "" {
		pool := tlsroots.NewEmptyPool()
		if err := pool.AddCertDir(clientCADir); err != nil {
			watcher.Stop()
			return err
		}
		tlsConf.ClientCAs = pool.Pool()
		tlsConf.ClientAuth = tls.RequireAndVerifyClientCert
	}
	s.httpServer.TLSConfig = tlsConf

	// Cert and key paths stay empty; the watcher supplies the pair.
	return s.httpServer.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server.
//
// @design DS-0301
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
