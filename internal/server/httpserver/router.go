// Package httpserver provides the management HTTP server for Ignite.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/bradthebeeble/ignite/internal/core/service"
	"github.com/bradthebeeble/ignite/internal/server/httpserver/handler"
	"github.com/bradthebeeble/ignite/internal/telemetry/metric"
)

// RouterConfig holds configuration for the management router.
type RouterConfig struct {
	// Check coordinates verification runs.
	Check *service.CheckService

	// Registry serves snapshot descriptors and check history.
	Registry *service.SnapshotRegistry

	// Cluster is the control-plane surface (*clusterserver.Server).
	Cluster handler.Cluster

	// AuthToken guards the /v1 routes when non-empty.
	AuthToken string

	// Metrics records request telemetry and backs /metrics.
	Metrics *metric.Registry

	// MetricsEnabled exposes the /metrics endpoint.
	MetricsEnabled bool

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the management router with all routes and
// middleware. The same handler tree serves the TCP listener and the
// unix-socket listener.
//
// @design DS-0301, DS-0302
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.NewNop()
	}

	// Create handler with services
	h := handler.New(cfg.Check, cfg.Registry, cfg.Cluster, log)

	// Create the top-level mux for routing. Patterns are repeated here
	// so each matched request carries r.Pattern through its middleware
	// chain; the handler's own mux does the final dispatch.
	mux := http.NewServeMux()

	// Health endpoints - probe traffic is counted but not logged
	healthHandler := Chain(h,
		RequestID(),
		Recover(log),
		Metrics(reg),
	)
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /ready", healthHandler)

	// Metrics endpoint - Prometheus exposition format, no envelope
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", Chain(reg.Handler(), RequestID(), Recover(log)))
	}

	// Management API - bearer auth when a token is configured
	apiHandler := Chain(h,
		RequestID(),
		Recover(log),
		Logging(log),
		Metrics(reg),
		BearerAuth(cfg.AuthToken, log),
	)

	// Check operations
	mux.Handle("POST /v1/snapshots/{name}/check", apiHandler)
	mux.Handle("GET /v1/operations", apiHandler)
	mux.Handle("GET /v1/operations/{id}", apiHandler)
	mux.Handle("DELETE /v1/operations/{id}", apiHandler)

	// Snapshot registry
	mux.Handle("GET /v1/snapshots", apiHandler)
	mux.Handle("GET /v1/snapshots/{name}", apiHandler)

	// Cluster control
	mux.Handle("GET /v1/cluster", apiHandler)
	mux.Handle("POST /v1/cluster/activate", apiHandler)
	mux.Handle("POST /v1/cluster/deactivate", apiHandler)
	mux.Handle("POST /v1/cluster/baseline", apiHandler)

	return mux
}
