// Package handler provides HTTP request handlers for the Ignite management API.
//
// This package implements the HTTP endpoints for snapshot verification,
// operation tracking, registry reads and cluster control.
//
// @req RQ-0301
// @design DS-0301
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/core/service"
	"github.com/bradthebeeble/ignite/internal/server/clusterserver"
)

// Cluster is the control-plane surface the management API exposes.
// *clusterserver.Server implements it.
type Cluster interface {
	// Members returns the live gossip membership.
	Members() []clusterserver.MemberInfo

	// Leader returns the raft leader's node id and address; both are
	// empty when no leader is known.
	Leader() (id, addr string)

	// State returns a copy of the replicated cluster state.
	State() *clusterserver.ClusterState

	// Topology returns the membership view used for verification fan-out.
	Topology() domain.Topology

	// Activate flips the replicated ACTIVE flag on. Leader only.
	Activate(ctx context.Context) error

	// Deactivate flips the replicated ACTIVE flag off. Leader only.
	Deactivate(ctx context.Context) error

	// SetBaseline replaces the baseline topology. Leader only.
	SetBaseline(ctx context.Context, nodes []domain.NodeInfo) error
}

// Handler routes management requests to the check, registry and cluster
// services.
//
// @design DS-0301
type Handler struct {
	checkSvc *service.CheckService
	registry *service.SnapshotRegistry
	cluster  Cluster
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a new Handler with the given services.
//
// @design DS-0301
func New(checkSvc *service.CheckService, registry *service.SnapshotRegistry, cluster Cluster, logger *slog.Logger) *Handler {
	h := &Handler{
		checkSvc: checkSvc,
		registry: registry,
		cluster:  cluster,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints (no auth required)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Check operations
	h.mux.HandleFunc("POST /v1/snapshots/{name}/check", h.handleStartCheck)
	h.mux.HandleFunc("GET /v1/operations", h.handleListOperations)
	h.mux.HandleFunc("GET /v1/operations/{id}", h.handleGetOperation)
	h.mux.HandleFunc("DELETE /v1/operations/{id}", h.handleCancelOperation)

	// Snapshot registry
	h.mux.HandleFunc("GET /v1/snapshots", h.handleListSnapshots)
	h.mux.HandleFunc("GET /v1/snapshots/{name}", h.handleGetSnapshot)

	// Cluster control
	h.mux.HandleFunc("GET /v1/cluster", h.handleClusterInfo)
	h.mux.HandleFunc("POST /v1/cluster/activate", h.handleActivate)
	h.mux.HandleFunc("POST /v1/cluster/deactivate", h.handleDeactivate)
	h.mux.HandleFunc("POST /v1/cluster/baseline", h.handleSetBaseline)
}

// writeJSON writes a JSON response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(data)); err != nil {
		h.logger.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// writeError writes an error response with the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(code, message))
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, err.Error())
		return
	}

	// Generic internal error
	h.logger.Error("internal error", "error", err, "path", r.URL.Path)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	// Cluster preconditions surface as conflicts regardless of suffix.
	case code == domain.ErrClusterInactive.Code,
		code == domain.ErrNotLeader.Code,
		code == domain.ErrCheckCancelled.Code:
		return http.StatusConflict
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"), strings.HasSuffix(code, "-4091"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4080"):
		return http.StatusGatewayTimeout
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "IG-ARG-"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "IG-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
