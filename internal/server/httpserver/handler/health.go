// Package handler provides HTTP request handlers for the Ignite management API.
package handler

import (
	"net/http"
	"time"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
//
// @design DS-0301
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
//
// A node is ready once the raft cluster has an elected leader; until
// then checks cannot be coordinated and control operations would fail.
//
// @design DS-0301
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	leaderID, _ := h.cluster.Leader()
	if leaderID == "" {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code, "no raft leader elected")
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"leader": leaderID,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
