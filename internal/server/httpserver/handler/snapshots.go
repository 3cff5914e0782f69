// Package handler provides HTTP request handlers for the Ignite management API.
package handler

import (
	"net/http"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// handleListSnapshots handles GET /v1/snapshots.
//
// @design DS-0301
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	descs, err := h.registry.ListSnapshots(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	items := make([]SnapshotSummary, 0, len(descs))
	for _, desc := range descs {
		items = append(items, snapshotToSummary(desc))
	}
	h.writeJSON(w, r, http.StatusOK, SnapshotListResponse{
		Items: items,
		Total: len(items),
	})
}

// handleGetSnapshot handles GET /v1/snapshots/{name}.
//
// Returns the full descriptor including baseline and group layout.
//
// @design DS-0301
func (h *Handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	desc, err := h.registry.Snapshot(r.Context(), r.PathValue("name"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, desc)
}

// snapshotToSummary reduces a descriptor to its list form.
func snapshotToSummary(desc *domain.SnapshotDescriptor) SnapshotSummary {
	return SnapshotSummary{
		Name:         desc.Name,
		ID:           desc.ID,
		CreatedAt:    desc.CreatedAt,
		ClusterEpoch: desc.ClusterEpoch,
		Nodes:        len(desc.Baseline),
		Groups:       len(desc.Groups),
	}
}
