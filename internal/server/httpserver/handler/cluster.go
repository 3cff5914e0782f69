// Package handler provides HTTP request handlers for the Ignite management API.
package handler

import (
	"net/http"
)

// handleClusterInfo handles GET /v1/cluster.
//
// Combines the live gossip membership with the raft-replicated state:
// ACTIVE flag, baseline topology and registered cache groups.
//
// @design DS-0301
func (h *Handler) handleClusterInfo(w http.ResponseWriter, r *http.Request) {
	state := h.cluster.State()
	leaderID, leaderAddr := h.cluster.Leader()

	h.writeJSON(w, r, http.StatusOK, ClusterInfoResponse{
		Active:        state.Active,
		LeaderID:      leaderID,
		LeaderAddr:    leaderAddr,
		BaselineEpoch: state.BaselineEpoch,
		Members:       h.cluster.Members(),
		Baseline:      state.Baseline,
		Groups:        state.GroupList(),
	})
}

// handleActivate handles POST /v1/cluster/activate.
//
// Leader only; followers answer 409 naming the current leader.
//
// @design DS-0301
func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	if err := h.cluster.Activate(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ActivationResponse{Active: true})
}

// handleDeactivate handles POST /v1/cluster/deactivate.
//
// @design DS-0301
func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.cluster.Deactivate(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ActivationResponse{Active: false})
}

// handleSetBaseline handles POST /v1/cluster/baseline.
//
// Pins the baseline to the current live topology, the same shape the
// control CLI drives. Leader only.
//
// @design DS-0301
func (h *Handler) handleSetBaseline(w http.ResponseWriter, r *http.Request) {
	topo := h.cluster.Topology()

	if err := h.cluster.SetBaseline(r.Context(), topo.Nodes); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	state := h.cluster.State()
	h.writeJSON(w, r, http.StatusOK, BaselineResponse{
		BaselineEpoch: state.BaselineEpoch,
		Nodes:         len(state.Baseline),
	})
}
