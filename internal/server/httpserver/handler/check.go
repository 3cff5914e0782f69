// Package handler provides HTTP request handlers for the Ignite management API.
package handler

import (
	"net/http"

	"github.com/bradthebeeble/ignite/internal/core/service"
)

// handleStartCheck handles POST /v1/snapshots/{name}/check.
//
// Starts an asynchronous verification run and returns its operation id
// immediately. The run keeps executing after this request returns;
// clients poll GET /v1/operations/{id} for the verdict.
//
// @design DS-0301
func (h *Handler) handleStartCheck(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	run, err := h.checkSvc.Check(r.Context(), &service.CheckRequest{SnapshotName: name})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusAccepted, CheckStartedResponse{
		OperationID: run.ID,
		Snapshot:    run.Snapshot,
		Status:      string(run.Status()),
	})
}

// handleGetOperation handles GET /v1/operations/{id}.
//
// Serves live runs first, then the persisted history. Completed runs
// carry the verdict plus its rendered report text.
//
// @design DS-0301
func (h *Handler) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.checkSvc.Operation(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := operationToResponse(rec)
	if rec.Verdict != nil {
		resp.Report = rec.Verdict.String()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleListOperations handles GET /v1/operations.
//
// @design DS-0301
func (h *Handler) handleListOperations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.checkSvc.Operations(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	items := make([]OperationResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, operationToResponse(rec))
	}
	h.writeJSON(w, r, http.StatusOK, OperationListResponse{
		Items: items,
		Total: len(items),
	})
}

// handleCancelOperation handles DELETE /v1/operations/{id}.
//
// Cancellation is asynchronous: the run's participants are interrupted
// and the run settles to its cancelled state shortly after.
//
// @design DS-0301
func (h *Handler) handleCancelOperation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.checkSvc.CancelOperation(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusAccepted, CancelOperationResponse{
		OperationID: id,
		Cancelled:   true,
	})
}

// operationToResponse converts a check record to its API shape. The
// report text is left empty; single-operation reads fill it in.
func operationToResponse(rec *service.CheckRecord) OperationResponse {
	return OperationResponse{
		ID:         rec.ID,
		Snapshot:   rec.Snapshot,
		Status:     string(rec.Status),
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Error:      rec.Error,
		ErrorCode:  rec.ErrorCode,
		Verdict:    rec.Verdict,
	}
}
