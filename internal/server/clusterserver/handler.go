// Package clusterserver provides RPC handlers for cluster communication.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	clusterv1 "github.com/bradthebeeble/ignite/api/cluster/v1"
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/core/service"
)

// Handler implements the VerifyService RPC handlers.
//
// This connects the Connect RPC layer with the node-local inspector.
type Handler struct {
	server    *Server
	inspector *service.InspectorService
	logger    *slog.Logger
}

// NewHandler creates a new RPC handler.
func NewHandler(server *Server, inspector *service.InspectorService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		server:    server,
		inspector: inspector,
		logger:    logger,
	}
}

// Inspect handles the Inspect RPC.
//
// Runs a node-local snapshot inspection on behalf of a remote check
// coordinator. Inspection findings - missing pieces, corrupt pages,
// absent snapshots - travel inside the outcome, not as RPC errors: the
// coordinator records them against this node either way. RPC errors are
// reserved for invalid requests and cancellation.
func (h *Handler) Inspect(
	ctx context.Context,
	req *connect.Request[clusterv1.InspectRequest],
) (*connect.Response[clusterv1.InspectResponse], error) {
	h.logger.Info("inspect request received",
		"operation_id", req.Msg.OperationID,
		"snapshot", req.Msg.SnapshotName,
		"groups", len(req.Msg.Groups),
		"peer", req.Peer().Addr)

	outcome, err := h.inspector.Inspect(ctx, inspectRequestFromWire(req.Msg))
	if err != nil {
		h.logger.Warn("inspect request rejected",
			"operation_id", req.Msg.OperationID,
			"snapshot", req.Msg.SnapshotName,
			"error", err)
		return nil, connect.NewError(connectCodeFor(err), err)
	}

	return connect.NewResponse(&clusterv1.InspectResponse{
		Outcome: outcomeToWire(outcome),
	}), nil
}

// Meta handles the Meta RPC.
//
// Reports node identity and control-plane status.
func (h *Handler) Meta(
	ctx context.Context,
	req *connect.Request[clusterv1.MetaRequest],
) (*connect.Response[clusterv1.MetaResponse], error) {
	h.logger.Debug("meta request received", "from", req.Msg.NodeID)

	return connect.NewResponse(&clusterv1.MetaResponse{
		NodeID:        h.server.cfg.NodeID,
		IsLeader:      h.server.IsLeader(),
		ClusterActive: h.server.IsActive(),
		Timestamp:     time.Now().Unix(),
	}), nil
}

// connectCodeFor maps inspection errors onto Connect codes.
func connectCodeFor(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	}

	switch domain.GetErrorCode(err) {
	case domain.ErrSnapshotNameInvalid.Code,
		domain.ErrInvalidArgument.Code,
		domain.ErrMissingArgument.Code:
		return connect.CodeInvalidArgument
	case domain.ErrSnapshotNotFound.Code:
		return connect.CodeNotFound
	default:
		return connect.CodeInternal
	}
}
