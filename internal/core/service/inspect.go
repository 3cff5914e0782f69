// Package service provides domain services for Ignite.
//
// InspectorService wraps the node-local snapshot inspector with
// duplicate suppression.
//
// @req RQ-0201
// @design DS-0201
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// InspectorService executes node-local snapshot inspections.
//
// Concurrent inspections of the same snapshot on one node collapse into
// a single walk: the first caller drives the disk reads and every caller
// joining the flight shares its outcome. Two concurrent check runs over
// the same snapshot derive identical expectations from the descriptor,
// so sharing is sound. The shared walk runs under the first caller's
// context; if that caller is cancelled, joined callers observe the
// cancellation error as well.
type InspectorService struct {
	inspector *snapshot.Inspector
	flights   singleflight.Group
	log       *slog.Logger
}

// NewInspectorService creates an InspectorService.
func NewInspectorService(inspector *snapshot.Inspector, logger *slog.Logger) *InspectorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InspectorService{
		inspector: inspector,
		log:       logger,
	}
}

// Layout returns the snapshot directory layout the inspector walks.
func (s *InspectorService) Layout() snapshot.Layout {
	return s.inspector.Layout()
}

// Inspect walks the named snapshot and returns this node's outcome.
//
// @req RQ-0201
func (s *InspectorService) Inspect(ctx context.Context, req snapshot.InspectRequest) (*snapshot.NodeOutcome, error) {
	if err := domain.ValidateSnapshotName(req.SnapshotName); err != nil {
		return nil, err
	}

	v, err, shared := s.flights.Do(req.SnapshotName, func() (any, error) {
		return s.inspector.Inspect(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("inspection shared with concurrent check",
			"snapshot", req.SnapshotName,
			"operation", req.OperationID)
	}

	return v.(*snapshot.NodeOutcome), nil
}
