// Package service provides domain services for Ignite.
//
// This file defines the cluster-facing interfaces the check coordinator
// depends on. The cluster server implements them; tests substitute fakes.
//
// @design DS-0201
package service

import (
	"context"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// ClusterView exposes the cluster state the coordinator reads.
//
// Implementations must return consistent values per call; the coordinator
// captures the topology once per run and never refreshes it mid-run.
type ClusterView interface {
	// IsActive reports whether the cluster state permits check operations.
	IsActive() bool

	// Topology returns the current membership view.
	Topology() domain.Topology

	// LocalNode returns this node's own membership record.
	LocalNode() domain.NodeInfo
}

// Dispatcher delivers an inspection request to a remote node and waits
// for its outcome.
//
// Implementations must honor ctx cancellation and deadlines. A non-nil
// error means the node could not be reached or did not answer; findings
// and node-level failures travel inside the returned outcome instead.
type Dispatcher interface {
	Dispatch(ctx context.Context, node domain.NodeInfo, req snapshot.InspectRequest) (*snapshot.NodeOutcome, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, node domain.NodeInfo, req snapshot.InspectRequest) (*snapshot.NodeOutcome, error)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, node domain.NodeInfo, req snapshot.InspectRequest) (*snapshot.NodeOutcome, error) {
	return f(ctx, node, req)
}
