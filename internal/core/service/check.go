// Package service provides domain services for Ignite.
//
// CheckService coordinates cluster-wide snapshot verification.
//
// @req RQ-0201
// @design DS-0201
package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
	"github.com/bradthebeeble/ignite/internal/telemetry/metric"
	"github.com/bradthebeeble/ignite/pkg/cmap"
)

// DefaultNodeTimeout bounds how long the coordinator waits for one
// participant before recording a timeout failure for it.
const DefaultNodeTimeout = 5 * time.Minute

// CheckConfig configures the CheckService.
type CheckConfig struct {
	// NodeTimeout bounds the wait for each participant.
	// Zero applies DefaultNodeTimeout.
	NodeTimeout time.Duration

	// Logger receives coordinator logs; nil uses slog.Default().
	Logger *slog.Logger

	// Metrics records run counters; nil uses a no-op registry.
	Metrics *metric.Registry
}

// CheckService coordinates cluster-wide snapshot verification runs.
//
// A run captures the topology once at start, derives each participant's
// expected partitions from the placement recorded at snapshot time, then
// fans inspection requests out to every online participant. The
// coordinator's own node is inspected in-process and never crosses the
// dispatcher. Participant failures become per-node entries in the
// verdict; they never abort the run.
type CheckService struct {
	cluster    ClusterView
	registry   *SnapshotRegistry
	inspector  *InspectorService
	dispatcher Dispatcher

	nodeTimeout time.Duration
	runs        *cmap.Map[string, *Run]
	log         *slog.Logger
	metrics     *metric.Registry
}

// NewCheckService creates the verification coordinator.
func NewCheckService(cluster ClusterView, registry *SnapshotRegistry, inspector *InspectorService, dispatcher Dispatcher, cfg CheckConfig) *CheckService {
	timeout := cfg.NodeTimeout
	if timeout <= 0 {
		timeout = DefaultNodeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.NewNop()
	}
	return &CheckService{
		cluster:     cluster,
		registry:    registry,
		inspector:   inspector,
		dispatcher:  dispatcher,
		nodeTimeout: timeout,
		runs:        cmap.New[string, *Run](),
		log:         logger,
		metrics:     metrics,
	}
}

// CheckRequest contains parameters for starting a verification run.
type CheckRequest struct {
	// SnapshotName is the snapshot to verify. Required.
	SnapshotName string
}

// Check starts an asynchronous verification of the named snapshot and
// returns its run handle. Concurrent runs are isolated from each other;
// checking the same snapshot twice yields two runs with structurally
// equal verdicts.
//
// @req RQ-0201
func (s *CheckService) Check(ctx context.Context, req *CheckRequest) (*Run, error) {
	// 1. Validate the name before touching any state.
	if err := domain.ValidateSnapshotName(req.SnapshotName); err != nil {
		return nil, err
	}

	// 2. Gate on cluster state.
	if !s.cluster.IsActive() {
		return nil, domain.ErrClusterInactive.WithDetails("snapshot check requires an active cluster")
	}

	// 3. Resolve the descriptor: catalog first, local metafile fallback.
	desc, err := s.resolveDescriptor(ctx, req.SnapshotName)
	if err != nil {
		return nil, err
	}

	// 4. Capture the topology once; membership changes cannot race the run.
	topo := s.cluster.Topology()

	// 5. Plan per-node expectations from snapshot-time placement.
	opID, err := domain.GenerateOperationID()
	if err != nil {
		return nil, err
	}
	plan := buildPlan(desc, topo, opID)
	if len(plan) == 0 {
		return nil, domain.ErrServiceUnavailable.WithDetails("no eligible participant online for snapshot " + desc.Name)
	}

	// 6. Register the run and detach from the caller's context.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := newRun(opID, req.SnapshotName, cancel)
	s.runs.Set(opID, run)

	s.metrics.ChecksStarted.Inc()
	s.metrics.ChecksActive.Inc()
	s.log.Info("check started",
		"operation", opID,
		"snapshot", req.SnapshotName,
		"participants", len(plan),
		"epoch", topo.Epoch)

	go s.execute(runCtx, run, desc, topo, plan)

	return run, nil
}

// resolveDescriptor loads the snapshot descriptor from the catalog,
// falling back to this node's descriptor metafile. A fallback hit is
// registered so subsequent runs take the catalog path.
func (s *CheckService) resolveDescriptor(ctx context.Context, name string) (*domain.SnapshotDescriptor, error) {
	desc, err := s.registry.Snapshot(ctx, name)
	if err == nil {
		return desc, nil
	}
	if !domain.IsDomainError(err, domain.ErrSnapshotNotFound.Code) {
		return nil, err
	}

	layout := s.inspector.Layout()
	if !layout.Exists(name) {
		return nil, domain.ErrSnapshotNotFound.WithDetails(name)
	}
	desc, err = snapshot.ReadDescriptor(layout.DescriptorPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound.WithDetails(name)
		}
		return nil, domain.ErrMetafileCorrupt.WithCause(err)
	}

	if err := s.registry.RegisterSnapshot(ctx, desc); err != nil {
		s.log.Warn("descriptor registration failed", "snapshot", name, "error", err)
	}
	return desc, nil
}

// buildPlan computes each online node's expectations from the placement
// recorded at snapshot time. Placement derives from the snapshot's
// baseline topology, so a node is asked for exactly the partitions it
// held when the snapshot was taken. Baseline nodes that are offline now
// do not participate; their partitions are still covered by any online
// replica holder.
func buildPlan(desc *domain.SnapshotDescriptor, topo domain.Topology, operationID string) map[domain.NodeID]snapshot.InspectRequest {
	expectations := make(map[domain.NodeID][]snapshot.GroupExpectation)

	for _, g := range desc.Groups {
		eligible := domain.EligibleNodes(desc.Baseline, g)
		if len(eligible) == 0 {
			continue
		}
		affinity := domain.NewAffinity(g.Backups)
		for node, parts := range affinity.Assignments(g, eligible) {
			if !topo.Contains(node) {
				continue
			}
			expectations[node] = append(expectations[node], snapshot.GroupExpectation{
				ID:         g.ID,
				Name:       g.Name,
				Partitions: parts,
			})
		}
	}

	plan := make(map[domain.NodeID]snapshot.InspectRequest, len(expectations))
	for node, groups := range expectations {
		sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
		plan[node] = snapshot.InspectRequest{
			OperationID:  operationID,
			SnapshotName: desc.Name,
			Groups:       groups,
		}
	}
	return plan
}

// execute drives one run to its terminal state.
func (s *CheckService) execute(ctx context.Context, run *Run, desc *domain.SnapshotDescriptor, topo domain.Topology, plan map[domain.NodeID]snapshot.InspectRequest) {
	defer func() {
		s.metrics.ChecksActive.Dec()
		s.metrics.CheckDuration.Observe(time.Since(run.Started).Seconds())
	}()

	local := s.cluster.LocalNode().ID

	var (
		mu       sync.Mutex
		outcomes = make([]*snapshot.NodeOutcome, 0, len(plan))
	)

	g, gctx := errgroup.WithContext(ctx)
	for nodeID, req := range plan {
		node, ok := topo.Node(nodeID)
		if !ok {
			continue
		}
		req := req
		g.Go(func() error {
			outcome := s.collect(gctx, local, node, req)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; participant failures ride in outcomes.
	_ = g.Wait()

	if ctx.Err() != nil {
		run.complete(StatusCancelled, nil, domain.ErrCheckCancelled)
		s.persist(run)
		s.metrics.ChecksCompleted.WithLabelValues("cancelled").Inc()
		s.log.Info("check cancelled", "operation", run.ID, "snapshot", run.Snapshot)
		return
	}

	verdict := snapshot.Aggregate(desc.Name, outcomes)
	run.complete(StatusCompleted, verdict, nil)
	s.persist(run)

	result := "clean"
	if !verdict.Clean {
		result = "issues"
	}
	s.metrics.ChecksCompleted.WithLabelValues(result).Inc()
	s.metrics.ConflictsFound.Add(float64(len(verdict.Conflicts)))

	s.log.Info("check completed",
		"operation", run.ID,
		"snapshot", run.Snapshot,
		"nodes", verdict.Nodes,
		"failures", len(verdict.Failures),
		"conflicts", len(verdict.Conflicts),
		"clean", verdict.Clean)
}

// collect obtains one participant's outcome. The coordinator's own node
// is inspected in-process; only remote participants cross the dispatcher.
func (s *CheckService) collect(ctx context.Context, local domain.NodeID, node domain.NodeInfo, req snapshot.InspectRequest) *snapshot.NodeOutcome {
	nodeCtx, cancel := context.WithTimeout(ctx, s.nodeTimeout)
	defer cancel()

	var (
		outcome *snapshot.NodeOutcome
		err     error
	)
	if node.ID == local {
		outcome, err = s.inspector.Inspect(nodeCtx, req)
	} else {
		outcome, err = s.dispatcher.Dispatch(nodeCtx, node, req)
	}
	if err == nil {
		return outcome
	}

	failure := domain.ErrNodeUnreachable.WithDetails(string(node.ID)).WithCause(err)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		failure = domain.ErrNodeTimedOut.WithDetails(string(node.ID))
	}
	s.log.Warn("participant failed",
		"operation", req.OperationID,
		"node", node.ID,
		"error", err)

	return &snapshot.NodeOutcome{
		NodeID:       node.ID,
		SnapshotName: req.SnapshotName,
		Failure:      snapshot.NewFailure(failure),
	}
}

// persist writes the run's terminal record, then retires the live
// handle. Lookups hit the live table first, so the record is stored
// before the handle disappears.
func (s *CheckService) persist(run *Run) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.registry.StoreRecord(ctx, run.Record()); err != nil {
		s.log.Error("check record persistence failed", "operation", run.ID, "error", err)
		return
	}
	s.runs.Delete(run.ID)
}

// Run returns the live handle for a still-running operation.
func (s *CheckService) Run(id string) (*Run, bool) {
	return s.runs.Get(id)
}

// Operation resolves an operation id to its current record: live runs
// first, then the persisted history.
func (s *CheckService) Operation(ctx context.Context, id string) (*CheckRecord, error) {
	if run, ok := s.runs.Get(id); ok {
		return run.Record(), nil
	}
	return s.registry.Record(ctx, id)
}

// Operations lists all known operations in chronological order, with
// live state taking precedence over persisted history.
func (s *CheckService) Operations(ctx context.Context) ([]*CheckRecord, error) {
	recs, err := s.registry.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*CheckRecord, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
	}
	s.runs.Range(func(id string, run *Run) bool {
		byID[id] = run.Record()
		return true
	})

	out := make([]*CheckRecord, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CancelOperation cancels a running operation. Cancelling an operation
// that already finished is a no-op.
func (s *CheckService) CancelOperation(ctx context.Context, id string) error {
	if run, ok := s.runs.Get(id); ok {
		run.Cancel()
		return nil
	}
	// Finished operations are only in the history.
	if _, err := s.registry.Record(ctx, id); err != nil {
		return err
	}
	return nil
}
