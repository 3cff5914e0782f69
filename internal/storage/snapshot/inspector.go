// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
	"github.com/bradthebeeble/ignite/internal/telemetry/metric"
)

// GroupExpectation names one cache group and the partition indexes the
// inspected node is expected to hold for it. The coordinator computes the
// expectation from the snapshot's recorded baseline and affinity.
type GroupExpectation struct {
	ID         uint32   `json:"id"`
	Name       string   `json:"name"`
	Partitions []uint32 `json:"partitions"`
}

// InspectRequest asks one node to verify its local copy of a snapshot.
type InspectRequest struct {
	// OperationID identifies the verification run for logs and dedup.
	OperationID string `json:"operation_id"`

	SnapshotName string             `json:"snapshot_name"`
	Groups       []GroupExpectation `json:"groups"`
}

// InspectorConfig configures a node-local snapshot inspector.
type InspectorConfig struct {
	// SnapshotsDir is the node's snapshot root directory.
	SnapshotsDir string

	// PageSize is the configured partition file page size.
	PageSize int

	// ReadRatePages bounds page reads per second. Zero disables throttling.
	ReadRatePages int

	// NodeID is stamped on every produced outcome.
	NodeID domain.NodeID

	Logger *slog.Logger

	// Metrics records page counters; nil uses a no-op registry.
	Metrics *metric.Registry
}

// Inspector walks one node's copy of a snapshot and produces a NodeOutcome.
//
// The walk is read-only and sequential: partitions are read file by file and
// pages strictly in page order. Missing groups, metafiles and partitions are
// accumulated so a single walk reports the complete set of findings; a page
// checksum violation abandons the walk with a node-level failure because it
// invalidates confidence in anything read after it.
type Inspector struct {
	layout   Layout
	pageSize int
	limiter  *rate.Limiter
	nodeID   domain.NodeID
	log      *slog.Logger
	metrics  *metric.Registry
}

// NewInspector creates an inspector over the given snapshot root.
func NewInspector(cfg InspectorConfig) (*Inspector, error) {
	if cfg.SnapshotsDir == "" {
		return nil, fmt.Errorf("snapshot: snapshots dir is required")
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = pagestore.DefaultPageSize
	}
	if !pagestore.ValidPageSize(cfg.PageSize) {
		return nil, fmt.Errorf("snapshot: page size %d: %w", cfg.PageSize, pagestore.ErrInvalidPageSize)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.ReadRatePages > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ReadRatePages), cfg.ReadRatePages)
	}

	return &Inspector{
		layout:   NewLayout(cfg.SnapshotsDir),
		pageSize: cfg.PageSize,
		limiter:  limiter,
		nodeID:   cfg.NodeID,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Layout returns the inspector's snapshot directory layout.
func (in *Inspector) Layout() Layout {
	return in.layout
}

// Inspect verifies the named snapshot against the request's expectations.
//
// The returned outcome carries either findings and partition records or a
// node-level failure; an error return is reserved for invalid requests and
// context cancellation. Inspect never retries: every reported condition is
// deterministic for an unchanged snapshot.
func (in *Inspector) Inspect(ctx context.Context, req InspectRequest) (*NodeOutcome, error) {
	if err := domain.ValidateSnapshotName(req.SnapshotName); err != nil {
		return nil, err
	}

	log := in.log.With("snapshot", req.SnapshotName, "operation", req.OperationID)
	log.Debug("starting local snapshot inspection", "groups", len(req.Groups))

	out := &NodeOutcome{NodeID: in.nodeID, SnapshotName: req.SnapshotName}

	if !in.layout.Exists(req.SnapshotName) {
		out.Failure = NewFailure(domain.ErrSnapshotNotFound.
			WithDetails("no snapshot directory " + in.layout.Dir(req.SnapshotName)))
		log.Warn("snapshot directory missing", "dir", in.layout.Dir(req.SnapshotName))
		return out, nil
	}

	if _, err := ReadDescriptor(in.layout.DescriptorPath(req.SnapshotName)); err != nil {
		out.MissingMetadata = append(out.MissingMetadata, req.SnapshotName+MetafileExtension)
		log.Debug("descriptor metafile missing or invalid", "error", err)
	}

	for _, g := range req.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stat, err := os.Stat(in.layout.GroupDir(req.SnapshotName, g.Name))
		if err != nil || !stat.IsDir() {
			out.MissingGroups = append(out.MissingGroups, g.Name)
			continue
		}

		if _, err := ReadGroupManifest(in.layout.GroupManifestPath(req.SnapshotName, g.Name)); err != nil {
			out.MissingMetadata = append(out.MissingMetadata,
				filepath.Join(groupDirPrefix+g.Name, GroupManifestName))
			log.Debug("group manifest missing or invalid", "group", g.Name, "error", err)
		}

		for _, part := range g.Partitions {
			key := domain.PartitionKey{GroupID: g.ID, PartitionID: part}

			rec, err := in.inspectPartition(ctx, req.SnapshotName, g.Name, key)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				// A corrupt partition abandons the whole node outcome:
				// partial findings from an unreliable walk are dropped.
				out.Failure = NewFailure(escalate(key, err))
				out.Records = nil
				out.MissingGroups = nil
				out.MissingMetadata = nil
				out.MissingPartitions = nil
				log.Warn("partition verification failed", "group", g.Name, "partition", part, "error", err)
				return out, nil
			}
			if rec == nil {
				out.MissingPartitions = append(out.MissingPartitions, key)
				continue
			}
			out.Records = append(out.Records, *rec)
		}
	}

	out.normalize()
	log.Info("local snapshot inspection finished",
		"records", len(out.Records),
		"missing_groups", len(out.MissingGroups),
		"missing_metadata", len(out.MissingMetadata),
		"missing_partitions", len(out.MissingPartitions))
	return out, nil
}

// inspectPartition validates every page of one partition file and extracts
// the update counter from its meta page. A missing file returns (nil, nil).
func (in *Inspector) inspectPartition(ctx context.Context, name, group string, key domain.PartitionKey) (*PartitionRecord, error) {
	path := in.layout.PartitionPath(name, group, key.PartitionID)

	r, err := pagestore.OpenReader(path, in.pageSize)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer r.Close()

	var pagesRead int
	defer func() { in.metrics.PagesRead.Add(float64(pagesRead)) }()

	if err := in.throttle(ctx); err != nil {
		return nil, err
	}
	meta, err := r.Meta()
	if err != nil {
		if errors.Is(err, pagestore.ErrChecksumMismatch) {
			in.metrics.CorruptPages.Inc()
		}
		return nil, err
	}
	pagesRead++

	// Pages validate strictly front-to-back; write-in-progress state is
	// only meaningful in that order.
	for idx := uint32(1); idx < r.PageCount(); idx++ {
		if err := in.throttle(ctx); err != nil {
			return nil, err
		}
		if _, err := r.ReadPage(idx); err != nil {
			if errors.Is(err, pagestore.ErrChecksumMismatch) {
				in.metrics.CorruptPages.Inc()
			}
			return nil, err
		}
		pagesRead++
	}

	return &PartitionRecord{
		Key:           key,
		UpdateCounter: meta.UpdateCounter(),
		EntryCount:    meta.EntryCount(),
		Pages:         r.PageCount(),
	}, nil
}

func (in *Inspector) throttle(ctx context.Context) error {
	if in.limiter == nil {
		return ctx.Err()
	}
	return in.limiter.Wait(ctx)
}

// escalate maps a partition read error to the node-level failure taxonomy.
func escalate(key domain.PartitionKey, err error) error {
	switch {
	case errors.Is(err, pagestore.ErrChecksumMismatch),
		errors.Is(err, pagestore.ErrTruncatedFile),
		errors.Is(err, pagestore.ErrInvalidPageType),
		errors.Is(err, pagestore.ErrPageOutOfRange):
		return domain.ErrCorruptPage.WithDetails(key.String()).WithCause(err)
	default:
		return domain.ErrStorageError.WithDetails(key.String()).WithCause(err)
	}
}
