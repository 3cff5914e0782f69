// Package service provides domain services for Ignite.
//
// SnapshotRegistry persists the snapshot descriptor catalog and the
// check operation history in the node-local metastore.
//
// Key layout:
//
//	snapshot/<name>   -> SnapshotDescriptor JSON
//	check/<operation> -> CheckRecord JSON
//
// Operation ids embed a ULID, so an ascending prefix scan over check/
// returns records in chronological order and history trimming deletes
// from the front.
//
// @req RQ-0103
// @design DS-0201
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// Metastore key prefixes.
const (
	keyPrefixSnapshot = "snapshot/"
	keyPrefixCheck    = "check/"
)

// DefaultHistoryLimit is the default number of check records retained.
const DefaultHistoryLimit = 100

// CheckRecord is the persisted form of one check operation.
type CheckRecord struct {
	ID         string            `json:"id"`
	Snapshot   string            `json:"snapshot"`
	Status     RunStatus         `json:"status"`
	StartedAt  int64             `json:"started_at"`
	FinishedAt int64             `json:"finished_at,omitempty"`
	Verdict    *snapshot.Verdict `json:"verdict,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorCode  string            `json:"error_code,omitempty"`
}

// SnapshotRegistry stores descriptors and check records.
type SnapshotRegistry struct {
	engine       storage.Engine
	historyLimit int
	log          *slog.Logger
}

// NewSnapshotRegistry creates a registry over the given metastore engine.
// historyLimit bounds retained check records; zero applies the default.
func NewSnapshotRegistry(engine storage.Engine, historyLimit int, logger *slog.Logger) *SnapshotRegistry {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotRegistry{
		engine:       engine,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// ============================================================================
// Snapshot Descriptor Catalog
// ============================================================================

// RegisterSnapshot stores (or refreshes) a snapshot descriptor.
func (r *SnapshotRegistry) RegisterSnapshot(ctx context.Context, desc *domain.SnapshotDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(desc)
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}

	if err := r.engine.Set(ctx, []byte(keyPrefixSnapshot+desc.Name), data); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Snapshot returns the registered descriptor for the given name.
func (r *SnapshotRegistry) Snapshot(ctx context.Context, name string) (*domain.SnapshotDescriptor, error) {
	data, err := r.engine.Get(ctx, []byte(keyPrefixSnapshot+name))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, domain.ErrSnapshotNotFound.WithDetails(name)
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}

	var desc domain.SnapshotDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &desc, nil
}

// ListSnapshots returns all registered descriptors, sorted by name.
func (r *SnapshotRegistry) ListSnapshots(ctx context.Context) ([]*domain.SnapshotDescriptor, error) {
	var (
		descs   []*domain.SnapshotDescriptor
		decodeE error
	)
	err := r.engine.Scan(ctx, []byte(keyPrefixSnapshot), func(_, value []byte) bool {
		var desc domain.SnapshotDescriptor
		if err := json.Unmarshal(value, &desc); err != nil {
			decodeE = err
			return false
		}
		descs = append(descs, &desc)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if decodeE != nil {
		return nil, domain.ErrStorageError.WithCause(decodeE)
	}
	return descs, nil
}

// ============================================================================
// Check Operation History
// ============================================================================

// StoreRecord persists a check record and trims history beyond the limit.
func (r *SnapshotRegistry) StoreRecord(ctx context.Context, rec *CheckRecord) error {
	if rec.ID == "" {
		return domain.ErrMissingArgument.WithDetails("check record id is empty")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}

	if err := r.engine.Set(ctx, []byte(keyPrefixCheck+rec.ID), data); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	if err := r.trimHistory(ctx); err != nil {
		// Trimming is housekeeping; the record itself is stored.
		r.log.Warn("check history trim failed", "error", err)
	}
	return nil
}

// Record returns the persisted check record for the given operation id.
func (r *SnapshotRegistry) Record(ctx context.Context, operationID string) (*CheckRecord, error) {
	data, err := r.engine.Get(ctx, []byte(keyPrefixCheck+operationID))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, domain.ErrCheckNotFound.WithDetails(operationID)
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}

	var rec CheckRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &rec, nil
}

// ListRecords returns persisted check records in chronological order.
func (r *SnapshotRegistry) ListRecords(ctx context.Context) ([]*CheckRecord, error) {
	var (
		recs    []*CheckRecord
		decodeE error
	)
	err := r.engine.Scan(ctx, []byte(keyPrefixCheck), func(_, value []byte) bool {
		var rec CheckRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			decodeE = err
			return false
		}
		recs = append(recs, &rec)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if decodeE != nil {
		return nil, domain.ErrStorageError.WithCause(decodeE)
	}
	return recs, nil
}

// trimHistory deletes the oldest check records beyond the history limit.
func (r *SnapshotRegistry) trimHistory(ctx context.Context) error {
	var keys []string
	err := r.engine.Scan(ctx, []byte(keyPrefixCheck), func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	if err != nil {
		return err
	}

	excess := len(keys) - r.historyLimit
	for i := 0; i < excess; i++ {
		if err := r.engine.Delete(ctx, []byte(keys[i])); err != nil {
			return err
		}
		r.log.Debug("trimmed check record", "key", keys[i])
	}
	return nil
}
