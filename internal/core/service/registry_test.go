// Package service provides domain services for Ignite.
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/memory"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

func newTestRegistry(t *testing.T, historyLimit int) *SnapshotRegistry {
	t.Helper()
	engine := memory.New()
	t.Cleanup(func() { engine.Close() })
	return NewSnapshotRegistry(engine, historyLimit, discardLogger())
}

func TestRegistry_SnapshotRoundTrip(t *testing.T) {
	reg := newTestRegistry(t, 0)
	ctx := context.Background()

	desc := testDescriptor("daily", testNodes(2))
	if err := reg.RegisterSnapshot(ctx, desc); err != nil {
		t.Fatalf("RegisterSnapshot: %v", err)
	}

	got, err := reg.Snapshot(ctx, "daily")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Name != desc.Name || got.ClusterEpoch != desc.ClusterEpoch {
		t.Fatalf("Snapshot = %+v, want %+v", got, desc)
	}
	if len(got.Groups) != len(desc.Groups) || got.Groups[0].ID != desc.Groups[0].ID {
		t.Fatalf("groups = %+v, want %+v", got.Groups, desc.Groups)
	}
}

func TestRegistry_SnapshotNotFound(t *testing.T) {
	reg := newTestRegistry(t, 0)

	_, err := reg.Snapshot(context.Background(), "absent")
	if !domain.IsDomainError(err, domain.ErrSnapshotNotFound.Code) {
		t.Fatalf("Snapshot err = %v, want %v", err, domain.ErrSnapshotNotFound)
	}
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	reg := newTestRegistry(t, 0)

	desc := testDescriptor("daily", testNodes(2))
	desc.Groups = nil
	err := reg.RegisterSnapshot(context.Background(), desc)
	if !domain.IsDomainError(err, domain.ErrInvalidArgument.Code) {
		t.Fatalf("RegisterSnapshot err = %v, want %v", err, domain.ErrInvalidArgument)
	}
}

func TestRegistry_ListSnapshots(t *testing.T) {
	reg := newTestRegistry(t, 0)
	ctx := context.Background()

	for _, name := range []string{"beta", "alpha"} {
		if err := reg.RegisterSnapshot(ctx, testDescriptor(name, testNodes(2))); err != nil {
			t.Fatalf("RegisterSnapshot(%s): %v", name, err)
		}
	}

	descs, err := reg.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("len = %d, want 2", len(descs))
	}
	// Ascending key order from the prefix scan.
	if descs[0].Name != "alpha" || descs[1].Name != "beta" {
		t.Fatalf("order = [%s %s], want [alpha beta]", descs[0].Name, descs[1].Name)
	}
}

func TestRegistry_RecordRoundTrip(t *testing.T) {
	reg := newTestRegistry(t, 0)
	ctx := context.Background()

	rec := &CheckRecord{
		ID:         "igop-00000000000000000000000001",
		Snapshot:   "daily",
		Status:     StatusCompleted,
		StartedAt:  time.Now().UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
		Verdict:    &snapshot.Verdict{SnapshotName: "daily", Nodes: 2, Clean: true},
	}
	if err := reg.StoreRecord(ctx, rec); err != nil {
		t.Fatalf("StoreRecord: %v", err)
	}

	got, err := reg.Record(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Snapshot != "daily" || got.Status != StatusCompleted {
		t.Fatalf("Record = %+v", got)
	}
	if got.Verdict == nil || !got.Verdict.Clean {
		t.Fatalf("verdict lost in roundtrip: %+v", got.Verdict)
	}
}

func TestRegistry_RecordNotFound(t *testing.T) {
	reg := newTestRegistry(t, 0)

	_, err := reg.Record(context.Background(), "igop-00000000000000000000000000")
	if !domain.IsDomainError(err, domain.ErrCheckNotFound.Code) {
		t.Fatalf("Record err = %v, want %v", err, domain.ErrCheckNotFound)
	}
}

func TestRegistry_HistoryTrim(t *testing.T) {
	reg := newTestRegistry(t, 3)
	ctx := context.Background()

	// Operation ids embed ULIDs, so newer records always sort after older
	// ones; the fabricated suffixes keep that property.
	for i := 1; i <= 5; i++ {
		rec := &CheckRecord{
			ID:       fmt.Sprintf("igop-000000000000000000000000%02d", i),
			Snapshot: "daily",
			Status:   StatusCompleted,
		}
		if err := reg.StoreRecord(ctx, rec); err != nil {
			t.Fatalf("StoreRecord %d: %v", i, err)
		}
	}

	recs, err := reg.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("retained %d records, want 3", len(recs))
	}
	// The oldest two were trimmed.
	for i, wantSuffix := range []string{"03", "04", "05"} {
		if recs[i].ID[len(recs[i].ID)-2:] != wantSuffix {
			t.Fatalf("recs[%d] = %s, want suffix %s", i, recs[i].ID, wantSuffix)
		}
	}

	// Trimmed ids are gone.
	_, err = reg.Record(ctx, "igop-00000000000000000000000001")
	if !domain.IsDomainError(err, domain.ErrCheckNotFound.Code) {
		t.Fatalf("trimmed record err = %v, want %v", err, domain.ErrCheckNotFound)
	}
}
