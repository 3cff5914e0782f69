package snapshot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot/snaptest"
)

func fixtureDescriptor(name string) *domain.SnapshotDescriptor {
	return &domain.SnapshotDescriptor{
		Name:         name,
		ID:           "01HZXK3V5N9QJ4M2P8R6T0WYAB",
		CreatedAt:    1700000000000,
		ClusterEpoch: 1,
		Baseline:     []domain.NodeInfo{{ID: "node-1", Address: "127.0.0.1:7800"}},
		Groups: []domain.GroupDescriptor{
			domain.NewGroupDescriptor("default", 4, 1, ""),
			domain.NewGroupDescriptor("shared", 2, 1, ""),
		},
	}
}

// buildFixture writes a complete snapshot named "daily" with every partition
// of both groups present and counter 10+index.
func buildFixture(t *testing.T) (string, *domain.SnapshotDescriptor) {
	t.Helper()

	root := t.TempDir()
	desc := fixtureDescriptor("daily")

	spec := snaptest.Spec{Descriptor: desc}
	for _, g := range desc.Groups {
		parts := make([]snaptest.PartitionData, 0, g.Partitions)
		for idx := uint32(0); idx < g.Partitions; idx++ {
			parts = append(parts, snaptest.PartitionData{
				Index:   idx,
				Counter: 10 + uint64(idx),
				Entries: uint64(idx),
				Pages:   2,
			})
		}
		spec.Groups = append(spec.Groups, snaptest.GroupData{Group: g, Partitions: parts})
	}
	snaptest.Write(t, root, spec)
	return root, desc
}

func newInspector(t *testing.T, root string) *snapshot.Inspector {
	t.Helper()

	in, err := snapshot.NewInspector(snapshot.InspectorConfig{
		SnapshotsDir: root,
		PageSize:     pagestore.MinPageSize,
		NodeID:       "node-1",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewInspector() error = %v", err)
	}
	return in
}

func expectAll(desc *domain.SnapshotDescriptor) []snapshot.GroupExpectation {
	out := make([]snapshot.GroupExpectation, 0, len(desc.Groups))
	for _, g := range desc.Groups {
		idxs := make([]uint32, 0, g.Partitions)
		for idx := uint32(0); idx < g.Partitions; idx++ {
			idxs = append(idxs, idx)
		}
		out = append(out, snapshot.GroupExpectation{ID: g.ID, Name: g.Name, Partitions: idxs})
	}
	return out
}

func findRecord(records []snapshot.PartitionRecord, key domain.PartitionKey) (snapshot.PartitionRecord, bool) {
	for _, r := range records {
		if r.Key == key {
			return r, true
		}
	}
	return snapshot.PartitionRecord{}, false
}

func TestInspector_Clean(t *testing.T) {
	root, desc := buildFixture(t)
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		OperationID:  "op-1",
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if out.Failed() {
		t.Fatalf("outcome failed: %v", out.Failure)
	}
	if out.NodeID != "node-1" {
		t.Errorf("NodeID = %q, want %q", out.NodeID, "node-1")
	}
	if len(out.MissingGroups)+len(out.MissingMetadata)+len(out.MissingPartitions) != 0 {
		t.Errorf("clean fixture produced findings: %+v", out)
	}
	if got := len(out.Records); got != 6 {
		t.Fatalf("len(Records) = %d, want 6", got)
	}

	key := domain.PartitionKey{GroupID: desc.Groups[0].ID, PartitionID: 2}
	rec, ok := findRecord(out.Records, key)
	if !ok {
		t.Fatalf("no record for %s", key)
	}
	if rec.UpdateCounter != 12 {
		t.Errorf("UpdateCounter = %d, want 12", rec.UpdateCounter)
	}
	if rec.Pages != 3 {
		t.Errorf("Pages = %d, want 3", rec.Pages)
	}
}

func TestInspector_MissingPartition(t *testing.T) {
	root, desc := buildFixture(t)
	snaptest.DeletePartition(t, root, "daily", "default", 1)
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if out.Failed() {
		t.Fatalf("missing partition must be a finding, got failure %v", out.Failure)
	}
	want := domain.PartitionKey{GroupID: desc.Groups[0].ID, PartitionID: 1}
	if len(out.MissingPartitions) != 1 || out.MissingPartitions[0] != want {
		t.Errorf("MissingPartitions = %v, want [%v]", out.MissingPartitions, want)
	}
	if got := len(out.Records); got != 5 {
		t.Errorf("len(Records) = %d, want 5", got)
	}
}

func TestInspector_MissingGroupDir(t *testing.T) {
	root, desc := buildFixture(t)
	snaptest.DeleteGroupDir(t, root, "daily", "shared")
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if out.Failed() {
		t.Fatalf("missing group must be a finding, got failure %v", out.Failure)
	}
	if len(out.MissingGroups) != 1 || out.MissingGroups[0] != "shared" {
		t.Errorf("MissingGroups = %v, want [shared]", out.MissingGroups)
	}
	// A missing group is distinct from missing partitions.
	if len(out.MissingPartitions) != 0 {
		t.Errorf("MissingPartitions = %v, want none", out.MissingPartitions)
	}
	// The surviving group is still fully verified.
	if got := len(out.Records); got != 4 {
		t.Errorf("len(Records) = %d, want 4", got)
	}
}

func TestInspector_MissingMetadata(t *testing.T) {
	root, desc := buildFixture(t)
	snaptest.DeleteGroupManifest(t, root, "daily", "default")
	snaptest.DeleteDescriptor(t, root, "daily")
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if out.Failed() {
		t.Fatalf("missing metadata must be a finding, got failure %v", out.Failure)
	}
	if len(out.MissingMetadata) != 2 {
		t.Fatalf("MissingMetadata = %v, want descriptor and group manifest", out.MissingMetadata)
	}
	// Partition verification proceeds despite missing metafiles.
	if got := len(out.Records); got != 6 {
		t.Errorf("len(Records) = %d, want 6", got)
	}
}

func TestInspector_AccumulatesFindings(t *testing.T) {
	root, desc := buildFixture(t)
	snaptest.DeleteGroupDir(t, root, "daily", "shared")
	snaptest.DeletePartition(t, root, "daily", "default", 3)
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	// One walk reports the complete set of findings.
	if len(out.MissingGroups) != 1 || len(out.MissingPartitions) != 1 {
		t.Errorf("findings = %+v, want one missing group and one missing partition", out)
	}
}

func TestInspector_CorruptPage(t *testing.T) {
	root, desc := buildFixture(t)
	snaptest.CorruptPage(t, root, pagestore.MinPageSize, "daily", "default", 2, 1)
	in := newInspector(t, root)

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "daily",
		Groups:       expectAll(desc),
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !out.Failed() {
		t.Fatal("corrupt page must fail the node outcome")
	}
	if out.Failure.Code != "IG-SNAP-5001" {
		t.Errorf("Failure.Code = %q, want IG-SNAP-5001", out.Failure.Code)
	}
	// The cause chain names the checksum violation.
	if msg := out.Failure.Message; !strings.Contains(msg, "checksum") {
		t.Errorf("Failure.Message = %q, want checksum cause", msg)
	}
	// The abandoned walk carries no partial data.
	if len(out.Records) != 0 || len(out.MissingPartitions) != 0 {
		t.Errorf("failed outcome carries partial data: %+v", out)
	}
}

func TestInspector_MissingRoot(t *testing.T) {
	in := newInspector(t, t.TempDir())

	out, err := in.Inspect(context.Background(), snapshot.InspectRequest{
		SnapshotName: "nope",
		Groups:       nil,
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !out.Failed() {
		t.Fatal("missing snapshot root must fail the node outcome")
	}
	if out.Failure.Code != "IG-SNAP-4040" {
		t.Errorf("Failure.Code = %q, want IG-SNAP-4040", out.Failure.Code)
	}
}

func TestInspector_InvalidName(t *testing.T) {
	in := newInspector(t, t.TempDir())

	_, err := in.Inspect(context.Background(), snapshot.InspectRequest{SnapshotName: "../evil"})
	if !errors.Is(err, domain.ErrSnapshotNameInvalid) {
		t.Errorf("Inspect() error = %v, want ErrSnapshotNameInvalid", err)
	}
}

func TestInspector_ContextCancelled(t *testing.T) {
	root, desc := buildFixture(t)
	in := newInspector(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := in.Inspect(ctx, snapshot.InspectRequest{SnapshotName: "daily", Groups: expectAll(desc)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Inspect() error = %v, want context.Canceled", err)
	}
}

func TestNewInspector_Validation(t *testing.T) {
	if _, err := snapshot.NewInspector(snapshot.InspectorConfig{}); err == nil {
		t.Error("NewInspector() with no dir should fail")
	}
	if _, err := snapshot.NewInspector(snapshot.InspectorConfig{SnapshotsDir: "/tmp", PageSize: 1000}); err == nil {
		t.Error("NewInspector() with bad page size should fail")
	}
}
