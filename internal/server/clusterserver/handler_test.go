package clusterserver

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	clusterv1 "github.com/bradthebeeble/ignite/api/cluster/v1"
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/core/service"
	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot/snaptest"
)

// fixtureCounter is the update counter written into every fixture partition.
const fixtureCounter = 10

// fixtureDescriptor describes one 4-partition group held by verify-node.
func fixtureDescriptor(name string) *domain.SnapshotDescriptor {
	return &domain.SnapshotDescriptor{
		Name:         name,
		ID:           "igop-0000000000000000000create",
		CreatedAt:    time.Now().UnixMilli(),
		ClusterEpoch: 1,
		Baseline:     []domain.NodeInfo{{ID: "verify-node", Address: "127.0.0.1:19303"}},
		Groups:       []domain.GroupDescriptor{domain.NewGroupDescriptor("default", 4, 0, "")},
	}
}

// newTestInspector writes a healthy snapshot tree and wraps it in an
// inspector service for verify-node.
func newTestInspector(t *testing.T, desc *domain.SnapshotDescriptor) *service.InspectorService {
	t.Helper()

	root := t.TempDir()
	spec := snaptest.Spec{Descriptor: desc}
	for _, g := range desc.Groups {
		spec.Groups = append(spec.Groups, snaptest.GroupData{
			Group:      g,
			Partitions: snaptest.Partitions(g.Partitions, fixtureCounter, 3, 2),
		})
	}
	snaptest.Write(t, root, spec)

	inspector, err := snapshot.NewInspector(snapshot.InspectorConfig{
		SnapshotsDir: root,
		PageSize:     pagestore.MinPageSize,
		NodeID:       "verify-node",
		Logger:       testLogger(),
	})
	if err != nil {
		t.Fatalf("NewInspector() error = %v", err)
	}

	return service.NewInspectorService(inspector, testLogger())
}

// expectations builds full group expectations from a descriptor.
func expectations(desc *domain.SnapshotDescriptor) []clusterv1.GroupExpectation {
	var out []clusterv1.GroupExpectation
	for _, g := range desc.Groups {
		exp := clusterv1.GroupExpectation{ID: g.ID, Name: g.Name}
		for p := uint32(0); p < g.Partitions; p++ {
			exp.Partitions = append(exp.Partitions, p)
		}
		out = append(out, exp)
	}
	return out
}

// setupHandler creates a handler backed by an unstarted cluster server.
// Inspection never touches Raft or gossip, so nothing needs to bind.
func setupHandler(t *testing.T, inspector *service.InspectorService) *Handler {
	t.Helper()

	cfg := Config{
		NodeID:         "verify-node",
		RaftBindAddr:   "127.0.0.1:19301",
		GossipBindAddr: "127.0.0.1",
		GossipBindPort: 19302,
		RPCListenAddr:  "127.0.0.1:19303",
		RaftDataDir:    t.TempDir(),
		Bootstrap:      true,
		Logger:         testLogger(),
	}

	server, err := NewServer(cfg, inspector)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	return NewHandler(server, inspector, testLogger())
}

func TestHandler_Inspect(t *testing.T) {
	desc := fixtureDescriptor("daily")
	handler := setupHandler(t, newTestInspector(t, desc))

	resp, err := handler.Inspect(context.Background(), connect.NewRequest(&clusterv1.InspectRequest{
		OperationID:  "igop-0000000000000000000check1",
		SnapshotName: "daily",
		Groups:       expectations(desc),
	}))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	out := resp.Msg.Outcome
	if out == nil {
		t.Fatal("outcome is nil")
	}
	if out.Failure != nil {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
	if out.NodeID != "verify-node" {
		t.Errorf("NodeID = %q, want %q", out.NodeID, "verify-node")
	}
	if out.SnapshotName != "daily" {
		t.Errorf("SnapshotName = %q, want %q", out.SnapshotName, "daily")
	}
	if len(out.Records) != 4 {
		t.Fatalf("Records = %d, want 4", len(out.Records))
	}
	for _, r := range out.Records {
		if r.UpdateCounter != fixtureCounter {
			t.Errorf("partition %d counter = %d, want %d", r.Key.PartitionID, r.UpdateCounter, fixtureCounter)
		}
	}
}

func TestHandler_InspectAbsentSnapshot(t *testing.T) {
	desc := fixtureDescriptor("daily")
	handler := setupHandler(t, newTestInspector(t, desc))

	resp, err := handler.Inspect(context.Background(), connect.NewRequest(&clusterv1.InspectRequest{
		OperationID:  "igop-0000000000000000000check2",
		SnapshotName: "nightly",
		Groups:       expectations(desc),
	}))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	// An absent snapshot is a node-level failure inside the outcome, not
	// an RPC error: the aggregator records it against this node.
	failure := resp.Msg.Outcome.Failure
	if failure == nil {
		t.Fatal("expected a failure for an absent snapshot")
	}
	if failure.Code != domain.ErrSnapshotNotFound.Code {
		t.Errorf("Failure.Code = %q, want %q", failure.Code, domain.ErrSnapshotNotFound.Code)
	}
	if len(resp.Msg.Outcome.Records) != 0 {
		t.Errorf("Records = %d, want none on a failed node", len(resp.Msg.Outcome.Records))
	}
}

func TestHandler_InspectMissingPartitionAsPayload(t *testing.T) {
	desc := fixtureDescriptor("daily")
	handler := setupHandler(t, newTestInspector(t, desc))

	// Expect one partition past what the fixture wrote.
	exp := expectations(desc)
	exp[0].Partitions = append(exp[0].Partitions, 4)

	resp, err := handler.Inspect(context.Background(), connect.NewRequest(&clusterv1.InspectRequest{
		OperationID:  "igop-0000000000000000000check3",
		SnapshotName: "daily",
		Groups:       exp,
	}))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	out := resp.Msg.Outcome
	if out.Failure != nil {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
	if len(out.MissingPartitions) != 1 {
		t.Fatalf("MissingPartitions = %v, want one entry", out.MissingPartitions)
	}
	if out.MissingPartitions[0].PartitionID != 4 {
		t.Errorf("missing partition = %d, want 4", out.MissingPartitions[0].PartitionID)
	}
	if len(out.Records) != 4 {
		t.Errorf("Records = %d, want the 4 present partitions", len(out.Records))
	}
}

func TestHandler_InspectInvalidName(t *testing.T) {
	desc := fixtureDescriptor("daily")
	handler := setupHandler(t, newTestInspector(t, desc))

	_, err := handler.Inspect(context.Background(), connect.NewRequest(&clusterv1.InspectRequest{
		OperationID:  "igop-0000000000000000000check4",
		SnapshotName: "../evil",
	}))
	if err == nil {
		t.Fatal("expected an error for an invalid snapshot name")
	}
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want %v", connect.CodeOf(err), connect.CodeInvalidArgument)
	}
}

func TestHandler_Meta(t *testing.T) {
	desc := fixtureDescriptor("daily")
	handler := setupHandler(t, newTestInspector(t, desc))

	resp, err := handler.Meta(context.Background(), connect.NewRequest(&clusterv1.MetaRequest{NodeID: "caller"}))
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}

	if resp.Msg.NodeID != "verify-node" {
		t.Errorf("NodeID = %q, want %q", resp.Msg.NodeID, "verify-node")
	}
	if resp.Msg.IsLeader {
		t.Error("unstarted node reports itself leader")
	}
	if resp.Msg.ClusterActive {
		t.Error("unstarted node reports an active cluster")
	}
	if resp.Msg.Timestamp == 0 {
		t.Error("Timestamp not set")
	}
}
