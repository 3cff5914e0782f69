package benchmark

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// PartitionCounts defines the partition counts for benchmarking.
var PartitionCounts = []uint32{16, 64, 256}

// NodeCounts defines the cluster sizes for aggregation benchmarks.
var NodeCounts = []int{3, 8, 16}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// benchDescriptor builds a single-group descriptor with the given
// partition count. Backups cover every baseline node so each node is
// expected to hold every partition.
func benchDescriptor(name string, partitions uint32, nodes int) *domain.SnapshotDescriptor {
	baseline := make([]domain.NodeInfo, 0, nodes)
	for i := 0; i < nodes; i++ {
		baseline = append(baseline, domain.NodeInfo{
			ID:      domain.NodeID(fmt.Sprintf("bench-node-%d", i)),
			Address: fmt.Sprintf("127.0.0.1:%d", 47100+i),
		})
	}

	return &domain.SnapshotDescriptor{
		Name:         name,
		ID:           "igop-01jqx0b66mr8r2e5m0vbcqnrjd",
		CreatedAt:    1700000000000,
		ClusterEpoch: 1,
		Baseline:     baseline,
		Groups: []domain.GroupDescriptor{
			domain.NewGroupDescriptor("bench-group", partitions, nodes-1, ""),
		},
	}
}

// benchOutcomes synthesizes one clean outcome per node, each reporting
// every partition with an agreed counter.
func benchOutcomes(desc *domain.SnapshotDescriptor, partitions uint32) []*snapshot.NodeOutcome {
	group := desc.Groups[0]

	outcomes := make([]*snapshot.NodeOutcome, 0, len(desc.Baseline))
	for _, node := range desc.Baseline {
		records := make([]snapshot.PartitionRecord, 0, partitions)
		for p := uint32(0); p < partitions; p++ {
			records = append(records, snapshot.PartitionRecord{
				Key:           domain.PartitionKey{GroupID: group.ID, PartitionID: p},
				UpdateCounter: 1000 + uint64(p),
				EntryCount:    uint64(p) * 10,
				Pages:         8,
			})
		}
		outcomes = append(outcomes, &snapshot.NodeOutcome{
			NodeID:       node.ID,
			SnapshotName: desc.Name,
			Records:      records,
		})
	}
	return outcomes
}
