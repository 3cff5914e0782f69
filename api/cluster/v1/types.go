// Package clusterv1 provides the VerifyService message types.
//
// @design DS-0301
// @design DS-0401
package clusterv1

// GroupExpectation names one cache group a node must inspect and the
// partitions it is expected to hold for that group.
type GroupExpectation struct {
	ID         uint32   `json:"id"`
	Name       string   `json:"name"`
	Partitions []uint32 `json:"partitions"`
}

// InspectRequest asks a node to inspect its local slice of a snapshot.
type InspectRequest struct {
	OperationID  string             `json:"operation_id"`
	SnapshotName string             `json:"snapshot_name"`
	Groups       []GroupExpectation `json:"groups"`
}

// InspectResponse carries the node-local outcome back to the coordinator.
type InspectResponse struct {
	Outcome *NodeOutcome `json:"outcome"`
}

// PartitionKey identifies a partition within a cache group.
type PartitionKey struct {
	GroupID     uint32 `json:"group_id"`
	PartitionID uint32 `json:"partition_id"`
}

// PartitionRecord is the per-partition evidence one node collected.
type PartitionRecord struct {
	Key           PartitionKey `json:"key"`
	UpdateCounter uint64       `json:"update_counter"`
	EntryCount    uint64       `json:"entry_count"`
	Pages         uint32       `json:"pages"`
}

// Failure describes why a node produced no partition records.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NodeOutcome is one node's complete inspection result.
//
// Either Failure is set and every other result field is empty, or the
// records and findings describe what the node saw on disk.
type NodeOutcome struct {
	NodeID            string            `json:"node_id"`
	SnapshotName      string            `json:"snapshot_name"`
	Failure           *Failure          `json:"failure,omitempty"`
	Records           []PartitionRecord `json:"records,omitempty"`
	MissingGroups     []string          `json:"missing_groups,omitempty"`
	MissingMetadata   []string          `json:"missing_metadata,omitempty"`
	MissingPartitions []PartitionKey    `json:"missing_partitions,omitempty"`
}

// MetaRequest asks a node for its identity and control-plane status.
type MetaRequest struct {
	// NodeID is the caller's id, recorded in the target's logs.
	NodeID string `json:"node_id,omitempty"`
}

// MetaResponse reports node identity and control-plane status.
type MetaResponse struct {
	NodeID        string `json:"node_id"`
	IsLeader      bool   `json:"is_leader"`
	ClusterActive bool   `json:"cluster_active"`
	Timestamp     int64  `json:"timestamp"`
}
