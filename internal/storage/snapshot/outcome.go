// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"sort"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// PartitionRecord is one node's reading of one partition: the update counter
// extracted from the partition meta page after every page of the file passed
// checksum validation. Immutable once produced.
type PartitionRecord struct {
	Key domain.PartitionKey `json:"key"`

	// UpdateCounter is the partition's mutation count, the cross-replica
	// consistency fingerprint.
	UpdateCounter uint64 `json:"update_counter"`

	// EntryCount is the stored entry count from the meta page.
	EntryCount uint64 `json:"entry_count"`

	// Pages is the number of pages validated in the partition file.
	Pages uint32 `json:"pages"`
}

// Failure is a node-level verification failure in transportable form.
// Code carries the domain error code when the cause was a DomainError;
// Message preserves the full cause chain for diagnostics.
type Failure struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewFailure captures an error as a transportable failure.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{
		Code:    domain.GetErrorCode(err),
		Message: err.Error(),
	}
}

// String returns the failure rendered for reports and logs.
func (f *Failure) String() string {
	return f.Message
}

// NodeOutcome is the result of inspecting one snapshot on one node: either a
// node-level Failure, or a set of PartitionRecords plus accumulated
// missing-group, missing-metadata and missing-partition findings. Findings
// are data, not errors; only the aggregator can judge their significance.
//
// Exactly one outcome exists per participating node per run. The producing
// node hands it to the coordinator, which consumes it exactly once.
type NodeOutcome struct {
	NodeID       domain.NodeID `json:"node_id"`
	SnapshotName string        `json:"snapshot_name"`

	// Failure, when set, invalidates every other field except NodeID and
	// SnapshotName: the node's inspection was abandoned.
	Failure *Failure `json:"failure,omitempty"`

	Records []PartitionRecord `json:"records,omitempty"`

	// MissingGroups lists expected cache group names absent on this node.
	MissingGroups []string `json:"missing_groups,omitempty"`

	// MissingMetadata lists metafile paths, relative to the snapshot
	// directory, that were absent or failed validation.
	MissingMetadata []string `json:"missing_metadata,omitempty"`

	// MissingPartitions lists expected partitions absent on this node.
	MissingPartitions []domain.PartitionKey `json:"missing_partitions,omitempty"`
}

// Failed reports whether the node's inspection ended in a node-level failure.
func (o *NodeOutcome) Failed() bool {
	return o.Failure != nil
}

// normalize sorts records and findings for deterministic transport and
// comparison. Outcomes for an unchanged snapshot compare structurally equal
// across runs.
func (o *NodeOutcome) normalize() {
	sort.Slice(o.Records, func(i, j int) bool { return o.Records[i].Key.Less(o.Records[j].Key) })
	sort.Strings(o.MissingGroups)
	sort.Strings(o.MissingMetadata)
	sort.Slice(o.MissingPartitions, func(i, j int) bool {
		return o.MissingPartitions[i].Less(o.MissingPartitions[j])
	})
}
