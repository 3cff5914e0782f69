// Package domain defines the core domain models for Ignite.
package domain

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spaolacci/murmur3"
)

// Snapshot constraints.
const (
	MaxSnapshotNameLength = 255
	MaxGroupNameLength    = 128

	// DefaultBackups is the default number of backup copies per partition.
	DefaultBackups = 1
)

var snapshotNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// PartitionKey uniquely identifies one partition of one cache group.
// It is the addressing unit for missing-partition findings and
// cross-replica counter comparison.
//
// @req RQ-0101
type PartitionKey struct {
	// GroupID is the numeric cache group identifier.
	GroupID uint32 `json:"group_id"`

	// PartitionID is the partition index within the group.
	PartitionID uint32 `json:"partition_id"`
}

// String renders the key for logs and reports.
func (k PartitionKey) String() string {
	return fmt.Sprintf("grp=%d part=%d", k.GroupID, k.PartitionID)
}

// Less orders keys by (group, partition) for stable report output.
func (k PartitionKey) Less(o PartitionKey) bool {
	if k.GroupID != o.GroupID {
		return k.GroupID < o.GroupID
	}
	return k.PartitionID < o.PartitionID
}

// GroupDescriptor describes one cache group included in a snapshot.
type GroupDescriptor struct {
	// ID is the numeric group identifier derived from the name.
	ID uint32 `json:"id"`

	// Name is the cache group name; the snapshot directory name derives from it.
	Name string `json:"name"`

	// Partitions is the partition count configured for the group.
	Partitions uint32 `json:"partitions"`

	// Backups is the number of backup copies per partition.
	Backups int `json:"backups"`

	// NodeFilter restricts which nodes may hold this group's data.
	// Format: "attribute=value"; empty means all nodes are eligible.
	NodeFilter string `json:"node_filter,omitempty"`
}

// Validate checks group descriptor fields.
func (g GroupDescriptor) Validate() error {
	if g.Name == "" {
		return ErrInvalidArgument.WithDetails("group name is empty")
	}
	if len(g.Name) > MaxGroupNameLength {
		return ErrInvalidArgument.WithDetails("group name too long")
	}
	if g.Partitions == 0 {
		return ErrInvalidArgument.WithDetails("group partition count is zero")
	}
	if g.Backups < 0 {
		return ErrInvalidArgument.WithDetails("group backups is negative")
	}
	if g.NodeFilter != "" {
		if _, err := ParseNodeFilter(g.NodeFilter); err != nil {
			return err
		}
	}
	return nil
}

// GroupIDFor derives the numeric group id from a group name.
// The mapping is stable across nodes and restarts.
func GroupIDFor(name string) uint32 {
	return murmur3.Sum32([]byte(name))
}

// NewGroupDescriptor builds a descriptor with the derived id.
func NewGroupDescriptor(name string, partitions uint32, backups int, nodeFilter string) GroupDescriptor {
	return GroupDescriptor{
		ID:         GroupIDFor(name),
		Name:       name,
		Partitions: partitions,
		Backups:    backups,
		NodeFilter: nodeFilter,
	}
}

// SnapshotDescriptor is the immutable identity of a named snapshot: which
// cache groups it contains, at which cluster epoch it was taken, and the
// baseline topology recorded at creation time. Verification reads it, never
// writes it.
//
// @req RQ-0101
// @design DS-0101
type SnapshotDescriptor struct {
	// Name is the snapshot name, unique within the cluster.
	Name string `json:"name"`

	// ID is the creation operation id (ULID).
	ID string `json:"id"`

	// CreatedAt is the creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// ClusterEpoch is the baseline topology epoch the snapshot was taken at.
	ClusterEpoch uint64 `json:"cluster_epoch"`

	// Baseline is the server topology recorded at creation time.
	Baseline []NodeInfo `json:"baseline"`

	// Groups are the cache groups included in the snapshot.
	Groups []GroupDescriptor `json:"groups"`
}

// Validate checks descriptor invariants.
func (d *SnapshotDescriptor) Validate() error {
	if err := ValidateSnapshotName(d.Name); err != nil {
		return err
	}
	if len(d.Groups) == 0 {
		return ErrInvalidArgument.WithDetails("snapshot contains no cache groups")
	}
	seen := make(map[uint32]struct{}, len(d.Groups))
	for _, g := range d.Groups {
		if err := g.Validate(); err != nil {
			return err
		}
		if _, dup := seen[g.ID]; dup {
			return ErrInvalidArgument.WithDetails("duplicate cache group " + g.Name)
		}
		seen[g.ID] = struct{}{}
	}
	return nil
}

// Group returns the descriptor of the group with the given id.
func (d *SnapshotDescriptor) Group(id uint32) (GroupDescriptor, bool) {
	for _, g := range d.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return GroupDescriptor{}, false
}

// GroupName resolves a group id to its name; falls back to the numeric id.
func (d *SnapshotDescriptor) GroupName(id uint32) string {
	if g, ok := d.Group(id); ok {
		return g.Name
	}
	return fmt.Sprintf("%d", id)
}

// GroupIDs returns the included group ids in ascending order.
func (d *SnapshotDescriptor) GroupIDs() []uint32 {
	ids := make([]uint32, 0, len(d.Groups))
	for _, g := range d.Groups {
		ids = append(ids, g.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ValidateSnapshotName checks snapshot naming rules: non-empty, bounded
// length, leading alphanumeric, then alphanumerics, underscores and dashes.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return ErrSnapshotNameInvalid.WithDetails("name is empty")
	}
	if len(name) > MaxSnapshotNameLength {
		return ErrSnapshotNameInvalid.WithDetails("name too long")
	}
	if !snapshotNameRe.MatchString(name) {
		return ErrSnapshotNameInvalid.WithDetails("name must match [a-zA-Z0-9][a-zA-Z0-9_-]*")
	}
	return nil
}
