// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// Report wording. The terminal status lines and finding headers are fixed
// phrases operators grep for; do not rewrite them.
const (
	reportNoConflicts      = "The check procedure has finished, no conflicts have been found."
	reportConflictsFormat  = "The check procedure has finished, found %d conflict partitions."
	reportFailedFormat     = "The check procedure failed on %d node."
	reportFailedManyFormat = "The check procedure failed on %d nodes."

	headerMissingPartition = "Snapshot data doesn't contain required cache group partition"
	headerMissingGroups    = "Snapshot data doesn't contain required cache groups"
	headerMissingMetadata  = "Some metadata is missing from the snapshot"
)

// NodeCounter is one node's update counter for one partition.
type NodeCounter struct {
	NodeID        domain.NodeID `json:"node_id"`
	UpdateCounter uint64        `json:"update_counter"`
}

// CounterConflict records cross-replica update-counter disagreement for one
// partition, with every reporting node's value.
type CounterConflict struct {
	Key      domain.PartitionKey `json:"key"`
	Counters []NodeCounter       `json:"counters"`
}

// PartitionSummary lists every surviving node's counter for one partition,
// conflicting or not. The verbose report itemizes these.
type PartitionSummary struct {
	Key      domain.PartitionKey `json:"key"`
	Counters []NodeCounter       `json:"counters"`
}

// Verdict is the final, immutable result of one verification run. It is
// built once by Aggregate, never mutated afterwards, and safe for
// concurrent reads. All slices are sorted and the failure map marshals with
// sorted keys, so verdicts for an unchanged snapshot are structurally and
// textually reproducible.
//
// @design DS-0201
type Verdict struct {
	SnapshotName string `json:"snapshot_name"`

	// Nodes is the number of participating nodes.
	Nodes int `json:"nodes"`

	// Failures maps failed nodes to their captured failure.
	Failures map[domain.NodeID]*Failure `json:"failures,omitempty"`

	MissingGroups     []string              `json:"missing_groups,omitempty"`
	MissingMetadata   []string              `json:"missing_metadata,omitempty"`
	MissingPartitions []domain.PartitionKey `json:"missing_partitions,omitempty"`

	Conflicts []CounterConflict `json:"conflicts,omitempty"`

	// Partitions summarizes every partition reported by a surviving node.
	Partitions []PartitionSummary `json:"partitions,omitempty"`

	// Clean is true iff no failures, nothing missing and no conflicts.
	Clean bool `json:"clean"`
}

// WriteReport renders the human-readable check report. With verbose set,
// fully clean partitions are itemized as well. The terminal status line
// reflects, in precedence order: node failures, counter conflicts, a
// conflict-free finish.
func (v *Verdict) WriteReport(w io.Writer, verbose bool) error {
	rw := &reportWriter{w: w}

	rw.printf("Snapshot check report [snapshot=%s, nodes=%d]\n", v.SnapshotName, v.Nodes)

	if len(v.Failures) > 0 {
		rw.printf("\nNode failures [count=%d]\n", len(v.Failures))
		for _, id := range sortedFailureIDs(v.Failures) {
			rw.printf("  %s: %s\n", id, v.Failures[id].Message)
		}
	}

	if len(v.MissingGroups) > 0 {
		rw.printf("\n%s [snapshot=%s, groups=[%s]]\n",
			headerMissingGroups, v.SnapshotName, strings.Join(v.MissingGroups, ", "))
	}
	for _, key := range v.MissingPartitions {
		rw.printf("\n%s [snapshot=%s, %s]\n", headerMissingPartition, v.SnapshotName, key)
	}
	if len(v.MissingMetadata) > 0 {
		rw.printf("\n%s [snapshot=%s, files=[%s]]\n",
			headerMissingMetadata, v.SnapshotName, strings.Join(v.MissingMetadata, ", "))
	}

	if len(v.Conflicts) > 0 {
		rw.printf("\nUpdate counter conflicts [count=%d]\n", len(v.Conflicts))
		for _, c := range v.Conflicts {
			rw.printf("  %s: %s\n", c.Key, renderCounters(c.Counters))
		}
	}

	if verbose && len(v.Partitions) > 0 {
		rw.printf("\nPartitions [count=%d]\n", len(v.Partitions))
		for _, p := range v.Partitions {
			rw.printf("  %s: %s\n", p.Key, renderCounters(p.Counters))
		}
	}

	rw.printf("\n%s\n", v.statusLine())
	return rw.err
}

// String renders the non-verbose report.
func (v *Verdict) String() string {
	var sb strings.Builder
	_ = v.WriteReport(&sb, false)
	return sb.String()
}

func (v *Verdict) statusLine() string {
	switch {
	case len(v.Failures) == 1:
		return fmt.Sprintf(reportFailedFormat, 1)
	case len(v.Failures) > 1:
		return fmt.Sprintf(reportFailedManyFormat, len(v.Failures))
	case len(v.Conflicts) > 0:
		return fmt.Sprintf(reportConflictsFormat, len(v.Conflicts))
	default:
		return reportNoConflicts
	}
}

func sortedFailureIDs(failures map[domain.NodeID]*Failure) []domain.NodeID {
	ids := make([]domain.NodeID, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func renderCounters(counters []NodeCounter) string {
	parts := make([]string, 0, len(counters))
	for _, c := range counters {
		parts = append(parts, fmt.Sprintf("%s=%d", c.NodeID, c.UpdateCounter))
	}
	return strings.Join(parts, ", ")
}

// reportWriter accumulates the first write error so report rendering reads
// as straight-line printf calls.
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) printf(format string, args ...any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}
