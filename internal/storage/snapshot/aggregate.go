// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"sort"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// Aggregate merges the per-node outcomes of one verification run into a
// Verdict. The merge is order-independent: outcomes may arrive in any order
// and structurally equal inputs always produce structurally equal verdicts.
//
// Rules, in report order:
//
//  1. A failed node lands in the failure map and contributes nothing else.
//  2. Missing cache groups reported by any surviving node are unioned.
//  3. Missing metafiles and missing partitions are unioned the same way.
//  4. A partition reported by two or more surviving nodes with disagreeing
//     update counters becomes a counter conflict carrying every reporter's
//     value. A single reporter has nothing to conflict with.
//  5. Clean means no failures, nothing missing and no conflicts.
func Aggregate(name string, outcomes []*NodeOutcome) *Verdict {
	v := &Verdict{SnapshotName: name, Nodes: len(outcomes)}

	groupSet := make(map[string]struct{})
	metaSet := make(map[string]struct{})
	partSet := make(map[domain.PartitionKey]struct{})
	counters := make(map[domain.PartitionKey]map[domain.NodeID]uint64)

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if o.Failed() {
			if v.Failures == nil {
				v.Failures = make(map[domain.NodeID]*Failure)
			}
			v.Failures[o.NodeID] = o.Failure
			continue
		}
		for _, g := range o.MissingGroups {
			groupSet[g] = struct{}{}
		}
		for _, m := range o.MissingMetadata {
			metaSet[m] = struct{}{}
		}
		for _, key := range o.MissingPartitions {
			partSet[key] = struct{}{}
		}
		for _, r := range o.Records {
			byNode := counters[r.Key]
			if byNode == nil {
				byNode = make(map[domain.NodeID]uint64)
				counters[r.Key] = byNode
			}
			byNode[o.NodeID] = r.UpdateCounter
		}
	}

	v.MissingGroups = sortedStrings(groupSet)
	v.MissingMetadata = sortedStrings(metaSet)
	v.MissingPartitions = sortedKeys(partSet)

	for _, key := range sortedCounterKeys(counters) {
		byNode := counters[key]
		summary := PartitionSummary{Key: key, Counters: sortedCounters(byNode)}
		v.Partitions = append(v.Partitions, summary)

		if len(byNode) < 2 || countersAgree(byNode) {
			continue
		}
		v.Conflicts = append(v.Conflicts, CounterConflict{Key: key, Counters: summary.Counters})
	}

	v.Clean = len(v.Failures) == 0 &&
		len(v.MissingGroups) == 0 &&
		len(v.MissingMetadata) == 0 &&
		len(v.MissingPartitions) == 0 &&
		len(v.Conflicts) == 0
	return v
}

func countersAgree(byNode map[domain.NodeID]uint64) bool {
	var first uint64
	init := false
	for _, c := range byNode {
		if !init {
			first = c
			init = true
			continue
		}
		if c != first {
			return false
		}
	}
	return true
}

func sortedStrings(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[domain.PartitionKey]struct{}) []domain.PartitionKey {
	if len(set) == 0 {
		return nil
	}
	out := make([]domain.PartitionKey, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sortedCounterKeys(counters map[domain.PartitionKey]map[domain.NodeID]uint64) []domain.PartitionKey {
	out := make([]domain.PartitionKey, 0, len(counters))
	for k := range counters {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sortedCounters(byNode map[domain.NodeID]uint64) []NodeCounter {
	out := make([]NodeCounter, 0, len(byNode))
	for id, c := range byNode {
		out = append(out, NodeCounter{NodeID: id, UpdateCounter: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}
