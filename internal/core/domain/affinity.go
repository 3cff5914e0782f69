// Package domain defines the core domain models for Ignite.
package domain

import (
	"encoding/binary"
	"sort"

	"github.com/spaolacci/murmur3"
)

// Affinity computes partition-to-node placement with rendezvous
// (highest-random-weight) hashing: every (group, partition, node) triple gets
// a score and the top backups+1 nodes own the partition. The placement is a
// pure function of its inputs, so every node derives the same assignment
// from the same topology without coordination.
//
// @design DS-0105
type Affinity struct {
	backups int
}

// NewAffinity creates an affinity function with the given backup count.
func NewAffinity(backups int) *Affinity {
	if backups < 0 {
		backups = 0
	}
	return &Affinity{backups: backups}
}

// Owners returns the nodes owning the given partition, primary first.
// The nodes slice must already be filtered for group eligibility.
func (a *Affinity) Owners(groupID uint32, partition uint32, nodes []NodeInfo) []NodeID {
	if len(nodes) == 0 {
		return nil
	}

	type scored struct {
		id    NodeID
		score uint64
	}
	scores := make([]scored, 0, len(nodes))
	for _, n := range nodes {
		scores = append(scores, scored{id: n.ID, score: placementScore(groupID, partition, n.ID)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	count := a.backups + 1
	if count > len(scores) {
		count = len(scores)
	}
	owners := make([]NodeID, 0, count)
	for _, s := range scores[:count] {
		owners = append(owners, s.id)
	}
	return owners
}

// Assignments returns, for each node, the sorted partition indexes it owns
// within the group. Every partition index below g.Partitions appears in at
// least one node's slice as long as nodes is non-empty.
func (a *Affinity) Assignments(g GroupDescriptor, nodes []NodeInfo) map[NodeID][]uint32 {
	out := make(map[NodeID][]uint32, len(nodes))
	for part := uint32(0); part < g.Partitions; part++ {
		for _, owner := range a.Owners(g.ID, part, nodes) {
			out[owner] = append(out[owner], part)
		}
	}
	for _, parts := range out {
		sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
	}
	return out
}

// placementScore hashes (group, partition, node) into a rendezvous weight.
func placementScore(groupID, partition uint32, node NodeID) uint64 {
	buf := make([]byte, 8, 8+len(node))
	binary.BigEndian.PutUint32(buf[0:4], groupID)
	binary.BigEndian.PutUint32(buf[4:8], partition)
	buf = append(buf, node...)
	return murmur3.Sum64(buf)
}
