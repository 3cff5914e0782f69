// Package domain defines the core domain models for Ignite.
package domain

import (
	"sort"
	"strings"
)

// NodeID identifies a cluster member.
type NodeID string

// NodeInfo describes one server node as recorded in a topology.
type NodeInfo struct {
	// ID is the stable node identifier.
	ID NodeID `json:"id"`

	// Address is the node's cluster RPC address (host:port).
	Address string `json:"address"`

	// Attributes are free-form key/value pairs matched by node filters.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Topology is an immutable view of cluster membership taken at one instant.
// A verification run captures a Topology once at start and never refreshes
// it mid-run, so membership changes cannot race the participant set.
//
// @design DS-0201
type Topology struct {
	// Epoch increments whenever the baseline changes.
	Epoch uint64 `json:"epoch"`

	// Nodes are the member nodes at this epoch, sorted by id.
	Nodes []NodeInfo `json:"nodes"`
}

// NewTopology builds a topology with nodes sorted by id.
func NewTopology(epoch uint64, nodes []NodeInfo) Topology {
	sorted := make([]NodeInfo, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return Topology{Epoch: epoch, Nodes: sorted}
}

// Node returns the member with the given id.
func (t Topology) Node(id NodeID) (NodeInfo, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeInfo{}, false
}

// Contains reports whether the topology includes the given node id.
func (t Topology) Contains(id NodeID) bool {
	_, ok := t.Node(id)
	return ok
}

// IDs returns the member node ids in sorted order.
func (t Topology) IDs() []NodeID {
	ids := make([]NodeID, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// NodeFilter is a single-attribute eligibility predicate for cache groups.
// The zero value matches every node.
type NodeFilter struct {
	Attribute string
	Value     string
}

// ParseNodeFilter parses the "attribute=value" filter syntax.
func ParseNodeFilter(s string) (NodeFilter, error) {
	if s == "" {
		return NodeFilter{}, nil
	}
	attr, val, ok := strings.Cut(s, "=")
	if !ok || attr == "" || val == "" {
		return NodeFilter{}, ErrInvalidArgument.WithDetails("node filter must be attribute=value")
	}
	return NodeFilter{Attribute: attr, Value: val}, nil
}

// Matches reports whether the node satisfies the filter.
func (f NodeFilter) Matches(n NodeInfo) bool {
	if f.Attribute == "" {
		return true
	}
	return n.Attributes[f.Attribute] == f.Value
}

// String renders the filter back to its configuration syntax.
func (f NodeFilter) String() string {
	if f.Attribute == "" {
		return ""
	}
	return f.Attribute + "=" + f.Value
}

// EligibleNodes returns the subset of nodes passing the group's node filter.
// An unparsable filter yields no eligible nodes rather than all of them.
func EligibleNodes(nodes []NodeInfo, g GroupDescriptor) []NodeInfo {
	f, err := ParseNodeFilter(g.NodeFilter)
	if err != nil {
		return nil
	}
	out := make([]NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
