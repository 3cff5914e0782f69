// Package clusterserver provides wire conversions for cluster RPC.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	clusterv1 "github.com/bradthebeeble/ignite/api/cluster/v1"
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// inspectRequestToWire converts a coordinator inspect request to its
// wire form.
func inspectRequestToWire(req snapshot.InspectRequest) *clusterv1.InspectRequest {
	groups := make([]clusterv1.GroupExpectation, 0, len(req.Groups))
	for _, g := range req.Groups {
		parts := make([]uint32, len(g.Partitions))
		copy(parts, g.Partitions)
		groups = append(groups, clusterv1.GroupExpectation{
			ID:         g.ID,
			Name:       g.Name,
			Partitions: parts,
		})
	}

	return &clusterv1.InspectRequest{
		OperationID:  req.OperationID,
		SnapshotName: req.SnapshotName,
		Groups:       groups,
	}
}

// inspectRequestFromWire converts a wire inspect request to the
// inspector's form.
func inspectRequestFromWire(req *clusterv1.InspectRequest) snapshot.InspectRequest {
	groups := make([]snapshot.GroupExpectation, 0, len(req.Groups))
	for _, g := range req.Groups {
		parts := make([]uint32, len(g.Partitions))
		copy(parts, g.Partitions)
		groups = append(groups, snapshot.GroupExpectation{
			ID:         g.ID,
			Name:       g.Name,
			Partitions: parts,
		})
	}

	return snapshot.InspectRequest{
		OperationID:  req.OperationID,
		SnapshotName: req.SnapshotName,
		Groups:       groups,
	}
}

// outcomeToWire converts a node outcome to its wire form.
func outcomeToWire(o *snapshot.NodeOutcome) *clusterv1.NodeOutcome {
	if o == nil {
		return nil
	}

	out := &clusterv1.NodeOutcome{
		NodeID:          string(o.NodeID),
		SnapshotName:    o.SnapshotName,
		MissingGroups:   append([]string(nil), o.MissingGroups...),
		MissingMetadata: append([]string(nil), o.MissingMetadata...),
	}

	if o.Failure != nil {
		out.Failure = &clusterv1.Failure{
			Code:    o.Failure.Code,
			Message: o.Failure.Message,
		}
	}

	for _, r := range o.Records {
		out.Records = append(out.Records, clusterv1.PartitionRecord{
			Key: clusterv1.PartitionKey{
				GroupID:     r.Key.GroupID,
				PartitionID: r.Key.PartitionID,
			},
			UpdateCounter: r.UpdateCounter,
			EntryCount:    r.EntryCount,
			Pages:         r.Pages,
		})
	}

	for _, k := range o.MissingPartitions {
		out.MissingPartitions = append(out.MissingPartitions, clusterv1.PartitionKey{
			GroupID:     k.GroupID,
			PartitionID: k.PartitionID,
		})
	}

	return out
}

// outcomeFromWire converts a wire node outcome back to the domain form.
func outcomeFromWire(o *clusterv1.NodeOutcome) *snapshot.NodeOutcome {
	if o == nil {
		return nil
	}

	out := &snapshot.NodeOutcome{
		NodeID:          domain.NodeID(o.NodeID),
		SnapshotName:    o.SnapshotName,
		MissingGroups:   append([]string(nil), o.MissingGroups...),
		MissingMetadata: append([]string(nil), o.MissingMetadata...),
	}

	if o.Failure != nil {
		out.Failure = &snapshot.Failure{
			Code:    o.Failure.Code,
			Message: o.Failure.Message,
		}
	}

	for _, r := range o.Records {
		out.Records = append(out.Records, snapshot.PartitionRecord{
			Key: domain.PartitionKey{
				GroupID:     r.Key.GroupID,
				PartitionID: r.Key.PartitionID,
			},
			UpdateCounter: r.UpdateCounter,
			EntryCount:    r.EntryCount,
			Pages:         r.Pages,
		})
	}

	for _, k := range o.MissingPartitions {
		out.MissingPartitions = append(out.MissingPartitions, domain.PartitionKey{
			GroupID:     k.GroupID,
			PartitionID: k.PartitionID,
		})
	}

	return out
}
