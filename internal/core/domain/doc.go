// Package domain defines the core domain models for Ignite.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - SnapshotDescriptor: identity and contents of a named snapshot
//   - PartitionKey: (cache group, partition) addressing
//   - Topology / NodeInfo: an immutable view of cluster membership
//   - Affinity: partition-to-node placement
//   - Errors: domain-specific error definitions
//
// @req RQ-0101
// @design DS-0101
package domain
