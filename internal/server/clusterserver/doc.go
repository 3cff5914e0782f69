// Package clusterserver provides the cluster plane of an Ignite node.
//
// This package combines three layers:
//
//   - Node discovery and live membership over gossip
//   - Replicated control-plane state via Raft consensus: the cluster
//     ACTIVE flag, the baseline topology and the cache-group registry
//   - The VerifyService RPC carrying snapshot inspection requests
//     between the check coordinator and remote nodes
//
// Communication uses Connect RPC with a JSON codec.
//
// @req RQ-0401
// @design DS-0401
package clusterserver
