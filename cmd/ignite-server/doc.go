// Package main provides the entry point for ignite-server.
//
// The server is a single Ignite node that provides:
//
//   - HTTP/HTTPS management API for snapshot checks and cluster control
//   - Cluster plane: gossip membership, raft control state, verification RPC
//   - Local Unix socket for management access (no auth token required)
//   - Prometheus metrics endpoint
//
// Usage:
//
//	ignite-server [flags]
//	ignite-server --config /path/to/config.yaml
//
// The server loads configuration, initializes the storage engine and
// snapshot inspector, joins the cluster, and starts all configured
// listeners.
//
// @design DS-0501
package main
