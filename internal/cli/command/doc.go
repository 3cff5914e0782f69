// Package command provides CLI command definitions for Ignite.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, connection resolution
//   - check.go: Start a snapshot check and wait for the verdict
//   - operations.go: Check operation listing, status, cancellation
//   - snapshots.go: Snapshot catalog listing and inspection
//   - cluster.go: Cluster state, activation, baseline management
//   - health.go: Server health and readiness probes
//   - config.go: Profile management in the CLI config file
//   - connect.go: Connection pinning commands
//   - repl.go: Interactive shell entry point
//
// Commands follow a consistent pattern of parsing flags, calling the
// management API over HTTP or a unix socket, and formatting output.
//
// @req RQ-0602
// @design DS-0601
package command
