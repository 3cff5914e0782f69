// Package localserver provides Unix socket access to the management API.
//
// The socket carries the same router as the TCP listener: the CLI talks
// plain HTTP over it. Unlike the TCP listener, access is controlled by
// socket file permissions (owner only), so a local operator keeps
// control of the node without the management token:
//
//   - Health and readiness probes
//   - Snapshot checks and operation control
//   - Cluster activation, deactivation and baseline changes
//
// A stale socket left behind by a crashed process is detected and
// removed on startup; a socket with a live listener is reported as an
// error so two nodes never fight over one path.
//
// @design DS-0301
package localserver
