// Package httpserver provides the management HTTP server for Ignite.
//
// This package implements the management API using stdlib net/http:
//
//   - Check endpoints: /v1/snapshots/{name}/check, /v1/operations
//   - Registry endpoints: /v1/snapshots, /v1/snapshots/{name}
//   - Cluster endpoints: /v1/cluster, /v1/cluster/activate
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - TLS support with automatic certificate reload
//   - Middleware chain: RequestID, Recover, Logging, Metrics, BearerAuth
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
//
// The router built by NewRouter is shared with localserver, which
// serves the same API over a unix socket.
//
// @req RQ-0301
// @design DS-0301
package httpserver
