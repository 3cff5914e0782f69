// Package metric provides Prometheus metrics for Ignite.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric interfaces, the process Registry and its
//     /metrics HTTP handler
//   - collector.go: scrape-time collector for live cluster state
//
// Metrics include:
//
//   - Verification run counters and duration histograms
//   - Pages read and corrupt-page counters
//   - Management API request counters and latencies
//   - Cluster membership and leadership gauges
//
// All metrics live under the "ignite" namespace and are exposed at
// /metrics on the management server.
//
// @req RQ-0403
// @design DS-0402
package metric
