// Package handler provides HTTP request handlers for the Ignite
// management API.
//
// This package contains handlers for all management endpoints:
//
//   - check.go: snapshot verification runs (start, inspect, cancel)
//   - snapshots.go: snapshot registry contents
//   - cluster.go: cluster membership, activation and baseline control
//   - health.go: health and readiness checks
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response
//   - Handle errors with appropriate HTTP status codes
//
// @req RQ-0301
// @design DS-0301
package handler
