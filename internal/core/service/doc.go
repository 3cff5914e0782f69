// Package service provides domain services for Ignite.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for cluster and transport
// dependencies, allowing for dependency injection and testability.
//
// This package contains:
//
//   - CheckService: cluster-wide snapshot verification orchestration
//   - InspectorService: node-local inspection with duplicate suppression
//   - SnapshotRegistry: descriptor catalog and check verdict history
//
// Services are stateless apart from the live run table and are safe for
// concurrent use.
//
// @req RQ-0201
// @design DS-0201
package service
