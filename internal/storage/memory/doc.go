// Package memory provides an in-memory metastore engine for Ignite.
//
// It implements the storage.Engine interface using concurrent-safe
// data structures with sharded locking. There is no persistence: all
// data is lost when the engine is closed or the process exits.
//
// Features:
//
//   - Sharded Storage: Keys distributed across shards for parallelism
//   - Snapshot Scans: Prefix scans iterate a sorted key snapshot
//   - Copy Semantics: Values are cloned on Set and Get
//
// Intended for tests and single-node development setups; production
// nodes use the Badger engine.
//
// @design DS-0103
package memory
