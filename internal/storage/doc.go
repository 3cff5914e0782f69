// Package storage provides the storage layer for Ignite.
//
// The layer has three parts:
//
//   - Metastore: an embedded KV engine (Badger in production, an
//     in-memory twin in tests) holding snapshot descriptors and check
//     verdict history on each node
//   - Page Store: fixed-size checksummed page files backing cache
//     group partitions (pagestore subpackage)
//   - Snapshot: on-disk snapshot layout, metafiles, and the local
//     inspection walk (snapshot subpackage)
//
// The metastore is deliberately small: a handful of keys per snapshot
// and per check run. Durability wins over throughput, so the Badger
// engine defaults to synchronous writes.
//
// @req RQ-0103
// @design DS-0103
package storage
