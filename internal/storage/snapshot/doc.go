// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
//
// A snapshot is stored per node as a directory tree:
//
//	<snapshots.dir>/<name>/
//	    <name>.smf                descriptor metafile
//	    cache-<group>/
//	        group.smf             group manifest metafile
//	        part-<idx>.bin        one partition file per locally-owned partition
//
// Metafiles share one binary envelope:
//
//	[magic:8 "IGNITSMF"]
//	[HeaderLen:4][HeaderJSON:HeaderLen]
//	[BodyLen:4][BodyJSON:BodyLen]
//	[digest:32 BLAKE2b-256 of all bytes above]
//
// The Inspector walks one node's copy of a snapshot and produces a
// NodeOutcome: missing groups, metafiles and partitions are accumulated as
// findings; an unreadable root or a page checksum violation is a node-level
// failure that abandons the walk. Aggregate merges the per-node outcomes of
// one verification run into a Verdict and the Verdict renders the printable
// check report.
//
// @req RQ-0101
// @design DS-0102
package snapshot
