// Package pagestore provides page-granular partition file IO.
//
// A partition file is a sequence of fixed-size pages. Every page carries a
// header with its page id, a type tag and a CRC-32 checksum computed over
// the page with the checksum field zeroed. Page 0 of a partition file is the
// partition metadata page holding the update counter and entry count.
//
// Readers validate the stored checksum on every read and never repair or
// retry: a mismatch is deterministic corruption and is reported as
// ErrChecksumMismatch.
//
// @req RQ-0102
// @design DS-0102
package pagestore
