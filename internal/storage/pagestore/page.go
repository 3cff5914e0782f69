// Package pagestore provides page-granular partition file IO.
package pagestore

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// File format constants (DS-0102).
const (
	// FileExtension is the partition file extension.
	FileExtension = ".bin"

	// Page header layout: id (8) + type (2) + reserved (2) + crc (4).
	offPageID   = 0
	offPageType = 8
	offReserved = 10
	offChecksum = 12

	// HeaderSize is the page header size in bytes.
	HeaderSize = 16

	// Partition meta payload layout (offsets within the page).
	offUpdateCounter = HeaderSize
	offEntryCount    = HeaderSize + 8

	// Page size bounds. The effective size is configured, not hard-coded.
	DefaultPageSize = 4096
	MinPageSize     = 512
	MaxPageSize     = 65536

	DefaultFilePerm = 0600
	DefaultDirPerm  = 0750
)

// Errors for page store operations.
var (
	ErrChecksumMismatch = errors.New("pagestore: page checksum mismatch")
	ErrInvalidPageSize  = errors.New("pagestore: invalid page size")
	ErrInvalidPageType  = errors.New("pagestore: invalid page type")
	ErrPageOutOfRange   = errors.New("pagestore: page index out of range")
	ErrTruncatedFile    = errors.New("pagestore: file size is not a page multiple")
	ErrPayloadTooLarge  = errors.New("pagestore: payload exceeds page capacity")
)

// PageType tags the content of a page.
type PageType uint16

const (
	PageTypeUnspecified PageType = iota
	PageTypePartitionMeta
	PageTypeData
)

// ValidPageSize reports whether size is a power of two within bounds.
func ValidPageSize(size int) bool {
	if size < MinPageSize || size > MaxPageSize {
		return false
	}
	return size&(size-1) == 0
}

// PageID composes the page id from partition index and page index.
// Layout: partition in the high 32 bits, page index in the low 32 bits.
func PageID(partition, index uint32) uint64 {
	return uint64(partition)<<32 | uint64(index)
}

// PartitionOf extracts the partition index from a page id.
func PartitionOf(pageID uint64) uint32 {
	return uint32(pageID >> 32)
}

// IndexOf extracts the page index from a page id.
func IndexOf(pageID uint64) uint32 {
	return uint32(pageID)
}

// Checksum computes the page CRC: CRC-32 (IEEE) over the whole page with the
// checksum field treated as zero.
func Checksum(page []byte) uint32 {
	var zero [4]byte
	h := crc32.NewIEEE()
	h.Write(page[:offChecksum])
	h.Write(zero[:])
	h.Write(page[offChecksum+4:])
	return h.Sum32()
}

// PageView is a decoded, read-only view of one page.
type PageView struct {
	// Index is the page index within the file.
	Index uint32

	// ID is the stored page id.
	ID uint64

	// Type is the stored page type tag.
	Type PageType

	buf []byte
}

// Payload returns the page body after the header. The slice aliases the
// page buffer and must not be retained across reads.
func (p *PageView) Payload() []byte {
	return p.buf[HeaderSize:]
}

// UpdateCounter returns the stored update counter.
// Only meaningful for PageTypePartitionMeta pages.
func (p *PageView) UpdateCounter() uint64 {
	return binary.BigEndian.Uint64(p.buf[offUpdateCounter:])
}

// EntryCount returns the stored entry count.
// Only meaningful for PageTypePartitionMeta pages.
func (p *PageView) EntryCount() uint64 {
	return binary.BigEndian.Uint64(p.buf[offEntryCount:])
}

// encodeHeader writes the header fields and the checksum into page.
func encodeHeader(page []byte, id uint64, typ PageType) {
	binary.BigEndian.PutUint64(page[offPageID:], id)
	binary.BigEndian.PutUint16(page[offPageType:], uint16(typ))
	binary.BigEndian.PutUint16(page[offReserved:], 0)
	binary.BigEndian.PutUint32(page[offChecksum:], Checksum(page))
}

// MetaPage encodes a complete partition metadata page. It is the canonical
// encoding used for page 0 of every partition file.
func MetaPage(pageSize int, partition uint32, updateCounter, entryCount uint64) []byte {
	page := make([]byte, pageSize)
	binary.BigEndian.PutUint64(page[offUpdateCounter:], updateCounter)
	binary.BigEndian.PutUint64(page[offEntryCount:], entryCount)
	encodeHeader(page, PageID(partition, 0), PageTypePartitionMeta)
	return page
}

// decodePage validates the checksum and decodes the header of one raw page.
func decodePage(index uint32, raw []byte) (*PageView, error) {
	stored := binary.BigEndian.Uint32(raw[offChecksum:])
	if Checksum(raw) != stored {
		return nil, ErrChecksumMismatch
	}
	return &PageView{
		Index: index,
		ID:    binary.BigEndian.Uint64(raw[offPageID:]),
		Type:  PageType(binary.BigEndian.Uint16(raw[offPageType:])),
		buf:   raw,
	}, nil
}
