// Package pagestore provides page-granular partition file IO.
package pagestore

import (
	"fmt"
	"os"
)

// Reader reads and validates pages from one partition file.
//
// Reads are positional and stateless; the file handle is held until Close.
// Every exit path of the caller should release the Reader, typically with
// defer, so a checksum failure never leaks the handle.
type Reader struct {
	file     *os.File
	pageSize int
	pages    uint32
}

// OpenReader opens a partition file for page reads.
func OpenReader(path string, pageSize int) (*Reader, error) {
	if !ValidPageSize(pageSize) {
		return nil, fmt.Errorf("pagestore: open %s: %w", path, ErrInvalidPageSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.Size()%int64(pageSize) != 0 {
		f.Close()
		return nil, fmt.Errorf("pagestore: open %s: %w", path, ErrTruncatedFile)
	}

	return &Reader{
		file:     f,
		pageSize: pageSize,
		pages:    uint32(stat.Size() / int64(pageSize)),
	}, nil
}

// PageCount returns the number of pages in the file.
func (r *Reader) PageCount() uint32 {
	return r.pages
}

// PageSize returns the configured page size.
func (r *Reader) PageSize() int {
	return r.pageSize
}

// ReadPage reads and validates the page at the given index.
// A checksum mismatch is returned as an error wrapping ErrChecksumMismatch;
// it is deterministic and must not be retried.
func (r *Reader) ReadPage(index uint32) (*PageView, error) {
	if index >= r.pages {
		return nil, fmt.Errorf("pagestore: page %d of %d: %w", index, r.pages, ErrPageOutOfRange)
	}

	raw := make([]byte, r.pageSize)
	if _, err := r.file.ReadAt(raw, int64(index)*int64(r.pageSize)); err != nil {
		return nil, fmt.Errorf("pagestore: read page %d: %w", index, err)
	}

	view, err := decodePage(index, raw)
	if err != nil {
		return nil, fmt.Errorf("pagestore: page %d of %s: %w", index, r.file.Name(), err)
	}
	return view, nil
}

// Meta reads the partition metadata page (page 0) and validates its type.
func (r *Reader) Meta() (*PageView, error) {
	view, err := r.ReadPage(0)
	if err != nil {
		return nil, err
	}
	if view.Type != PageTypePartitionMeta {
		return nil, fmt.Errorf("pagestore: page 0 has type %d: %w", view.Type, ErrInvalidPageType)
	}
	return view, nil
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
