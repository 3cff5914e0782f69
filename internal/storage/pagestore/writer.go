// Package pagestore provides page-granular partition file IO.
package pagestore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes a partition file page by page. The metadata page must be
// written first; data pages follow in index order. Writers are used by the
// snapshot creation path and by test fixtures; verification itself never
// writes.
type Writer struct {
	file      *os.File
	pageSize  int
	partition uint32
	next      uint32
	closed    bool
}

// NewWriter creates (or truncates) a partition file.
func NewWriter(path string, pageSize int, partition uint32) (*Writer, error) {
	if !ValidPageSize(pageSize) {
		return nil, fmt.Errorf("pagestore: create %s: %w", path, ErrInvalidPageSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("pagestore: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return nil, err
	}

	return &Writer{
		file:      f,
		pageSize:  pageSize,
		partition: partition,
	}, nil
}

// WriteMeta writes the partition metadata page. It must be the first page.
func (w *Writer) WriteMeta(updateCounter, entryCount uint64) error {
	if w.next != 0 {
		return fmt.Errorf("pagestore: meta page must be page 0, next is %d", w.next)
	}
	return w.writePage(MetaPage(w.pageSize, w.partition, updateCounter, entryCount))
}

// WriteData appends one data page with the given payload, zero-padded to the
// page size. The payload must fit in pageSize - HeaderSize bytes.
func (w *Writer) WriteData(payload []byte) error {
	if w.next == 0 {
		return fmt.Errorf("pagestore: meta page must precede data pages")
	}
	if len(payload) > w.pageSize-HeaderSize {
		return fmt.Errorf("pagestore: %d byte payload: %w", len(payload), ErrPayloadTooLarge)
	}

	page := make([]byte, w.pageSize)
	copy(page[HeaderSize:], payload)
	encodeHeader(page, PageID(w.partition, w.next), PageTypeData)
	return w.writePage(page)
}

// PageCount returns the number of pages written so far.
func (w *Writer) PageCount() uint32 {
	return w.next
}

func (w *Writer) writePage(page []byte) error {
	if w.closed {
		return fmt.Errorf("pagestore: writer is closed")
	}
	if _, err := w.file.Write(page); err != nil {
		return fmt.Errorf("pagestore: write page %d: %w", w.next, err)
	}
	w.next++
	return nil
}

// Close syncs and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("pagestore: sync: %w", err)
	}
	return w.file.Close()
}

// RewriteMeta replaces the metadata page of an existing partition file in
// place, recomputing the checksum. Used by administrative tooling and test
// fixtures to adjust counters without touching data pages.
func RewriteMeta(path string, pageSize int, partition uint32, updateCounter, entryCount uint64) error {
	if !ValidPageSize(pageSize) {
		return fmt.Errorf("pagestore: rewrite %s: %w", path, ErrInvalidPageSize)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteAt(MetaPage(pageSize, partition, updateCounter, entryCount), 0); err != nil {
		return fmt.Errorf("pagestore: rewrite meta: %w", err)
	}
	return f.Sync()
}

// CorruptPage flips one payload byte of the page at the given index without
// updating the stored checksum, guaranteeing a validation failure on the
// next read. Only test fixtures and fault-injection tooling use this.
func CorruptPage(path string, pageSize int, index uint32) error {
	f, err := os.OpenFile(path, os.O_RDWR, DefaultFilePerm)
	if err != nil {
		return err
	}
	defer f.Close()

	off := int64(index)*int64(pageSize) + HeaderSize
	var b [1]byte
	if _, err := f.ReadAt(b[:], off); err != nil {
		return err
	}
	b[0] ^= 0xFF
	if _, err := f.WriteAt(b[:], off); err != nil {
		return err
	}
	return f.Sync()
}
