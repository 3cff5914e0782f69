// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// Magic bytes identify snapshot metafiles (DS-0102).
var metafileMagic = []byte("IGNITSMF")

const (
	// MetafileExtension is the snapshot metadata file extension.
	MetafileExtension = ".smf"

	// GroupManifestName is the manifest file inside each cache-group directory.
	GroupManifestName = "group" + MetafileExtension

	metafileVersion = 1
	digestSize      = 32

	kindDescriptor = "descriptor"
	kindGroup      = "group"
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid metafile magic")
	ErrDigestMismatch = errors.New("snapshot: metafile digest mismatch")
	ErrWrongKind      = errors.New("snapshot: unexpected metafile kind")
)

type metafileHeader struct {
	Version   int    `json:"version"`
	Kind      string `json:"kind"`
	CreatedAt int64  `json:"created_at"`
}

// WriteDescriptor writes the snapshot descriptor metafile at path.
func WriteDescriptor(path string, desc *domain.SnapshotDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	return writeMetafile(path, kindDescriptor, desc)
}

// ReadDescriptor reads and validates a snapshot descriptor metafile.
func ReadDescriptor(path string) (*domain.SnapshotDescriptor, error) {
	body, err := readMetafile(path, kindDescriptor)
	if err != nil {
		return nil, err
	}
	var desc domain.SnapshotDescriptor
	if err := json.Unmarshal(body, &desc); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal descriptor: %w", err)
	}
	return &desc, nil
}

// WriteGroupManifest writes a cache group's manifest metafile at path.
func WriteGroupManifest(path string, g domain.GroupDescriptor) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return writeMetafile(path, kindGroup, g)
}

// ReadGroupManifest reads and validates a cache group manifest metafile.
func ReadGroupManifest(path string) (*domain.GroupDescriptor, error) {
	body, err := readMetafile(path, kindGroup)
	if err != nil {
		return nil, err
	}
	var g domain.GroupDescriptor
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal group manifest: %w", err)
	}
	return &g, nil
}

// writeMetafile writes the metafile envelope atomically (temp file + rename).
func writeMetafile(path, kind string, body any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("snapshot: create dir: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	hash, err := blake2b.New256(nil)
	if err != nil {
		file.Close()
		return fmt.Errorf("snapshot: init digest: %w", err)
	}
	writer := io.MultiWriter(file, hash)

	if _, err := writer.Write(metafileMagic); err != nil {
		file.Close()
		return err
	}

	hdr := metafileHeader{
		Version:   metafileVersion,
		Kind:      kind,
		CreatedAt: time.Now().UnixMilli(),
	}
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		file.Close()
		return fmt.Errorf("snapshot: marshal header: %w", err)
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		file.Close()
		return fmt.Errorf("snapshot: marshal body: %w", err)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hdrJSON)))
	if _, err := writer.Write(lenBuf[:]); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write header length: %w", err)
	}
	if _, err := writer.Write(hdrJSON); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(bodyJSON)))
	if _, err := writer.Write(lenBuf[:]); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write body length: %w", err)
	}
	if _, err := writer.Write(bodyJSON); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write body: %w", err)
	}

	// Digest trailer covers everything above it.
	if _, err := file.Write(hash.Sum(nil)); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write digest: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

// readMetafile verifies the envelope and returns the body JSON.
func readMetafile(path, kind string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() < int64(len(metafileMagic))+digestSize {
		return nil, fmt.Errorf("snapshot: %s: %w", path, ErrDigestMismatch)
	}

	// Verify the digest trailer before trusting any field.
	dataLen := stat.Size() - digestSize
	expected := make([]byte, digestSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, dataLen, digestSize), expected); err != nil {
		return nil, err
	}
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: init digest: %w", err)
	}
	if _, err := io.CopyN(hash, io.NewSectionReader(f, 0, dataLen), dataLen); err != nil {
		return nil, err
	}
	if !bytes.Equal(hash.Sum(nil), expected) {
		return nil, fmt.Errorf("snapshot: %s: %w", path, ErrDigestMismatch)
	}

	br := bufio.NewReader(io.NewSectionReader(f, 0, dataLen))

	magic := make([]byte, len(metafileMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, metafileMagic) {
		return nil, fmt.Errorf("snapshot: %s: %w", path, ErrInvalidMagic)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
		return nil, err
	}
	hdrLen := binary.BigEndian.Uint32(lenBuf[:])
	if hdrLen == 0 {
		return nil, fmt.Errorf("snapshot: %s: empty header", path)
	}
	hdrJSON := make([]byte, hdrLen)
	if _, err := io.ReadFull(br, hdrJSON); err != nil {
		return nil, err
	}

	var hdr metafileHeader
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal header: %w", err)
	}
	if hdr.Kind != kind {
		return nil, fmt.Errorf("snapshot: %s has kind %q, want %q: %w", path, hdr.Kind, kind, ErrWrongKind)
	}

	if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
		return nil, err
	}
	bodyLen := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, err
	}
	return body, nil
}
