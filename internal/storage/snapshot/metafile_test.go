// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

func testDescriptor(name string) *domain.SnapshotDescriptor {
	return &domain.SnapshotDescriptor{
		Name:         name,
		ID:           "01HZXK3V5N9QJ4M2P8R6T0WYAB",
		CreatedAt:    1700000000000,
		ClusterEpoch: 3,
		Baseline: []domain.NodeInfo{
			{ID: "node-1", Address: "127.0.0.1:7800"},
			{ID: "node-2", Address: "127.0.0.1:7801"},
		},
		Groups: []domain.GroupDescriptor{
			domain.NewGroupDescriptor("default", 4, 1, ""),
			domain.NewGroupDescriptor("shared", 2, 1, ""),
		},
	}
}

func TestDescriptor_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily"+MetafileExtension)
	want := testDescriptor("daily")

	if err := WriteDescriptor(path, want); err != nil {
		t.Fatalf("WriteDescriptor() error = %v", err)
	}
	got, err := ReadDescriptor(path)
	if err != nil {
		t.Fatalf("ReadDescriptor() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadDescriptor() = %+v, want %+v", got, want)
	}
}

func TestGroupManifest_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, GroupManifestName)
	want := domain.NewGroupDescriptor("default", 8, 2, "zone=eu")

	if err := WriteGroupManifest(path, want); err != nil {
		t.Fatalf("WriteGroupManifest() error = %v", err)
	}
	got, err := ReadGroupManifest(path)
	if err != nil {
		t.Fatalf("ReadGroupManifest() error = %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("ReadGroupManifest() = %+v, want %+v", *got, want)
	}
}

func TestReadDescriptor_TamperedBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily"+MetafileExtension)
	if err := WriteDescriptor(path, testDescriptor("daily")); err != nil {
		t.Fatalf("WriteDescriptor() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	// Flip a byte in the middle of the envelope.
	raw[len(raw)/2] ^= 0x01
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := ReadDescriptor(path); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("ReadDescriptor() error = %v, want ErrDigestMismatch", err)
	}
}

func TestReadDescriptor_Truncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny"+MetafileExtension)
	if err := os.WriteFile(path, []byte("short"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := ReadDescriptor(path); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("ReadDescriptor() error = %v, want ErrDigestMismatch", err)
	}
}

// writeEnvelope assembles a metafile by hand so tests can vary the magic.
func writeEnvelope(t *testing.T, path string, magic []byte, kind string, body any) {
	t.Helper()

	hdrJSON, err := json.Marshal(metafileHeader{Version: metafileVersion, Kind: kind})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	var buf []byte
	buf = append(buf, magic...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(hdrJSON)))
	buf = append(buf, hdrJSON...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(bodyJSON)))
	buf = append(buf, bodyJSON...)
	digest := blake2b.Sum256(buf)
	buf = append(buf, digest[:]...)

	if err := os.WriteFile(path, buf, 0600); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
}

func TestReadDescriptor_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily"+MetafileExtension)
	writeEnvelope(t, path, []byte("WRONGMAG"), kindDescriptor, testDescriptor("daily"))

	if _, err := ReadDescriptor(path); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("ReadDescriptor() error = %v, want ErrInvalidMagic", err)
	}
}

func TestReadGroupManifest_WrongKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, GroupManifestName)
	writeEnvelope(t, path, metafileMagic, kindDescriptor, testDescriptor("daily"))

	if _, err := ReadGroupManifest(path); !errors.Is(err, ErrWrongKind) {
		t.Errorf("ReadGroupManifest() error = %v, want ErrWrongKind", err)
	}
}

func TestLayout_Paths(t *testing.T) {
	l := NewLayout("/data/snapshots")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dir", l.Dir("daily"), filepath.Join("/data/snapshots", "daily")},
		{"descriptor", l.DescriptorPath("daily"), filepath.Join("/data/snapshots", "daily", "daily.smf")},
		{"group dir", l.GroupDir("daily", "default"), filepath.Join("/data/snapshots", "daily", "cache-default")},
		{"manifest", l.GroupManifestPath("daily", "default"), filepath.Join("/data/snapshots", "daily", "cache-default", "group.smf")},
		{"partition", l.PartitionPath("daily", "default", 7), filepath.Join("/data/snapshots", "daily", "cache-default", "part-7.bin")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("path = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLayout_List(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)

	for _, name := range []string{"beta", "alpha"} {
		if err := WriteDescriptor(l.DescriptorPath(name), testDescriptor(name)); err != nil {
			t.Fatalf("WriteDescriptor(%s) error = %v", name, err)
		}
	}
	// A directory without a descriptor is not a snapshot.
	if err := os.MkdirAll(filepath.Join(root, "stray"), 0750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	// Loose files are ignored.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := l.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestLayout_List_MissingRoot(t *testing.T) {
	l := NewLayout(filepath.Join(t.TempDir(), "missing"))
	got, err := l.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got != nil {
		t.Errorf("List() = %v, want nil", got)
	}
}

func TestLayout_Exists(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)

	if l.Exists("daily") {
		t.Error("Exists() = true before creation")
	}
	if err := os.MkdirAll(l.Dir("daily"), 0750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if !l.Exists("daily") {
		t.Error("Exists() = false after creation")
	}
}
