// Package snaptest writes real snapshot directory trees for tests, and can
// then delete or corrupt pieces of them to force individual findings.
package snaptest

import (
	"fmt"
	"os"
	"testing"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// Spec describes one node's on-disk copy of a snapshot.
type Spec struct {
	Descriptor *domain.SnapshotDescriptor

	// PageSize defaults to pagestore.MinPageSize to keep fixtures small.
	PageSize int

	Groups []GroupData
}

// GroupData holds the partitions this node's copy carries for one group.
type GroupData struct {
	Group      domain.GroupDescriptor
	Partitions []PartitionData
}

// PartitionData describes one partition file.
type PartitionData struct {
	Index   uint32
	Counter uint64
	Entries uint64

	// Pages is the number of data pages after the meta page.
	Pages int
}

// Partitions enumerates indexes [0, n) with uniform counter and shape.
func Partitions(n uint32, counter, entries uint64, pages int) []PartitionData {
	out := make([]PartitionData, 0, n)
	for idx := uint32(0); idx < n; idx++ {
		out = append(out, PartitionData{Index: idx, Counter: counter, Entries: entries, Pages: pages})
	}
	return out
}

// Write builds the snapshot tree for spec under the given snapshots root.
func Write(t testing.TB, root string, spec Spec) {
	t.Helper()

	pageSize := spec.PageSize
	if pageSize == 0 {
		pageSize = pagestore.MinPageSize
	}
	layout := snapshot.NewLayout(root)
	name := spec.Descriptor.Name

	if err := snapshot.WriteDescriptor(layout.DescriptorPath(name), spec.Descriptor); err != nil {
		t.Fatalf("WriteDescriptor() error = %v", err)
	}

	for _, g := range spec.Groups {
		if err := snapshot.WriteGroupManifest(layout.GroupManifestPath(name, g.Group.Name), g.Group); err != nil {
			t.Fatalf("WriteGroupManifest(%s) error = %v", g.Group.Name, err)
		}
		for _, p := range g.Partitions {
			writePartition(t, layout.PartitionPath(name, g.Group.Name, p.Index), pageSize, p)
		}
	}
}

func writePartition(t testing.TB, path string, pageSize int, p PartitionData) {
	t.Helper()

	w, err := pagestore.NewWriter(path, pageSize, p.Index)
	if err != nil {
		t.Fatalf("NewWriter(%s) error = %v", path, err)
	}
	if err := w.WriteMeta(p.Counter, p.Entries); err != nil {
		t.Fatalf("WriteMeta() error = %v", err)
	}
	for i := 0; i < p.Pages; i++ {
		payload := fmt.Sprintf("entry-%d-%d", p.Index, i)
		if err := w.WriteData([]byte(payload)); err != nil {
			t.Fatalf("WriteData() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// DeletePartition removes one partition file.
func DeletePartition(t testing.TB, root, name, group string, partition uint32) {
	t.Helper()
	l := snapshot.NewLayout(root)
	if err := os.Remove(l.PartitionPath(name, group, partition)); err != nil {
		t.Fatalf("remove partition: %v", err)
	}
}

// DeleteGroupDir removes an entire cache-group directory.
func DeleteGroupDir(t testing.TB, root, name, group string) {
	t.Helper()
	l := snapshot.NewLayout(root)
	if err := os.RemoveAll(l.GroupDir(name, group)); err != nil {
		t.Fatalf("remove group dir: %v", err)
	}
}

// DeleteGroupManifest removes a cache group's manifest metafile.
func DeleteGroupManifest(t testing.TB, root, name, group string) {
	t.Helper()
	l := snapshot.NewLayout(root)
	if err := os.Remove(l.GroupManifestPath(name, group)); err != nil {
		t.Fatalf("remove group manifest: %v", err)
	}
}

// DeleteDescriptor removes the snapshot descriptor metafile.
func DeleteDescriptor(t testing.TB, root, name string) {
	t.Helper()
	l := snapshot.NewLayout(root)
	if err := os.Remove(l.DescriptorPath(name)); err != nil {
		t.Fatalf("remove descriptor: %v", err)
	}
}

// CorruptPage flips a payload byte of one page without fixing the checksum.
func CorruptPage(t testing.TB, root string, pageSize int, name, group string, partition, page uint32) {
	t.Helper()
	if pageSize == 0 {
		pageSize = pagestore.MinPageSize
	}
	l := snapshot.NewLayout(root)
	if err := pagestore.CorruptPage(l.PartitionPath(name, group, partition), pageSize, page); err != nil {
		t.Fatalf("corrupt page: %v", err)
	}
}

// SetCounter rewrites one partition's update counter with a valid checksum,
// simulating replica divergence.
func SetCounter(t testing.TB, root string, pageSize int, name, group string, partition uint32, counter uint64) {
	t.Helper()
	if pageSize == 0 {
		pageSize = pagestore.MinPageSize
	}
	l := snapshot.NewLayout(root)
	path := l.PartitionPath(name, group, partition)

	r, err := pagestore.OpenReader(path, pageSize)
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	meta, err := r.Meta()
	if err != nil {
		r.Close()
		t.Fatalf("read meta page: %v", err)
	}
	entries := meta.EntryCount()
	r.Close()

	if err := pagestore.RewriteMeta(path, pageSize, partition, counter, entries); err != nil {
		t.Fatalf("rewrite meta page: %v", err)
	}
}
