// Package snapshot provides snapshot layout, metafile IO, local inspection
// and verdict aggregation for Ignite.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
)

// Directory naming conventions (DS-0102).
const (
	groupDirPrefix  = "cache-"
	partitionPrefix = "part-"
)

// Layout resolves paths inside one node's snapshot root directory.
// All methods are pure path arithmetic except Exists and List.
type Layout struct {
	root string
}

// NewLayout creates a layout rooted at the node's snapshots directory.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// Root returns the snapshots root directory.
func (l Layout) Root() string {
	return l.root
}

// Dir returns the directory holding the named snapshot.
func (l Layout) Dir(name string) string {
	return filepath.Join(l.root, name)
}

// DescriptorPath returns the path of the snapshot descriptor metafile.
func (l Layout) DescriptorPath(name string) string {
	return filepath.Join(l.Dir(name), name+MetafileExtension)
}

// GroupDir returns the directory holding one cache group's partitions.
func (l Layout) GroupDir(name, group string) string {
	return filepath.Join(l.Dir(name), groupDirPrefix+group)
}

// GroupManifestPath returns the path of a cache group's manifest metafile.
func (l Layout) GroupManifestPath(name, group string) string {
	return filepath.Join(l.GroupDir(name, group), GroupManifestName)
}

// PartitionPath returns the path of one partition file.
func (l Layout) PartitionPath(name, group string, partition uint32) string {
	return filepath.Join(l.GroupDir(name, group), PartitionFileName(partition))
}

// Exists reports whether the named snapshot's directory is present.
func (l Layout) Exists(name string) bool {
	stat, err := os.Stat(l.Dir(name))
	return err == nil && stat.IsDir()
}

// List returns the names of snapshots present under the root, sorted.
// A snapshot counts as present when its directory holds a descriptor
// metafile; stray directories are ignored.
func (l Layout) List() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: list %s: %w", l.root, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if _, err := os.Stat(l.DescriptorPath(name)); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// PartitionFileName returns the file name for a partition index.
func PartitionFileName(partition uint32) string {
	return fmt.Sprintf("%s%d%s", partitionPrefix, partition, pagestore.FileExtension)
}
