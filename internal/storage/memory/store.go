// Package memory provides an in-memory metastore engine for Ignite.
//
// It implements the storage.Engine interface using concurrent-safe
// data structures with sharded locking. Used by tests and single-node
// development setups where durability is not required.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bradthebeeble/ignite/internal/storage"
	"github.com/bradthebeeble/ignite/pkg/cmap"
)

// Engine is an in-memory implementation of storage.Engine.
//
// Keys and values are copied on the way in and out, so callers may
// reuse their buffers freely.
type Engine struct {
	data   *cmap.Map[string, []byte]
	closed atomic.Bool
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{
		data: cmap.New[string, []byte](),
	}
}

// Get retrieves a value by key.
func (e *Engine) Get(_ context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}

	value, ok := e.data.Get(string(key))
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	return clone(value), nil
}

// Set stores a key-value pair.
func (e *Engine) Set(_ context.Context, key, value []byte) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}

	e.data.Set(string(key), clone(value))
	return nil
}

// Delete removes a key.
func (e *Engine) Delete(_ context.Context, key []byte) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}

	e.data.Delete(string(key))
	return nil
}

// Scan iterates over keys with the given prefix in ascending key order.
//
// The set of matching keys is snapshotted up front, so the callback may
// modify the engine without invalidating the iteration.
func (e *Engine) Scan(_ context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}

	p := string(prefix)
	var keys []string

	e.data.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, p) {
			keys = append(keys, key)
		}
		return true
	})

	sort.Strings(keys)

	for _, key := range keys {
		value, ok := e.data.Get(key)
		if !ok {
			continue // Deleted between snapshot and visit
		}
		if !fn([]byte(key), clone(value)) {
			break
		}
	}

	return nil
}

// GC is a no-op for the in-memory engine.
func (e *Engine) GC(_ context.Context) (uint64, error) {
	if e.closed.Load() {
		return 0, storage.ErrClosed
	}
	return 0, nil
}

// Stats returns key count and approximate in-memory size.
func (e *Engine) Stats(_ context.Context) (*storage.KVStats, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}

	var totalSize uint64
	e.data.Range(func(key string, value []byte) bool {
		totalSize += uint64(len(key) + len(value))
		return true
	})

	return &storage.KVStats{
		TotalKeys: uint64(e.data.Count()),
		TotalSize: totalSize,
	}, nil
}

// Close marks the engine closed and drops its contents.
// Subsequent operations return storage.ErrClosed.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.data.Clear()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
