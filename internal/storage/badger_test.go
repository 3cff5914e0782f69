package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestBadgerEngine_BasicOperations(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	cfg.Badger.GCInterval = "1h" // Disable auto GC for tests

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := []byte("snapshot/daily-2026-08-20")
		value := []byte(`{"name":"daily-2026-08-20"}`)

		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}

		got, err := engine.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != string(value) {
			t.Errorf("expected %s, got %s", value, got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("non-existent"))
		if err != ErrKeyNotFound {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := []byte("delete-key")
		value := []byte("delete-value")

		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}

		if err := engine.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}

		_, err := engine.Get(ctx, key)
		if err != ErrKeyNotFound {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})
}

func TestBadgerEngine_Scan(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()

	// Insert test data
	testData := map[string]string{
		"verdict/01A": "clean",
		"verdict/01B": "conflicts",
		"verdict/01C": "failed",
		"snapshot/x":  "descriptor",
	}

	for k, v := range testData {
		if err := engine.Set(ctx, []byte(k), []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("Scan with prefix", func(t *testing.T) {
		var keys []string

		err := engine.Scan(ctx, []byte("verdict/"), func(key, value []byte) bool {
			keys = append(keys, string(key))
			return true
		})

		if err != nil {
			t.Fatal(err)
		}

		if len(keys) != 3 {
			t.Fatalf("expected 3 results, got %d", len(keys))
		}

		// Badger iterates in ascending key order.
		want := []string{"verdict/01A", "verdict/01B", "verdict/01C"}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
			}
		}
	})

	t.Run("Scan with early stop", func(t *testing.T) {
		count := 0

		err := engine.Scan(ctx, []byte("verdict/"), func(key, value []byte) bool {
			count++
			return count < 2 // Stop after 2 items
		})

		if err != nil {
			t.Fatal(err)
		}

		if count != 2 {
			t.Errorf("expected 2 iterations, got %d", count)
		}
	})
}

func TestBadgerEngine_Reopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	cfg.Badger.GCInterval = "1h"

	ctx := context.Background()

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Set(ctx, []byte("snapshot/persisted"), []byte("yes")); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	// Data must survive a restart.
	engine2, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine2.Close()

	got, err := engine2.Get(ctx, []byte("snapshot/persisted"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "yes" {
		t.Errorf("expected %q, got %q", "yes", got)
	}
}

func TestBadgerEngine_GC(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	cfg.Badger.GCThreshold = 0.5
	cfg.Badger.GCInterval = "1h" // Disable auto GC

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()

	// Insert and delete data to create garbage
	for i := 0; i < 100; i++ {
		key := []byte{byte(i)}
		value := make([]byte, 1000) // 1KB value
		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}
	}

	// Delete half of the data
	for i := 0; i < 50; i++ {
		key := []byte{byte(i)}
		if err := engine.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
	}

	// Trigger GC
	reclaimed, err := engine.GC(ctx)
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("GC reclaimed ~%d bytes", reclaimed)
	// Note: Actual reclaimed bytes depend on Badger's internal behavior
}

func TestBadgerEngine_Stats(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()

	// Insert some data
	for i := 0; i < 10; i++ {
		key := []byte{byte(i)}
		value := make([]byte, 100)
		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}
	}

	// Get stats
	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Note: Badger Size() may return 0 if data hasn't been flushed to disk yet
	// This is normal behavior, so we just log the stats instead of asserting

	t.Logf("Stats: TotalSize=%d, LSMSize=%d, ValueLogSize=%d",
		stats.TotalSize, stats.LSMSize, stats.ValueLogSize)

	if stats == nil {
		t.Error("expected non-nil stats")
	}
}

func TestBadgerEngine_AutoGC(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping auto-GC test in short mode")
	}

	tmpDir, err := os.MkdirTemp("", "badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultKVConfig(tmpDir)
	cfg.Badger.GCInterval = "2s" // Very short interval for testing

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	// Wait for at least one GC cycle
	time.Sleep(3 * time.Second)

	// Note: GC might not have run if there's no garbage to collect
	stats, err := engine.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("Auto-GC test completed, lastGCTime=%d", stats.LastGCTime)
}
