// Package clusterserver provides the Raft FSM implementation.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hashicorp/raft"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// LogEntryType defines the type of Raft log entry.
type LogEntryType uint8

const (
	// LogEntryClusterActivate flips the cluster to ACTIVE.
	LogEntryClusterActivate LogEntryType = 1

	// LogEntryClusterDeactivate flips the cluster to INACTIVE.
	LogEntryClusterDeactivate LogEntryType = 2

	// LogEntryBaselineSet replaces the baseline topology.
	LogEntryBaselineSet LogEntryType = 3

	// LogEntryGroupRegister adds or replaces a cache-group descriptor.
	LogEntryGroupRegister LogEntryType = 4
)

// LogEntry represents a Raft log entry.
type LogEntry struct {
	Type    LogEntryType    `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BaselineSetPayload is the payload for baseline changes.
type BaselineSetPayload struct {
	Epoch uint64            `json:"epoch"`
	Nodes []domain.NodeInfo `json:"nodes"`
}

// GroupRegisterPayload is the payload for cache-group registration.
type GroupRegisterPayload struct {
	Group domain.GroupDescriptor `json:"group"`
}

// FSM implements the Raft finite state machine.
//
// All control-plane mutations go through the FSM so every node applies
// the same sequence to the same state.
type FSM struct {
	mu sync.RWMutex

	state *ClusterState

	logger *slog.Logger
}

// NewFSM creates a new Raft FSM with empty, inactive state.
func NewFSM(logger *slog.Logger) *FSM {
	if logger == nil {
		logger = slog.Default()
	}

	return &FSM{
		state:  NewClusterState(),
		logger: logger,
	}
}

// Apply applies a committed Raft log entry to the FSM.
//
// Must be deterministic - same input always produces same output.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var entry LogEntry
	if err := json.Unmarshal(log.Data, &entry); err != nil {
		// FATAL: Data corruption or incompatible version
		f.logger.Error("FATAL: failed to unmarshal log entry - data corrupted",
			"error", err,
			"log_index", log.Index,
			"log_term", log.Term)
		panic(fmt.Sprintf("FSM.Apply: unmarshal failed at index=%d: %v", log.Index, err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch entry.Type {
	case LogEntryClusterActivate:
		f.state.Active = true
		f.logger.Info("cluster activated")

	case LogEntryClusterDeactivate:
		f.state.Active = false
		f.logger.Info("cluster deactivated")

	case LogEntryBaselineSet:
		f.applyBaselineSet(entry.Payload)

	case LogEntryGroupRegister:
		f.applyGroupRegister(entry.Payload)

	default:
		// FATAL: Unknown log type indicates version mismatch or data corruption
		f.logger.Error("FATAL: unknown log entry type",
			"type", entry.Type,
			"log_index", log.Index)
		panic(fmt.Sprintf("FSM.Apply: unknown log type %d at index=%d", entry.Type, log.Index))
	}

	// Always return nil - errors trigger panic, not return values
	return nil
}

// applyBaselineSet applies a baseline change.
func (f *FSM) applyBaselineSet(payload json.RawMessage) {
	var set BaselineSetPayload
	if err := json.Unmarshal(payload, &set); err != nil {
		f.logger.Error("FATAL: failed to unmarshal baseline payload", "error", err)
		panic(fmt.Sprintf("applyBaselineSet: unmarshal failed: %v", err))
	}

	f.state.setBaseline(set.Epoch, set.Nodes)

	f.logger.Info("baseline updated",
		"epoch", set.Epoch,
		"nodes", len(set.Nodes))
}

// applyGroupRegister applies a cache-group registration.
func (f *FSM) applyGroupRegister(payload json.RawMessage) {
	var reg GroupRegisterPayload
	if err := json.Unmarshal(payload, &reg); err != nil {
		f.logger.Error("FATAL: failed to unmarshal group payload", "error", err)
		panic(fmt.Sprintf("applyGroupRegister: unmarshal failed: %v", err))
	}

	f.state.registerGroup(reg.Group)

	f.logger.Info("cache group registered",
		"group", reg.Group.Name,
		"group_id", reg.Group.ID,
		"partitions", reg.Group.Partitions)
}

// Snapshot creates a point-in-time copy of the FSM state for log
// compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return &fsmSnapshot{state: f.state.Clone()}, nil
}

// Restore replaces the FSM state from a snapshot.
//
// Snapshots are gzip-compressed JSON.
func (f *FSM) Restore(r io.ReadCloser) error {
	defer r.Close()

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzReader.Close()

	state := NewClusterState()
	if err := json.NewDecoder(gzReader).Decode(state); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = state

	f.logger.Info("fsm state restored from snapshot",
		"active", state.Active,
		"baseline_epoch", state.BaselineEpoch,
		"baseline_nodes", len(state.Baseline),
		"groups", len(state.Groups))

	return nil
}

// State returns a deep copy of the current cluster state.
func (f *FSM) State() *ClusterState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.state.Clone()
}

// Active reports whether the cluster is activated.
func (f *FSM) Active() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.state.Active
}

// fsmSnapshot implements raft.FSMSnapshot.
type fsmSnapshot struct {
	state *ClusterState
}

// Persist writes the gzip-compressed state to the sink.
func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		gzWriter := gzip.NewWriter(sink)

		if err := json.NewEncoder(gzWriter).Encode(s.state); err != nil {
			gzWriter.Close()
			return fmt.Errorf("encode snapshot: %w", err)
		}

		// Flush gzip writer to ensure all compressed data is written
		if err := gzWriter.Close(); err != nil {
			return fmt.Errorf("close gzip writer: %w", err)
		}

		return nil
	}()

	if err != nil {
		sink.Cancel()
		return err
	}

	return sink.Close()
}

// Release is called when the snapshot is no longer needed.
func (s *fsmSnapshot) Release() {}
