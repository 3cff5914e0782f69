// Package service provides domain services for Ignite.
//
// Run is the asynchronous handle returned by CheckService.Check.
//
// @design DS-0201
package service

import (
	"context"
	"sync"
	"time"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// RunStatus enumerates check run lifecycle states.
type RunStatus string

// Run lifecycle states.
const (
	// StatusRunning means participants are still being inspected.
	StatusRunning RunStatus = "running"

	// StatusCompleted means a verdict is available.
	StatusCompleted RunStatus = "completed"

	// StatusCancelled means the run was cancelled; partial results
	// were discarded and no verdict exists.
	StatusCancelled RunStatus = "cancelled"

	// StatusFailed means the run aborted on an internal error.
	StatusFailed RunStatus = "failed"
)

// Run is the handle for one asynchronous check operation.
//
// Check returns immediately with a Run; callers observe completion via
// Wait or Done and read the result via Verdict. A Run transitions
// exactly once from StatusRunning to a terminal state.
type Run struct {
	// ID is the operation id (igop-prefixed ULID).
	ID string

	// Snapshot is the snapshot name under verification.
	Snapshot string

	// Started is the wall-clock start time.
	Started time.Time

	mu       sync.Mutex
	status   RunStatus
	verdict  *snapshot.Verdict
	err      error
	finished time.Time
	done     chan struct{}
	cancel   context.CancelFunc
}

func newRun(id, snapshotName string, cancel context.CancelFunc) *Run {
	return &Run{
		ID:       id,
		Snapshot: snapshotName,
		Started:  time.Now(),
		status:   StatusRunning,
		done:     make(chan struct{}),
		cancel:   cancel,
	}
}

// Status returns the current lifecycle state.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done returns a channel closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Verdict returns the aggregated verdict once the run completed.
// Before completion it returns nil and no error; after cancellation or
// failure it returns the terminal error.
func (r *Run) Verdict() (*snapshot.Verdict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verdict, r.err
}

// Finished returns the completion time, zero while still running.
func (r *Run) Finished() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Wait blocks until the run reaches a terminal state or ctx expires.
func (r *Run) Wait(ctx context.Context) (*snapshot.Verdict, error) {
	select {
	case <-r.done:
		return r.Verdict()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests cancellation. Participants still inspecting are
// interrupted and their partial results discarded. Cancelling a
// finished run is a no-op.
func (r *Run) Cancel() {
	r.cancel()
}

// complete moves the run to a terminal state. Only the first call wins.
func (r *Run) complete(status RunStatus, verdict *snapshot.Verdict, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRunning {
		return
	}
	r.status = status
	r.verdict = verdict
	r.err = err
	r.finished = time.Now()
	close(r.done)
}

// Record renders the run into its persistable form.
func (r *Run) Record() *CheckRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &CheckRecord{
		ID:        r.ID,
		Snapshot:  r.Snapshot,
		Status:    r.status,
		StartedAt: r.Started.UnixMilli(),
		Verdict:   r.verdict,
	}
	if !r.finished.IsZero() {
		rec.FinishedAt = r.finished.UnixMilli()
	}
	if r.err != nil {
		rec.Error = r.err.Error()
		rec.ErrorCode = domain.GetErrorCode(r.err)
	}
	return rec
}
