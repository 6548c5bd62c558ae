// Package snapshot models the two external collaborators the spec groups
// under "snapshot context" and "snapshot validator": the subsystem that
// schedules and persists checkpoints, and the subsystem that validates a
// stored snapshot is usable as a restore source. Both are out of scope
// for this repository's core algorithm; this package supplies the
// contracts plus a minimal in-memory reference implementation so the
// coordinator is exercisable end to end.
package snapshot

import (
	"context"
	"fmt"
	"sync"
)

// Validator checks that a snapshot map is a valid restore source for a
// job and resolves it to a concrete snapshot id.
type Validator interface {
	Validate(ctx context.Context, snapshotID int64, mapName, jobID, snapshotName string) (resolvedSnapshotID int64, err error)
}

// Future is a minimal single-value completion signal, mirroring the
// spec's "terminalSnapshotFuture" without pulling in a generic futures
// library the teacher pack never used.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewFuture creates an incomplete Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete resolves the future exactly once; subsequent calls are no-ops.
func (f *Future) Complete(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Wait blocks until the future completes or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Context is the per-job snapshot lifecycle hook the master drives.
type Context interface {
	// OnExecutionStarted is called once a fresh executionId is allocated.
	OnExecutionStarted(executionID uint64)
	// OnExecutionTerminated is called from the finalizer after an
	// execution has ended, regardless of outcome.
	OnExecutionTerminated()
	// EnqueueSnapshot schedules a named snapshot; isTerminal flags it as
	// the final checkpoint taken before the job stops. The returned
	// future completes when the snapshot finishes (success or failure).
	EnqueueSnapshot(name string, isTerminal bool) *Future
	// TryBeginSnapshot attempts to start the currently enqueued terminal
	// snapshot immediately; idempotent if already started.
	TryBeginSnapshot() bool
	// TerminalSnapshotFuture returns the future for the in-flight
	// terminal snapshot, or nil if none is in flight.
	TerminalSnapshotFuture() *Future
}

// InMemory is a reference Context + Validator implementation: snapshots
// "complete" as soon as they are enqueued. It exists so the coordinator
// can be exercised without a real checkpoint store wired in.
type InMemory struct {
	mu               sync.Mutex
	terminalFuture   *Future
	terminalBegun    bool
	validSnapshotIDs map[string]int64
}

// NewInMemory creates an InMemory snapshot context/validator.
func NewInMemory() *InMemory {
	return &InMemory{validSnapshotIDs: make(map[string]int64)}
}

func (m *InMemory) OnExecutionStarted(executionID uint64) {}

func (m *InMemory) OnExecutionTerminated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminalFuture = nil
	m.terminalBegun = false
}

func (m *InMemory) EnqueueSnapshot(name string, isTerminal bool) *Future {
	future := NewFuture()
	if isTerminal {
		m.mu.Lock()
		m.terminalFuture = future
		m.mu.Unlock()
	}
	// The reference implementation completes immediately; a real
	// snapshot store would complete this asynchronously once the
	// checkpoint actually lands.
	future.Complete(nil)
	return future
}

func (m *InMemory) TryBeginSnapshot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminalBegun {
		return false
	}
	m.terminalBegun = true
	return true
}

func (m *InMemory) TerminalSnapshotFuture() *Future {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminalFuture
}

// RegisterSnapshot marks a (mapName, snapshotID) pair as a valid restore
// source, for use in tests and the daemon's bootstrap path.
func (m *InMemory) RegisterSnapshot(mapName string, snapshotID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validSnapshotIDs[mapName] = snapshotID
}

// Validate implements Validator.
func (m *InMemory) Validate(ctx context.Context, snapshotID int64, mapName, jobID, snapshotName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resolved, ok := m.validSnapshotIDs[mapName]
	if !ok {
		return 0, fmt.Errorf("snapshot: no snapshot data found in map %q for job %s", mapName, jobID)
	}
	if snapshotID >= 0 && resolved != snapshotID {
		return 0, fmt.Errorf("snapshot: map %q does not contain snapshot id %d", mapName, snapshotID)
	}
	return resolved, nil
}
