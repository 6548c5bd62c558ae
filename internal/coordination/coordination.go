// Package coordination models the cluster-wide coordination service the
// master depends on for the three "outside the lock" actions the
// finalizer and plan resolver need: rescheduling a start attempt,
// restarting a job from scratch, and marking a job complete.
package coordination

import (
	"context"
	"time"

	"github.com/streamforge/jetmaster/internal/execsvc"
)

// Service is the contract consumed by internal/master.
type Service interface {
	// ScheduleRestart asks the coordination layer to re-invoke
	// TryStartJob for jobID after a backoff delay.
	ScheduleRestart(jobID string, retry func())
	// RestartJob asks the coordination layer to restart jobID
	// immediately (used when a graceful-restart termination completes).
	RestartJob(jobID string, retry func())
	// CompleteJob asks the coordination layer to record jobID's terminal
	// outcome. It runs synchronously and returns once the bookkeeping is
	// done; the caller completes the job's own future itself.
	CompleteJob(ctx context.Context, jobID string, timestamp time.Time, failure error) error
}

// Default is an execsvc-backed Service: restarts are simply rescheduled
// retries on the shared execution service, and job completion is a
// synchronous no-op hook point for callers (e.g. the jobstore) to persist
// final state. It plays the role the teacher's daemon/job_manager status
// bookkeeping plays for choo's Run rows.
type Default struct {
	exec            *execsvc.Service
	restartBackoff  time.Duration
	onCompleteHooks []func(jobID string, failure error)
}

// NewDefault creates a Default coordination service.
func NewDefault(exec *execsvc.Service, restartBackoff time.Duration) *Default {
	if restartBackoff <= 0 {
		restartBackoff = 2 * time.Second
	}
	return &Default{exec: exec, restartBackoff: restartBackoff}
}

// OnComplete registers a hook invoked whenever CompleteJob runs; the
// daemon uses it to log each job's terminal outcome.
func (d *Default) OnComplete(hook func(jobID string, failure error)) {
	d.onCompleteHooks = append(d.onCompleteHooks, hook)
}

func (d *Default) ScheduleRestart(jobID string, retry func()) {
	d.exec.Schedule(d.restartBackoff, func(ctx context.Context) { retry() })
}

func (d *Default) RestartJob(jobID string, retry func()) {
	d.exec.Submit(func(ctx context.Context) { retry() })
}

func (d *Default) CompleteJob(ctx context.Context, jobID string, timestamp time.Time, failure error) error {
	for _, hook := range d.onCompleteHooks {
		hook(jobID, failure)
	}
	return nil
}
