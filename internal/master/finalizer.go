package master

import (
	"context"
	"time"

	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// finalizeJob implements the Finalizer (C6, spec.md §4.6): it computes
// the next status and a deferred, non-synchronized action under the
// lock, then runs that action after releasing it, following the same
// lock-then-defer-then-unlock-then-run discipline the teacher's cleanup
// path uses.
func (j *Job) finalizeJob(failure error) error {
	j.mu.Lock()

	if j.status.IsTerminal() {
		j.mu.Unlock()
		return nil
	}

	j.completeVertices(failure)

	j.membersWithCompletedExecution = nil
	j.partialMetrics = nil
	cancelled := j.wasForcefulCancel || wasCancelledErr(failure)
	j.requestedTerminationMode = nil
	j.executionCompletionCallback = nil

	if j.stopPeriodicSnapshot != nil {
		j.stopPeriodicSnapshot()
		j.stopPeriodicSnapshot = nil
	}

	var action termmode.ActionAfterTerminate
	if jtr, ok := failure.(*jobfail.JobTerminateRequested); ok {
		action = jtr.Mode.ActionAfterTerminate
	}

	j.deps.Snapshot.OnExecutionTerminated()

	var deferred func()

	switch {
	case action == termmode.ActionRestart:
		j.status = StatusNotRunning
		jobID := j.jobID
		deferred = func() { j.deps.Coordination.RestartJob(jobID, func() {}) }

	case jobfail.Restartable(failure) && j.autoscalingEnabled && !cancelled:
		j.status = StatusNotRunning
		jobID := j.jobID
		deferred = func() { j.deps.Coordination.ScheduleRestart(jobID, func() {}) }

	case action == termmode.ActionSuspend ||
		(jobfail.Restartable(failure) && !cancelled && !j.autoscalingEnabled && j.processingGuarantee != GuaranteeNone):
		j.status = StatusSuspended
		j.record.Suspended = true
		jobID := j.jobID
		deferred = func() { _ = j.deps.Store.SetSuspended(jobID, true) }

	case wasLocalMemberReset(failure):
		j.status = StatusFailed
		failure = jobfail.Cancelled
		deferred = func() { j.jobCompletionFuture.Complete(failure) }

	default:
		if jobfail.IsSuccess(failure) {
			j.status = StatusCompleted
		} else {
			j.status = StatusFailed
		}
		jobID := j.jobID
		finalFailure := failure
		deferred = func() {
			_ = j.deps.Coordination.CompleteJob(context.Background(), jobID, time.Now(), finalFailure)
			j.jobCompletionFuture.Complete(finalFailure)
		}
	}

	completionFuture := j.executionCompletionFuture
	j.mu.Unlock()

	if completionFuture != nil {
		completionFuture.Complete()
	}
	if deferred != nil {
		deferred()
	}

	return nil
}

// completeVertices notifies every vertex in the current execution's
// snapshot that the job ended, swallowing any hook error: finalization
// must never fail partway through.
func (j *Job) completeVertices(failure error) {
	if j.deps.CompleteVertex == nil {
		return
	}
	for _, name := range j.vertices {
		j.completeOneVertex(name, failure)
	}
}

func (j *Job) completeOneVertex(name string, failure error) {
	defer func() { recover() }()
	j.deps.CompleteVertex(name, failure)
}
