package master

import (
	"context"
	"fmt"
	"time"

	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// RequestTermination implements the Termination Handler (C2, spec.md
// §4.2). It returns the job's completion future; on rejection it
// returns a non-empty reason string instead of an error, since
// rejection here is a normal, loggable outcome rather than a fault.
func (j *Job) RequestTermination(ctx context.Context, mode termmode.Mode, allowWhileExportingSnapshot bool) (future *outcome, reason string) {
	j.mu.Lock()

	if j.processingGuarantee == GuaranteeNone && mode != termmode.CancelGraceful {
		mode = mode.WithoutSnapshot()
	}

	switch j.status {
	case StatusSuspendedExportingSnapshot:
		if !allowWhileExportingSnapshot {
			f := j.jobCompletionFuture
			j.mu.Unlock()
			return f, "Cannot cancel when job status is SUSPENDED_EXPORTING_SNAPSHOT"
		}
	case StatusSuspended:
		if mode != termmode.CancelForceful {
			f := j.jobCompletionFuture
			j.mu.Unlock()
			return f, "Job is SUSPENDED"
		}
	}

	if j.requestedTerminationMode != nil {
		current := *j.requestedTerminationMode
		f := j.jobCompletionFuture
		if current == termmode.CancelForceful && mode == termmode.CancelForceful {
			j.mu.Unlock()
			return f, ""
		}
		reason := fmt.Sprintf("Job is already terminating in mode: %s", current.Name())
		j.mu.Unlock()
		return f, reason
	}

	j.requestedTerminationMode = &mode
	if mode == termmode.CancelForceful {
		j.wasForcefulCancel = true
	}

	prevStatus := j.status

	if prevStatus == StatusSuspended || prevStatus == StatusSuspendedExportingSnapshot {
		j.status = StatusFailed
		j.jobCompletionFuture.Complete(jobfail.Cancelled)
	}

	if mode.WithTerminalSnapshot {
		j.deps.Snapshot.EnqueueSnapshot(j.snapshotDataMapName(), true)
	}

	future = j.jobCompletionFuture
	j.mu.Unlock()

	switch prevStatus {
	case StatusSuspended:
		_ = j.deps.Coordination.CompleteJob(ctx, j.jobID, time.Now(), jobfail.Cancelled)
	case StatusRunning, StatusStarting:
		j.handleTermination(mode)
	}

	return future, ""
}

// GracefullyTerminate requests a cooperative, terminal-snapshotting
// cancel and returns the job's completion future.
func (j *Job) GracefullyTerminate(ctx context.Context) *outcome {
	future, _ := j.RequestTermination(ctx, termmode.CancelGraceful, false)
	return future
}

// OnParticipantGracefulShutdown is called when member announces planned
// shutdown. It does not itself request termination: the departing
// member's RPCs will fail and the classifier will surface that as a
// topology change in the ordinary course of the execution. Callers use
// the returned future to wait for this job to finish before letting the
// member leave, avoiding a restart storm.
func (j *Job) OnParticipantGracefulShutdown() *outcome {
	return j.jobCompletionFuture
}

// ResumeJob transitions a SUSPENDED job back to NOT_RUNNING and attempts
// to start it again.
func (j *Job) ResumeJob(ctx context.Context, idGen func() uint64) error {
	j.mu.Lock()
	if j.status != StatusSuspended {
		status := j.status
		j.mu.Unlock()
		return jobfail.NewIllegalState("resume requested but status is %s", status)
	}
	j.status = StatusNotRunning
	j.mu.Unlock()

	return j.TryStartJob(ctx, idGen)
}

// MaybeScaleUp requests a graceful restart if autoscaling is enabled and
// the job is currently RUNNING, reporting whether it did so.
func (j *Job) MaybeScaleUp(ctx context.Context, dataMembersCount int) bool {
	j.mu.Lock()
	eligible := j.autoscalingEnabled && j.status == StatusRunning
	j.mu.Unlock()
	if !eligible {
		return false
	}
	j.RequestTermination(ctx, termmode.RestartGraceful, false)
	return true
}

// handleTermination is the post-unlock half of RequestTermination
// (spec.md §4.2): begin the configured terminal snapshot, or cancel the
// in-flight execution's invocations outright.
func (j *Job) handleTermination(mode termmode.Mode) {
	if mode.WithTerminalSnapshot {
		j.deps.Snapshot.TryBeginSnapshot()
		return
	}

	j.mu.Lock()
	cb := j.executionCompletionCallback
	j.mu.Unlock()

	if cb != nil {
		cb.cancelInvocations(&mode)
	}
}
