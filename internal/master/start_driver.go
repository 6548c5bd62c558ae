package master

import (
	"context"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// onInitStepCompleted implements the Start Protocol Driver's phase-A
// completion handler (C4, spec.md §4.4). A clean classification while
// still STARTING moves on to phase B; anything else tears the attempt
// down via TerminateExecution and finalizes.
func (j *Job) onInitStepCompleted(ctx context.Context, responses map[cluster.MemberInfo]error) {
	j.mu.Lock()
	plan := j.executionPlanMap
	mode := j.requestedTerminationMode
	wasForcefulCancel := j.wasForcefulCancel
	status := j.status
	j.mu.Unlock()

	err := classify(responses, plan, mode, wasForcefulCancel)

	if err == nil && status == StatusStarting {
		j.invokeStartExecution(ctx)
		return
	}

	j.mu.Lock()
	jobID := j.jobID
	executionID := j.executionID
	participants := j.participantList()
	j.mu.Unlock()

	j.deps.Invoker.TerminateExecution(ctx, jobID, executionID, terminateModeOrForceful(mode), participants)

	if err == nil {
		err = jobfail.NewIllegalState("cannot execute: status is %s", status)
	}
	_ = j.finalizeJob(err)
}

// invokeStartExecution dispatches phase B: the job is considered
// RUNNING as soon as dispatch begins, not once every participant has
// replied, so periodic snapshotting and status observers see RUNNING
// promptly even while the fan-out is still in flight.
func (j *Job) invokeStartExecution(ctx context.Context) {
	j.mu.Lock()
	executionID := j.executionID
	jobID := j.jobID
	plan := j.executionPlanMap
	participants := j.participantList()
	cb := newExecutionCompletionCallback(j, executionID)
	j.executionCompletionCallback = cb
	pendingMode := j.requestedTerminationMode
	j.status = StatusRunning
	guarantee := j.processingGuarantee
	j.mu.Unlock()

	if pendingMode != nil {
		j.handleTermination(*pendingMode)
	}
	if guarantee != GuaranteeNone {
		j.startPeriodicSnapshots()
	}

	responses := j.deps.Invoker.StartExecution(ctx, jobID, executionID, participants, cb.onResponse)

	rawByMember := make(map[cluster.MemberInfo]*metrics.RawJobMetrics, len(responses))
	errByMember := make(map[cluster.MemberInfo]error, len(responses))
	anyFailed := false
	for member, result := range responses {
		errByMember[member] = result.Err
		if result.Err != nil {
			anyFailed = true
			continue
		}
		rawByMember[member] = result.Metrics
	}

	if !anyFailed {
		j.mu.Lock()
		j.jobMetricsValue = metrics.Merge(rawByMember)
		j.mu.Unlock()
	}

	j.mu.Lock()
	reqMode := j.requestedTerminationMode
	wasForcefulCancel := j.wasForcefulCancel
	j.mu.Unlock()

	finalErr := classify(errByMember, plan, reqMode, wasForcefulCancel)
	j.onCompleteExecution(finalErr)
}

// onCompleteExecution implements phase B's completion handler. A
// graceful termination with a requested terminal snapshot waits for
// that snapshot to finish before finalizing; the snapshot's own outcome
// is not inspected and does not change the failure passed to finalizeJob.
func (j *Job) onCompleteExecution(failure error) {
	j.mu.Lock()
	status := j.status
	j.mu.Unlock()

	if status != StatusStarting && status != StatusRunning {
		failure = jobfail.NewIllegalState("completion ignored: status is %s", status)
	}

	if jtr, ok := failure.(*jobfail.JobTerminateRequested); ok && jtr.Mode.WithTerminalSnapshot {
		if future := j.deps.Snapshot.TerminalSnapshotFuture(); future != nil {
			j.deps.Exec.Submit(func(ctx context.Context) {
				_ = future.Wait(ctx)
				_ = j.finalizeJob(failure)
			})
			return
		}
	}

	_ = j.finalizeJob(failure)
}

func terminateModeOrForceful(mode *termmode.Mode) termmode.Mode {
	if mode != nil {
		return *mode
	}
	return termmode.CancelForceful
}
