package master

import (
	"context"
	"sync/atomic"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/rpc"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// executionCompletionCallback is attached to one execution attempt's
// phase-B dispatch (C8, spec.md §4.8). It records which participants
// have reported completion, caches their metrics for the window the
// metrics aggregator races against, and guarantees at-most-once
// dispatch of TerminateExecutionOperation no matter how many times it
// races a per-response failure against an external termination request.
type executionCompletionCallback struct {
	job         *Job
	executionID uint64
	cancelled   atomic.Bool
}

func newExecutionCompletionCallback(job *Job, executionID uint64) *executionCompletionCallback {
	return &executionCompletionCallback{job: job, executionID: executionID}
}

// onResponse is the per-response half of phase B: it records the
// responding member's completion and metrics, then cancels the rest of
// the group if the response was a genuine failure (not a cooperative
// terminal-snapshot stop).
func (c *executionCompletionCallback) onResponse(member cluster.MemberInfo, result rpc.StartExecutionResult) {
	j := c.job

	j.mu.Lock()
	if j.membersWithCompletedExecution == nil {
		j.membersWithCompletedExecution = make(map[cluster.MemberInfo]bool)
	}
	j.membersWithCompletedExecution[member] = true
	if result.Err == nil && result.Metrics != nil {
		if j.partialMetrics == nil {
			j.partialMetrics = make(map[cluster.MemberInfo]*metrics.RawJobMetrics)
		}
		j.partialMetrics[member] = result.Metrics
	}
	j.mu.Unlock()

	if result.Err == nil {
		return
	}
	if _, ok := jobfail.Peel(result.Err).(*jobfail.TerminatedWithSnapshot); ok {
		return
	}
	c.cancelInvocations(nil)
}

// cancelInvocations broadcasts TerminateExecutionOperation to every
// participant of this execution exactly once (P5), regardless of how
// many callers race to invoke it.
func (c *executionCompletionCallback) cancelInvocations(mode *termmode.Mode) {
	if !c.cancelled.CompareAndSwap(false, true) {
		return
	}

	j := c.job
	j.mu.Lock()
	m := termmode.CancelForceful
	switch {
	case mode != nil:
		m = *mode
	case j.requestedTerminationMode != nil:
		m = *j.requestedTerminationMode
	}
	jobID := j.jobID
	executionID := c.executionID
	participants := j.participantList()
	j.mu.Unlock()

	j.deps.Exec.Submit(func(ctx context.Context) {
		j.deps.Invoker.TerminateExecution(ctx, jobID, executionID, m, participants)
	})
}
