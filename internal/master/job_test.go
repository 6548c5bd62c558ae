package master

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// setRunning puts job directly into a RUNNING execution with member as
// its sole participant, bypassing TryStartJob's network-facing half so
// termination/scale-up behavior can be exercised in isolation.
func setRunning(job *Job, member cluster.MemberInfo) {
	job.mu.Lock()
	defer job.mu.Unlock()
	job.status = StatusRunning
	job.executionID = 1
	job.executionPlanMap = map[cluster.MemberInfo]planbuilder.Plan{member: {}}
	job.executionCompletionCallback = newExecutionCompletionCallback(job, 1)
}

func TestTryStartJob_HappyPathCompletesJob(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)

	err := job.TryStartJob(context.Background(), sequentialIDGen())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, job.Status())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, job.JobCompletionFuture().Wait(ctx))
}

func TestTryStartJob_ClusterNotSafeToStartSchedulesRestart(t *testing.T) {
	h := newTestHarness(t)
	h.cluster.SetSafeToStart(false)
	job := h.newJob(t, GuaranteeNone)

	err := job.TryStartJob(context.Background(), sequentialIDGen())
	require.NoError(t, err)
	require.Equal(t, StatusNotRunning, job.Status())

	// Let any pending retry succeed so the background goroutine converges
	// instead of retrying forever for the life of the test process.
	h.cluster.SetSafeToStart(true)
}

func TestTryStartJob_ForcefulCancelShortCircuits(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)

	job.mu.Lock()
	job.wasForcefulCancel = true
	job.mu.Unlock()

	err := job.TryStartJob(context.Background(), sequentialIDGen())
	require.NoError(t, err)

	// The short-circuit must still finalize the job instead of leaving
	// it stuck at NOT_RUNNING with wasForcefulCancel permanently set.
	require.Equal(t, StatusFailed, job.Status())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.ErrorIs(t, job.JobCompletionFuture().Wait(ctx), jobfail.Cancelled)
}

func TestRequestTermination_ForcefulWhileRunningBroadcastsTerminate(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)
	setRunning(job, h.local)

	future, reason := job.RequestTermination(context.Background(), termmode.CancelForceful, false)
	require.Empty(t, reason)
	require.NotNil(t, future)

	require.Eventually(t, func() bool {
		job.mu.Lock()
		cb := job.executionCompletionCallback
		job.mu.Unlock()
		return cb != nil && cb.cancelled.Load()
	}, time.Second, 10*time.Millisecond)

	var sawTerminate bool
	for _, call := range h.invoker.Calls {
		if call.Method == "TerminateExecution" {
			sawTerminate = true
		}
	}
	require.True(t, sawTerminate, "expected TerminateExecution to have been dispatched")
}

func TestRequestTermination_SecondForcefulCancelIsAcceptedAsNoOp(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)
	setRunning(job, h.local)

	first, reason := job.RequestTermination(context.Background(), termmode.CancelForceful, false)
	require.Empty(t, reason)

	second, reason := job.RequestTermination(context.Background(), termmode.CancelForceful, false)
	require.Empty(t, reason)
	require.Same(t, first, second, "a second forceful cancel must return the same future, not error")
}

func TestRequestTermination_RejectsCancelWhileSuspendedExportingSnapshot(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)

	job.mu.Lock()
	job.status = StatusSuspendedExportingSnapshot
	job.mu.Unlock()

	_, reason := job.RequestTermination(context.Background(), termmode.CancelGraceful, false)
	require.NotEmpty(t, reason)
}

func TestResumeJob_RejectsNonSuspendedStatus(t *testing.T) {
	h := newTestHarness(t)
	job := h.newJob(t, GuaranteeNone)

	err := job.ResumeJob(context.Background(), sequentialIDGen())
	var illegal *jobfail.IllegalState
	require.ErrorAs(t, err, &illegal)
}

func TestMaybeScaleUp_RequiresAutoscalingAndRunningStatus(t *testing.T) {
	h := newTestHarness(t)

	notAutoscaling := h.newJob(t, GuaranteeNone)
	setRunning(notAutoscaling, h.local)
	require.False(t, notAutoscaling.MaybeScaleUp(context.Background(), 2))

	autoscalingButNotRunning, err := New("job-not-running", []byte("unused"), GuaranteeNone, 1, true, time.Second, h.deps)
	require.NoError(t, err)
	require.False(t, autoscalingButNotRunning.MaybeScaleUp(context.Background(), 2))

	autoscalingRunning, err := New("job-running", []byte("unused"), GuaranteeNone, 1, true, time.Second, h.deps)
	require.NoError(t, err)
	setRunning(autoscalingRunning, h.local)
	require.True(t, autoscalingRunning.MaybeScaleUp(context.Background(), 2))
}
