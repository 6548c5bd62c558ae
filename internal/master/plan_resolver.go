package master

import (
	"context"
	"fmt"

	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// TryStartJob implements the Plan Resolver (C3, spec.md §4.3): it
// attempts to move a job from NOT_RUNNING through STARTING and dispatch
// phase A. idGen supplies a fresh, strictly monotonic executionId for a
// successful attempt (P3). A no-op attempt (wrong status, quorum
// absent, cluster not safe to start) returns nil, not an error:
// refusing to start now is itself a normal outcome.
func (j *Job) TryStartJob(ctx context.Context, idGen func() uint64) error {
	j.mu.Lock()

	j.record.Executed = true
	j.membersWithCompletedExecution = nil
	j.partialMetrics = nil

	if j.wasForcefulCancel {
		j.mu.Unlock()
		// A forceful cancel that arrived while NOT_RUNNING (e.g. during a
		// scheduleRestart backoff window) never reached termination.go's
		// post-unlock switch, so nothing has completed
		// jobCompletionFuture yet. Finalize here instead of returning
		// bare: otherwise the job is stuck at NOT_RUNNING forever and
		// wasForcefulCancel permanently blocks every future start.
		return j.finalizeJob(jobfail.Cancelled)
	}

	if j.status != StatusNotRunning {
		j.mu.Unlock()
		return nil
	}

	if j.record.Suspended {
		j.record.Suspended = false
		if err := j.deps.Store.Put(j.record); err != nil {
			j.mu.Unlock()
			return fmt.Errorf("master: persist cleared suspended flag: %w", err)
		}
	}

	quorumSize := j.record.QuorumSize
	if !j.deps.Cluster.IsQuorumPresent(quorumSize) || !j.deps.Cluster.ShouldStartJobs() {
		j.mu.Unlock()
		j.scheduleRestart(ctx, idGen)
		return nil
	}

	j.status = StatusStarting
	if err := j.deps.Store.Put(j.record); err != nil {
		j.status = StatusNotRunning
		j.mu.Unlock()
		return fmt.Errorf("master: persist job execution record: %w", err)
	}

	if j.requestedTerminationMode != nil {
		mode := *j.requestedTerminationMode
		if mode.ActionAfterTerminate == termmode.ActionRestart {
			j.requestedTerminationMode = nil
		} else {
			j.status = StatusNotRunning
			j.mu.Unlock()
			return j.finalizeJob(&jobfail.JobTerminateRequested{Mode: mode})
		}
	}

	d, err := j.deps.DecodeDAG(j.serializedDAG)
	if err != nil {
		j.status = StatusNotRunning
		j.mu.Unlock()
		return j.finalizeJob(jobfail.NewUserError(err))
	}

	vertexNames := make([]string, 0, len(d.Vertices()))
	for _, v := range d.Vertices() {
		vertexNames = append(vertexNames, v.Name)
	}
	j.vertices = vertexNames

	executionID := idGen()
	j.executionID = executionID
	j.deps.Snapshot.OnExecutionStarted(executionID)
	j.executionCompletionFuture = newSignal()

	membersView := j.deps.Cluster.MembersView()
	j.membersView = membersView
	record := *j.record
	initialSnapshotName := j.initialSnapshotName

	j.mu.Unlock()

	woven := d
	switch {
	case record.SnapshotID >= 0:
		woven, err = spliceSnapshotRestore(ctx, j.deps.Validator, d, record.SnapshotID, record.SuccessfulSnapshotDataMapName, j.jobID, "")
	case initialSnapshotName != "":
		woven, err = spliceSnapshotRestore(ctx, j.deps.Validator, d, -1, exportedSnapshotMapName(initialSnapshotName), j.jobID, initialSnapshotName)
	}
	if err != nil {
		return j.finalizeJob(jobfail.NewUserError(err))
	}

	plans, err := j.deps.PlanBuilder.Build(ctx, membersView, woven, j.jobID, executionID, record.OngoingSnapshotID)
	if err != nil {
		return j.finalizeJob(jobfail.NewUserError(err))
	}

	j.mu.Lock()
	j.executionPlanMap = plans
	j.mu.Unlock()

	responses := j.deps.Invoker.InitExecution(ctx, j.jobID, executionID, membersView.Version, plans)
	j.onInitStepCompleted(ctx, responses)
	return nil
}

// scheduleRestart asks the coordination service to re-invoke TryStartJob
// later, used when quorum is absent or the cluster isn't settled enough
// to start new work.
func (j *Job) scheduleRestart(ctx context.Context, idGen func() uint64) {
	j.mu.Lock()
	j.status = StatusNotRunning
	j.mu.Unlock()

	j.deps.Coordination.ScheduleRestart(j.jobID, func() {
		_ = j.TryStartJob(ctx, idGen)
	})
}
