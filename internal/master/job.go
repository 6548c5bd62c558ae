// Package master implements the per-job execution controller: the
// component that drives a single job's distributed lifecycle across
// every cluster member participating in it. A Job owns its status, its
// execution bookkeeping, and the single lock that serializes every
// mutation of that state (see the master lock discipline in job.go and
// the component files alongside it: status.go (C1), termination.go
// (C2), plan_resolver.go (C3), start_driver.go (C4), classifier.go
// (C5), finalizer.go (C6), metrics.go (C7), participants.go (C8), and
// weaver.go (C9)).
package master

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/coordination"
	"github.com/streamforge/jetmaster/internal/dag"
	"github.com/streamforge/jetmaster/internal/events"
	"github.com/streamforge/jetmaster/internal/execsvc"
	"github.com/streamforge/jetmaster/internal/jobstore"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/rpc"
	"github.com/streamforge/jetmaster/internal/snapshot"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// ProcessingGuarantee selects whether a job snapshots at all and, if so,
// under which replay discipline.
type ProcessingGuarantee string

const (
	GuaranteeNone        ProcessingGuarantee = "NONE"
	GuaranteeAtLeastOnce ProcessingGuarantee = "AT_LEAST_ONCE"
	GuaranteeExactlyOnce ProcessingGuarantee = "EXACTLY_ONCE"
)

// Deps bundles every external collaborator spec.md §6 lists as out of
// scope for this component: cluster membership, RPC invocation, the job
// store, the snapshot subsystem, the coordination service, the
// execution service, and the plan builder.
type Deps struct {
	Cluster      cluster.Service
	Invoker      rpc.Invoker
	Store        *jobstore.Store
	Snapshot     snapshot.Context
	Validator    snapshot.Validator
	Coordination coordination.Service
	Exec         *execsvc.Service
	PlanBuilder  planbuilder.Builder
	Bus          *events.Bus

	// DecodeDAG turns a job's serialized definition into a DAG. The DAG
	// surface language is a Non-goal; this hook is the seam to whatever
	// decodes it.
	DecodeDAG func(serialized []byte) (*dag.DAG, error)

	// CompleteVertex notifies a single vertex that the job ended, mirroring
	// completeVertices' per-vertex hook. The per-node execution engine that
	// would implement this is out of scope; nil is a valid no-op Deps value.
	CompleteVertex func(vertexName string, failure error)
}

// Job is the per-job execution controller. Every component (C1-C9)
// operates on this struct under its single master lock (mu), per
// spec.md §5's lock discipline: status, requestedTerminationMode,
// executionPlanMap, executionId, vertices, executionCompletionFuture,
// the JobExecutionRecord fields, and executionCompletionCallback are
// mutated only while mu is held.
type Job struct {
	deps Deps

	jobID               string
	serializedDAG       []byte
	initialSnapshotName string // configured named snapshot, if any
	processingGuarantee ProcessingGuarantee
	autoscalingEnabled  bool
	snapshotInterval    time.Duration

	mu sync.Mutex

	status                        JobStatus
	requestedTerminationMode      *termmode.Mode
	wasForcefulCancel              bool
	executionCompletionCallback   *executionCompletionCallback
	vertices                      []string
	jobMetricsValue                metrics.JobMetrics
	partialMetrics                 map[cluster.MemberInfo]*metrics.RawJobMetrics
	membersWithCompletedExecution  map[cluster.MemberInfo]bool
	executionCompletionFuture      *signal
	jobCompletionFuture            *outcome
	executionID                    uint64
	executionPlanMap               map[cluster.MemberInfo]planbuilder.Plan
	membersView                    cluster.MembersView
	record                          *jobstore.Record
	stopPeriodicSnapshot            func()
}

// New creates a Job controller for jobID, reading its persisted record
// or initializing a fresh one.
func New(jobID string, serializedDAG []byte, guarantee ProcessingGuarantee, quorumSize int, autoscalingEnabled bool, snapshotInterval time.Duration, deps Deps) (*Job, error) {
	record, err := deps.Store.Get(jobID)
	if err != nil {
		if err != jobstore.ErrNotFound {
			return nil, err
		}
		record = &jobstore.Record{JobID: jobID, QuorumSize: quorumSize, SnapshotID: -1, OngoingSnapshotID: -1}
	}

	return &Job{
		deps:                deps,
		jobID:               jobID,
		serializedDAG:       serializedDAG,
		processingGuarantee: guarantee,
		autoscalingEnabled:  autoscalingEnabled,
		snapshotInterval:    snapshotInterval,
		status:              StatusNotRunning,
		record:              record,
		jobCompletionFuture: newOutcome(),
	}, nil
}

// JobID returns this job's stable identifier.
func (j *Job) JobID() string { return j.jobID }

// Status returns the job's current status.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// JobMetrics returns the last merged metrics view computed at phase-B
// completion.
func (j *Job) JobMetrics() metrics.JobMetrics {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jobMetricsValue
}

// JobCompletionFuture returns the future that completes at most once,
// across the job's entire lifetime, with its terminal outcome. It stays
// incomplete while the job is suspended or waiting for a restart.
func (j *Job) JobCompletionFuture() *outcome {
	return j.jobCompletionFuture
}

// SetInitialSnapshotName configures a named snapshot to restore from on
// a job's very first start attempt (before any execution has recorded
// its own ongoing snapshot).
func (j *Job) SetInitialSnapshotName(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.initialSnapshotName = name
}

func (j *Job) emit(e events.Event) {
	if j.deps.Bus == nil {
		return
	}
	e.JobID = j.jobID
	j.deps.Bus.Emit(e)
}

// participantList returns the current execution's participant set from
// the last built plan. Callers must hold j.mu.
func (j *Job) participantList() []cluster.MemberInfo {
	participants := make([]cluster.MemberInfo, 0, len(j.executionPlanMap))
	for m := range j.executionPlanMap {
		participants = append(participants, m)
	}
	return participants
}

func (j *Job) snapshotDataMapName() string {
	return fmt.Sprintf("successful-snapshot-data.%s", j.jobID)
}

func exportedSnapshotMapName(name string) string {
	return fmt.Sprintf("exported-snapshot.%s", name)
}

// startPeriodicSnapshots begins the periodic snapshot scheduler once a
// job enters RUNNING with a processing guarantee enabled (spec.md §4.4
// step 5), replacing any scheduler left over from a previous attempt.
func (j *Job) startPeriodicSnapshots() {
	j.mu.Lock()
	if j.stopPeriodicSnapshot != nil {
		j.stopPeriodicSnapshot()
		j.stopPeriodicSnapshot = nil
	}
	interval := j.snapshotInterval
	jobID := j.jobID
	j.mu.Unlock()

	if interval <= 0 {
		return
	}

	stop := j.deps.Exec.SchedulePeriodic(interval, func(ctx context.Context) {
		j.deps.Snapshot.EnqueueSnapshot(exportedSnapshotMapName(jobID), false)
	})

	j.mu.Lock()
	j.stopPeriodicSnapshot = stop
	j.mu.Unlock()
}
