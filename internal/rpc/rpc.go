// Package rpc is the RPC invocation primitive the master dispatches
// InitExecution / StartExecution / TerminateExecution / GetLocalJobMetrics
// through. It is an external collaborator per spec.md §6: the master only
// needs invokeOnParticipants semantics (fan out, collect a
// member->response map, call a completion callback once after every
// per-response callback has run). The "sentinel values in union-typed
// maps" design note is implemented here as the StartExecutionResult /
// MetricsResult tagged variants instead of overloading a single slot.
package rpc

import (
	"context"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// StartExecutionResult is the tagged response to StartExecutionOperation:
// either a throwable (Err set) or a (metrics, throwable?) tuple, per
// spec.md §6. Completed-without-error carries Err == nil and Metrics set.
type StartExecutionResult struct {
	Metrics *metrics.RawJobMetrics
	Err     error
}

// MetricsResult is the tagged response to GetLocalJobMetricsOperation.
type MetricsResult struct {
	Metrics   *metrics.RawJobMetrics
	Completed bool // EXECUTION_COMPLETED sentinel
	Err       error
}

// ExecutionNotFound classifies a MetricsResult.Err that should trigger
// the metrics aggregator's 100ms retry (spec.md C7).
type ExecutionNotFound struct{ JobID string }

func (e *ExecutionNotFound) Error() string { return "execution not found for job " + e.JobID }

// Invoker is the contract consumed by internal/master. Every method fans
// a single logical operation out to all given participants concurrently
// and returns once every participant has replied (or the context is
// done); per-response callbacks, where present, run before the method
// returns.
type Invoker interface {
	// InitExecution dispatches phase A. Returns nil (no error) for a
	// participant that accepted initialization, or that participant's
	// throwable otherwise.
	InitExecution(ctx context.Context, jobID string, executionID uint64, membersViewVersion uint64, plans map[cluster.MemberInfo]planbuilder.Plan) map[cluster.MemberInfo]error

	// StartExecution dispatches phase B. onResponse, if non-nil, is
	// called once per participant as its reply arrives, before the
	// aggregate map is returned (mirroring the spec's per-response then
	// completion callback ordering on a single InvocationGroup).
	StartExecution(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo, onResponse func(cluster.MemberInfo, StartExecutionResult)) map[cluster.MemberInfo]StartExecutionResult

	// TerminateExecution broadcasts a stop signal. internal/master
	// neither retries nor logs the returned per-member failures; it
	// discards the result map.
	TerminateExecution(ctx context.Context, jobID string, executionID uint64, mode termmode.Mode, participants []cluster.MemberInfo) map[cluster.MemberInfo]error

	// GetLocalJobMetrics fetches per-member raw metrics.
	GetLocalJobMetrics(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo) map[cluster.MemberInfo]MetricsResult
}
