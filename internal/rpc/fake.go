package rpc

import (
	"context"
	"sync"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// Fake is a programmable, in-process Invoker double for internal/master's
// unit tests: it never dials a network connection, so a test can drive the
// full start/terminate/metrics protocol deterministically and inject
// per-member failures without standing up real grpc servers.
type Fake struct {
	mu sync.Mutex

	// InitErr, StartResult, TerminateErr, MetricsResult key by member
	// UUID string; a missing entry defaults to success.
	InitErr       map[string]error
	StartResult   map[string]StartExecutionResult
	TerminateErr  map[string]error
	MetricsResult map[string]MetricsResult

	// Calls records every invocation for assertions, in call order.
	Calls []FakeCall
}

// FakeCall records one invocation against the fake for test assertions.
type FakeCall struct {
	Method      string
	JobID       string
	ExecutionID uint64
	Member      cluster.MemberInfo
}

// NewFake builds an empty Fake; every participant succeeds by default.
func NewFake() *Fake {
	return &Fake{
		InitErr:       map[string]error{},
		StartResult:   map[string]StartExecutionResult{},
		TerminateErr:  map[string]error{},
		MetricsResult: map[string]MetricsResult{},
	}
}

func (f *Fake) record(call FakeCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *Fake) InitExecution(ctx context.Context, jobID string, executionID uint64, membersViewVersion uint64, plans map[cluster.MemberInfo]planbuilder.Plan) map[cluster.MemberInfo]error {
	results := make(map[cluster.MemberInfo]error, len(plans))
	for member := range plans {
		f.record(FakeCall{Method: "InitExecution", JobID: jobID, ExecutionID: executionID, Member: member})
		results[member] = f.InitErr[member.UUID.String()]
	}
	return results
}

func (f *Fake) StartExecution(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo, onResponse func(cluster.MemberInfo, StartExecutionResult)) map[cluster.MemberInfo]StartExecutionResult {
	results := make(map[cluster.MemberInfo]StartExecutionResult, len(participants))
	for _, member := range participants {
		f.record(FakeCall{Method: "StartExecution", JobID: jobID, ExecutionID: executionID, Member: member})
		result, ok := f.StartResult[member.UUID.String()]
		if !ok {
			result = StartExecutionResult{Metrics: &metrics.RawJobMetrics{}}
		}
		results[member] = result
		if onResponse != nil {
			onResponse(member, result)
		}
	}
	return results
}

func (f *Fake) TerminateExecution(ctx context.Context, jobID string, executionID uint64, mode termmode.Mode, participants []cluster.MemberInfo) map[cluster.MemberInfo]error {
	results := make(map[cluster.MemberInfo]error, len(participants))
	for _, member := range participants {
		f.record(FakeCall{Method: "TerminateExecution", JobID: jobID, ExecutionID: executionID, Member: member})
		results[member] = f.TerminateErr[member.UUID.String()]
	}
	return results
}

func (f *Fake) GetLocalJobMetrics(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo) map[cluster.MemberInfo]MetricsResult {
	results := make(map[cluster.MemberInfo]MetricsResult, len(participants))
	for _, member := range participants {
		f.record(FakeCall{Method: "GetLocalJobMetrics", JobID: jobID, ExecutionID: executionID, Member: member})
		result, ok := f.MetricsResult[member.UUID.String()]
		if !ok {
			result = MetricsResult{Metrics: &metrics.RawJobMetrics{}, Completed: true}
		}
		results[member] = result
	}
	return results
}

var _ Invoker = (*Fake)(nil)
