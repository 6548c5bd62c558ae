package main

import (
	"context"
	"sync"
	"time"

	"github.com/streamforge/jetmaster/internal/metrics"
)

// localParticipant is a trivial, in-process rpc.ParticipantServer: it
// accepts every operation immediately and reports a fixed counter as its
// local metrics. The per-node execution engine that would actually run
// DAG vertices is out of scope (spec.md Non-goals); this stub exists so
// masterd can drive the full coordinator loop against a real gRPC
// connection rather than only the in-process rpc.Fake test double.
type localParticipant struct {
	mu         sync.Mutex
	executions map[executionKey]bool
}

type executionKey struct {
	jobID       string
	executionID uint64
}

func newLocalParticipant() *localParticipant {
	return &localParticipant{executions: make(map[executionKey]bool)}
}

func (p *localParticipant) InitExecution(ctx context.Context, jobID string, executionID uint64, membersViewVersion uint64, serializedPlan []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.executions[executionKey{jobID, executionID}] = false
	return nil
}

func (p *localParticipant) StartExecution(ctx context.Context, jobID string, executionID uint64) (*metrics.RawJobMetrics, error) {
	p.mu.Lock()
	p.executions[executionKey{jobID, executionID}] = true
	p.mu.Unlock()

	return &metrics.RawJobMetrics{
		Timestamp: time.Now(),
		Values: []metrics.NamedValue{
			{Name: "source.emittedCount", Value: 1},
			{Name: "sink.receivedCount", Value: 1},
		},
	}, nil
}

func (p *localParticipant) TerminateExecution(ctx context.Context, jobID string, executionID uint64, modeName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.executions, executionKey{jobID, executionID})
	return nil
}

func (p *localParticipant) GetLocalJobMetrics(ctx context.Context, jobID string, executionID uint64) (*metrics.RawJobMetrics, bool, error) {
	p.mu.Lock()
	completed := p.executions[executionKey{jobID, executionID}]
	p.mu.Unlock()

	return &metrics.RawJobMetrics{
		Timestamp: time.Now(),
		Values: []metrics.NamedValue{
			{Name: "source.emittedCount", Value: 1},
			{Name: "sink.receivedCount", Value: 1},
		},
	}, completed, nil
}
