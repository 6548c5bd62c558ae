// Package planbuilder models the external plan-builder collaborator: the
// component that turns a DAG plus a pinned membership view into a
// concrete per-member ExecutionPlan. The DAG surface language and the
// partitioning strategy it implies are explicitly out of scope (Non-goal);
// this package only needs to produce *something* addressed by member, so
// the Start Protocol Driver has a plan to dispatch.
package planbuilder

import (
	"context"
	"fmt"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/dag"
)

// Plan is the opaque per-member payload the coordinator dispatches via
// InitExecutionOperation. Its internal shape is owned by the worker-side
// execution runtime (out of scope here); the coordinator only needs to
// serialize and address it.
type Plan struct {
	JobID        string
	ExecutionID  uint64
	SerializedOp []byte
}

// Builder is the contract consumed by the Plan Resolver (C3).
type Builder interface {
	Build(ctx context.Context, view cluster.MembersView, d *dag.DAG, jobID string, executionID uint64, ongoingSnapshotID int64) (map[cluster.MemberInfo]Plan, error)
}

// RoundRobin is a reference Builder: it gives every member of the pinned
// set a plan for the whole DAG, serialized as the member's UUID followed
// by the comma-separated vertex names. It does not split vertices or
// processors between members. It exists purely so the
// coordinator has a real map[MemberInfo]Plan to drive the start protocol
// with; a production plan builder belongs to the worker-side engine.
type RoundRobin struct{}

// Build implements Builder.
func (RoundRobin) Build(ctx context.Context, view cluster.MembersView, d *dag.DAG, jobID string, executionID uint64, ongoingSnapshotID int64) (map[cluster.MemberInfo]Plan, error) {
	if len(view.Members) == 0 {
		return nil, fmt.Errorf("planbuilder: empty members view")
	}
	plans := make(map[cluster.MemberInfo]Plan, len(view.Members))
	for _, m := range view.Members {
		plans[m] = Plan{
			JobID:        jobID,
			ExecutionID:  executionID,
			SerializedOp: serialize(d, m),
		}
	}
	return plans, nil
}

func serialize(d *dag.DAG, m cluster.MemberInfo) []byte {
	// A real plan builder compiles per-vertex processor assignments;
	// here we only need a stable, member-specific payload so different
	// participants can be told apart in tests and logs.
	buf := []byte(m.UUID.String() + ":")
	for _, v := range d.Vertices() {
		buf = append(buf, []byte(v.Name+",")...)
	}
	return buf
}
