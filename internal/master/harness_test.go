package master

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/coordination"
	"github.com/streamforge/jetmaster/internal/dag"
	"github.com/streamforge/jetmaster/internal/events"
	"github.com/streamforge/jetmaster/internal/execsvc"
	"github.com/streamforge/jetmaster/internal/jobstore"
	"github.com/streamforge/jetmaster/internal/rpc"
	"github.com/streamforge/jetmaster/internal/snapshot"
	"github.com/streamforge/jetmaster/internal/planbuilder"
)

// testHarness wires a Job against the pack's reference implementations
// and an rpc.Fake invoker, so internal/master's start/terminate/finalize
// protocol can be exercised synchronously without a network.
type testHarness struct {
	deps    Deps
	invoker *rpc.Fake
	cluster *cluster.Static
	snap    *snapshot.InMemory
	exec    *execsvc.Service
	local   cluster.MemberInfo
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	store, err := jobstore.Open(filepath.Join(t.TempDir(), "jobstore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	local := cluster.MemberInfo{UUID: uuid.New(), Address: "local:1"}
	clusterSvc := cluster.NewStatic(local, []cluster.MemberInfo{local})

	snap := snapshot.NewInMemory()
	exec := execsvc.New(4)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = exec.Shutdown(ctx)
	})

	coord := coordination.NewDefault(exec, 50*time.Millisecond)
	invoker := rpc.NewFake()
	bus := events.NewBus()

	deps := Deps{
		Cluster:      clusterSvc,
		Invoker:      invoker,
		Store:        store,
		Snapshot:     snap,
		Validator:    snap,
		Coordination: coord,
		Exec:         exec,
		PlanBuilder:  planbuilder.RoundRobin{},
		Bus:          bus,
		DecodeDAG: func([]byte) (*dag.DAG, error) {
			d := dag.New()
			_, err := d.AddVertex("v1")
			return d, err
		},
	}

	return &testHarness{deps: deps, invoker: invoker, cluster: clusterSvc, snap: snap, exec: exec, local: local}
}

func (h *testHarness) newJob(t *testing.T, guarantee ProcessingGuarantee) *Job {
	t.Helper()
	job, err := New("job-"+uuid.NewString(), []byte("unused"), guarantee, 1, false, 10*time.Millisecond, h.deps)
	require.NoError(t, err)
	return job
}

func sequentialIDGen() func() uint64 {
	var next uint64
	return func() uint64 {
		next++
		return next
	}
}
