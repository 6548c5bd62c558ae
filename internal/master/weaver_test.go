package master

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/jetmaster/internal/dag"
	"github.com/streamforge/jetmaster/internal/snapshot"
)

func twoVertexDAG(t *testing.T) *dag.DAG {
	t.Helper()
	d := dag.New()
	_, err := d.AddVertex("source")
	require.NoError(t, err)
	sink, err := d.AddVertex("sink")
	require.NoError(t, err)
	require.NoError(t, d.Connect(&dag.Edge{From: "source", To: "sink", ToOrdinal: 0}))
	sink.NextFreeInboundOrdinal++
	return d
}

func TestSpliceSnapshotRestore_PrependsReadAndExplode(t *testing.T) {
	validator := snapshot.NewInMemory()
	validator.RegisterSnapshot("exported-snapshot.snap-1", 7)

	d := twoVertexDAG(t)
	woven, err := spliceSnapshotRestore(context.Background(), validator, d, 7, "exported-snapshot.snap-1", "job-1", "snap-1")
	require.NoError(t, err)

	_, ok := woven.Vertex(snapshotReadVertex)
	require.True(t, ok, "expected %s vertex", snapshotReadVertex)
	_, ok = woven.Vertex(snapshotExplodeVertex)
	require.True(t, ok, "expected %s vertex", snapshotExplodeVertex)

	// Original vertices are untouched save for their inbound ordinal bump.
	_, ok = woven.Vertex("source")
	require.True(t, ok)
	_, ok = woven.Vertex("sink")
	require.True(t, ok)

	var restoreEdges int
	for _, e := range woven.Edges() {
		if e.From == snapshotExplodeVertex {
			restoreEdges++
			require.True(t, e.Distributed)
			require.True(t, e.Partitioned)
			require.Equal(t, dag.PriorityMin, e.Priority)
			require.Equal(t, restorePartitionKey, e.PartitionKey)
		}
	}
	require.Equal(t, 2, restoreEdges, "expected one restore edge per original vertex")

	// The original DAG passed in must be untouched (spliced on a clone).
	_, ok = d.Vertex(snapshotReadVertex)
	require.False(t, ok)
}

func TestSpliceSnapshotRestore_InvalidSnapshotFails(t *testing.T) {
	validator := snapshot.NewInMemory() // nothing registered
	d := twoVertexDAG(t)

	_, err := spliceSnapshotRestore(context.Background(), validator, d, -1, "exported-snapshot.missing", "job-1", "missing")
	require.Error(t, err)
}
