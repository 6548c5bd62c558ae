package master

import (
	"context"
	"fmt"

	"github.com/streamforge/jetmaster/internal/dag"
	"github.com/streamforge/jetmaster/internal/snapshot"
)

const (
	snapshotReadVertex    = "__snapshot_read"
	snapshotExplodeVertex = "__snapshot_explode"
	restorePartitionKey   = "entry_key"
)

// spliceSnapshotRestore implements the Snapshot-Restore Weaver (C9,
// spec.md §4.9). It validates the restore source, then returns a clone
// of d with a snapshot-read -> snapshot-explode sub-graph prepended,
// feeding every original vertex through a distributed, partitioned,
// minimum-priority restore edge so restored state drains ahead of any
// regular input on the same vertex.
func spliceSnapshotRestore(ctx context.Context, validator snapshot.Validator, d *dag.DAG, snapshotID int64, mapName, jobID, snapshotName string) (*dag.DAG, error) {
	if _, err := validator.Validate(ctx, snapshotID, mapName, jobID, snapshotName); err != nil {
		return nil, fmt.Errorf("master: validate restore snapshot: %w", err)
	}

	woven := d.Clone()
	originalVertices := woven.Vertices()

	if _, err := woven.AddVertex(snapshotReadVertex); err != nil {
		return nil, fmt.Errorf("master: add snapshot-read vertex: %w", err)
	}
	if _, err := woven.AddVertex(snapshotExplodeVertex); err != nil {
		return nil, fmt.Errorf("master: add snapshot-explode vertex: %w", err)
	}

	if err := woven.Connect(&dag.Edge{
		From:     snapshotReadVertex,
		To:       snapshotExplodeVertex,
		Isolated: true,
	}); err != nil {
		return nil, err
	}

	for index, v := range originalVertices {
		target, _ := woven.Vertex(v.Name)
		inboundOrdinal := target.NextFreeInboundOrdinal
		target.NextFreeInboundOrdinal++

		if err := woven.Connect(&dag.Edge{
			From:         snapshotExplodeVertex,
			To:           v.Name,
			FromOrdinal:  index,
			ToOrdinal:    inboundOrdinal,
			Distributed:  true,
			Partitioned:  true,
			PartitionKey: restorePartitionKey,
			Priority:     dag.PriorityMin,
		}); err != nil {
			return nil, err
		}
	}

	return woven, nil
}
