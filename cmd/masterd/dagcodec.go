package main

import (
	"bytes"
	"encoding/gob"

	"github.com/streamforge/jetmaster/internal/dag"
)

// wireDAG is the gob-encoded shape a Job's serializedDAG carries, mirroring
// the approach internal/rpc takes for wire-encoding its own request types:
// a small exported mirror struct standing in for the package's unexported
// DAG internals, since dag.DAG's fields are deliberately private.
type wireDAG struct {
	Vertices []wireVertex
	Edges    []wireEdge
}

type wireVertex struct {
	Name                   string
	NextFreeInboundOrdinal int
}

type wireEdge struct {
	From, To     string
	FromOrdinal  int
	ToOrdinal    int
	Distributed  bool
	Partitioned  bool
	Isolated     bool
	Priority     int
	PartitionKey string
}

// encodeDAG serializes d for storage as a Job's serializedDAG. The DAG
// surface language itself is out of scope (see internal/dag's package
// doc); masterd only needs a round-trippable encoding to exercise the
// master package's DecodeDAG seam.
func encodeDAG(d *dag.DAG) ([]byte, error) {
	w := wireDAG{}
	for _, v := range d.Vertices() {
		w.Vertices = append(w.Vertices, wireVertex{Name: v.Name, NextFreeInboundOrdinal: v.NextFreeInboundOrdinal})
	}
	for _, e := range d.Edges() {
		w.Edges = append(w.Edges, wireEdge{
			From: e.From, To: e.To, FromOrdinal: e.FromOrdinal, ToOrdinal: e.ToOrdinal,
			Distributed: e.Distributed, Partitioned: e.Partitioned, Isolated: e.Isolated,
			Priority: e.Priority, PartitionKey: e.PartitionKey,
		})
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDAG(data []byte) (*dag.DAG, error) {
	var w wireDAG
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	d := dag.New()
	for _, v := range w.Vertices {
		vertex, err := d.AddVertex(v.Name)
		if err != nil {
			return nil, err
		}
		vertex.NextFreeInboundOrdinal = v.NextFreeInboundOrdinal
	}
	for _, e := range w.Edges {
		edge := e
		if err := d.Connect(&dag.Edge{
			From: edge.From, To: edge.To, FromOrdinal: edge.FromOrdinal, ToOrdinal: edge.ToOrdinal,
			Distributed: edge.Distributed, Partitioned: edge.Partitioned, Isolated: edge.Isolated,
			Priority: edge.Priority, PartitionKey: edge.PartitionKey,
		}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// demoDAG builds a small two-vertex pipeline (source -> sink) used by the
// `run` subcommand to exercise the full coordinator loop end to end.
func demoDAG() *dag.DAG {
	d := dag.New()
	source, _ := d.AddVertex("source")
	sink, _ := d.AddVertex("sink")
	_ = source
	_ = d.Connect(&dag.Edge{From: "source", To: "sink", FromOrdinal: 0, ToOrdinal: sink.NextFreeInboundOrdinal})
	sink.NextFreeInboundOrdinal++
	return d
}
