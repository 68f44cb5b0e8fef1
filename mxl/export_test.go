package mxl

import (
	"encoding/binary"
	"testing"
)

func TestExportMarshal(t *testing.T) {
	b := NewBuilder()
	codec := StringCodec()
	src := NewVecSource(b, []string{"a"}, codec)
	Sink[string](b, src, &recordingSink[string]{codec: codec}, "tail")

	exp := b.Graph().Export()
	if len(exp.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(exp.Nodes))
	}
	if len(exp.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(exp.Edges))
	}

	buf := exp.Marshal()
	if len(buf) < 4 {
		t.Fatal("marshaled buffer too short")
	}
	nodeCount := binary.BigEndian.Uint32(buf[:4])
	if nodeCount != 2 {
		t.Fatalf("marshaled node count: got %d, want 2", nodeCount)
	}
}

func TestGraphMetaLabelOverride(t *testing.T) {
	b := NewBuilder()
	codec := StringCodec()
	src := NewVecSource(b, []string{"a"}, codec).Label("input")

	meta, ok := b.Graph().Meta(src.ID())
	if !ok {
		t.Fatal("expected node metadata")
	}
	if meta.Label != "input" {
		t.Fatalf("got label %q, want %q", meta.Label, "input")
	}
}
