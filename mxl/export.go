package mxl

import "encoding/binary"

// ExportedEdge is one edge in an Export snapshot.
type ExportedEdge struct {
	SourceNodeID uint32
	SourcePort   uint32
	DestNodeID   uint32
	DestPort     uint32
}

// ExportedNode is one node's metadata in an Export snapshot.
type ExportedNode struct {
	ID         uint32
	Kind       NodeKind
	Operation  string
	Label      string
	InputType  string
	OutputType string
}

// Export is the structural description of a graph handed to the host for
// visualization: the full edge set plus per-node metadata.
type Export struct {
	Nodes []ExportedNode
	Edges []ExportedEdge
}

// Export snapshots g's current topology. It is safe to call at any point,
// including mid-run, since it only reads the node/edge/meta tables the
// builder populated.
func (g *Graph) Export() Export {
	ids := g.NodeIDs()
	nodes := make([]ExportedNode, 0, len(ids))
	for _, id := range ids {
		m, _ := g.Meta(id)
		nodes = append(nodes, ExportedNode{
			ID:         id,
			Kind:       m.Kind,
			Operation:  m.Operation,
			Label:      m.Label,
			InputType:  m.InputType,
			OutputType: m.OutputType,
		})
	}

	edges := g.Edges()
	exportedEdges := make([]ExportedEdge, 0, len(edges))
	for _, e := range edges {
		exportedEdges = append(exportedEdges, ExportedEdge{
			SourceNodeID: e.SourceNodeID,
			SourcePort:   e.SourcePort,
			DestNodeID:   e.DestNodeID,
			DestPort:     e.DestPort,
		})
	}

	return Export{Nodes: nodes, Edges: exportedEdges}
}

// writeLP appends b to out as a u32-be length prefix followed by its bytes,
// the same length-prefixing convention the sequence/KV codecs use, so a
// host parsing an export buffer reuses one framing rule throughout.
func writeLP(out []byte, b []byte) []byte {
	lenPrefix := make([]byte, 4)
	binary.BigEndian.PutUint32(lenPrefix, uint32(len(b)))
	out = append(out, lenPrefix...)
	return append(out, b...)
}

func writeU32(out []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return append(out, b...)
}

// Marshal serializes the export structure as a length-prefixed byte buffer:
// a u32 node count, then per node {id, kind, u32-lp operation,
// u32-lp label, u32-lp input_type, u32-lp output_type}; a u32 edge count,
// then per edge the raw quadruple. This is a schema of its own -- it is not
// the protobuf edge-descriptor schema the host/guest boundary uses, which
// the ffi package encodes separately via protowire.
func (e Export) Marshal() []byte {
	out := make([]byte, 0, 64+64*len(e.Nodes)+16*len(e.Edges))

	out = writeU32(out, uint32(len(e.Nodes)))
	for _, n := range e.Nodes {
		out = writeU32(out, n.ID)
		out = writeU32(out, uint32(n.Kind))
		out = writeLP(out, []byte(n.Operation))
		out = writeLP(out, []byte(n.Label))
		out = writeLP(out, []byte(n.InputType))
		out = writeLP(out, []byte(n.OutputType))
	}

	out = writeU32(out, uint32(len(e.Edges)))
	for _, edge := range e.Edges {
		out = writeU32(out, edge.SourceNodeID)
		out = writeU32(out, edge.SourcePort)
		out = writeU32(out, edge.DestNodeID)
		out = writeU32(out, edge.DestPort)
	}

	return out
}
