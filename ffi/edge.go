// Package ffi implements the five tick entry points a sandboxed host
// process calls across the guest boundary: build_graph, tick_node,
// export_graph, free_graph, and malloc, and encodes edge descriptors in the
// protobuf wire form the host expects -- mxl itself never depends on it.
package ffi

import (
	"fmt"

	"github.com/mixlayer/graph/host"
	"google.golang.org/protobuf/encoding/protowire"
)

// Edge descriptor field numbers, fixed by the stable protocol-buffer
// schema the host/guest boundary requires. There is no generated .proto in
// this module (no codegen toolchain is assumed to be available on the
// guest side), so protowire is used directly at the field level instead.
const (
	fieldSourceNodeID  protowire.Number = 1
	fieldSourceOutput  protowire.Number = 2
	fieldDestNodeID    protowire.Number = 3
	fieldDestInputPort protowire.Number = 4
)

// EncodeEdgeDescriptor serializes an EdgeDescriptor as four varint fields,
// length-delimited message framing left to the caller (the host already
// knows the message boundary from its own transport).
func EncodeEdgeDescriptor(e host.EdgeDescriptor) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSourceNodeID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.SourceNodeID))
	b = protowire.AppendTag(b, fieldSourceOutput, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.SourceOutput))
	b = protowire.AppendTag(b, fieldDestNodeID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.DestNodeID))
	b = protowire.AppendTag(b, fieldDestInputPort, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.DestInputPort))
	return b
}

// DecodeEdgeDescriptor parses the wire form EncodeEdgeDescriptor produces.
// It is defensive in the same spirit as the core's own wire codec: an
// unknown field number is skipped rather than rejected, so the host can add
// fields in a later schema revision without breaking this guest build.
func DecodeEdgeDescriptor(b []byte) (host.EdgeDescriptor, error) {
	var e host.EdgeDescriptor

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("ffi: malformed edge descriptor tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.VarintType {
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return e, fmt.Errorf("ffi: malformed edge descriptor field: %w", protowire.ParseError(m))
			}
			b = b[m:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return e, fmt.Errorf("ffi: malformed edge descriptor varint: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldSourceNodeID:
			e.SourceNodeID = uint32(v)
		case fieldSourceOutput:
			e.SourceOutput = uint32(v)
		case fieldDestNodeID:
			e.DestNodeID = uint32(v)
		case fieldDestInputPort:
			e.DestInputPort = uint32(v)
		}
	}

	return e, nil
}
