// Package host declares the boundary primitives the core assumes an
// embedding host process provides. The core never implements these
// itself -- it only calls them through the Primitives interface -- so a
// sandboxed guest build links against whatever concrete implementation the
// real host exposes, while tests and the reference hostproc package link
// against InProcess.
package host

// EdgeDescriptor identifies one edge for the purposes of the host-bridged
// channel: {source_node_id, source_output_port, dest_node_id, dest_input_port}.
type EdgeDescriptor struct {
	SourceNodeID   uint32
	SourceOutput   uint32
	DestNodeID     uint32
	DestInputPort  uint32
}

// Primitives is the set of host boundary primitives the core consumes.
// channel_send/channel_recv/channel_finished operate on the wire bytes of a
// single frame message; log is handed
// pre-formatted diagnostic bytes.
type Primitives interface {
	ChannelSend(edge EdgeDescriptor, frame []byte)
	ChannelRecv(edge EdgeDescriptor) ([]byte, bool)
	ChannelFinished(edge EdgeDescriptor) bool
	Log(msg []byte)
}
