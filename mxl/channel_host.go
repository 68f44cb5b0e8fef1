package mxl

import "github.com/mixlayer/graph/host"

// HostChannel is the opaque host-bridged Channel implementation: it
// identifies itself by an edge descriptor and delegates Send/Recv/Finished
// to host-provided primitives, converting Frame[[]byte] to and from wire
// bytes via WireEncode/WireDecode.
//
// A decode failure here (a malformed buffer returned by the host) is
// defensive: it is surfaced to the caller as a Frame[[]byte] Error rather
// than a panic or a dropped frame.
type HostChannel struct {
	edge  host.EdgeDescriptor
	prims host.Primitives
}

// NewHostChannel binds a Channel to the given edge descriptor, delegating
// all transport to prims.
func NewHostChannel(edge host.EdgeDescriptor, prims host.Primitives) *HostChannel {
	return &HostChannel{edge: edge, prims: prims}
}

// Send encodes f to wire bytes and hands them to the host's channel_send
// primitive. Send is total: a WireEncode failure (an encode fault, not a
// decode one) is logged through the host's log primitive and the frame is
// dropped, matching the OutputChannel.Send contract of never failing.
func (c *HostChannel) Send(f Frame[[]byte]) {
	buf, err := WireEncode(f)
	if err != nil {
		c.prims.Log([]byte("mxl: host channel send: " + err.Error()))
		return
	}
	c.prims.ChannelSend(c.edge, buf)
}

// Recv pulls the next frame, if any, from the host's channel_recv
// primitive and parses it. A parse failure yields a Frame[[]byte] Error
// rather than propagating the parse error to the caller.
func (c *HostChannel) Recv() (Frame[[]byte], bool) {
	buf, ok := c.prims.ChannelRecv(c.edge)
	if !ok {
		return Frame[[]byte]{}, false
	}

	f, err := WireDecode(buf)
	if err != nil {
		c.prims.Log([]byte("mxl: host channel recv: " + err.Error()))
		return ErrorFrame[[]byte](), true
	}

	return f, true
}

// Finished delegates to the host's channel_finished primitive.
func (c *HostChannel) Finished() bool {
	return c.prims.ChannelFinished(c.edge)
}
