package hostproc

import (
	"sync"

	"github.com/mixlayer/graph/host"
	"github.com/mixlayer/graph/mxl"
)

// InProcess is the reference host.Primitives implementation: it backs
// every edge with an mxl.MemoryChannel kept in a map keyed by edge
// descriptor, and forwards Log to an injected sink. It lets a single Go
// process serve the host side of mxl.HostChannel -- tests and any embedder
// that doesn't need a real sandboxed guest -- without reimplementing
// channel bookkeeping at every call site. mxl.Driver and the declarative
// loader do not go through it: Driver binds its own MemoryChannels.
type InProcess struct {
	mu       sync.Mutex
	channels map[host.EdgeDescriptor]*mxl.MemoryChannel
	logSink  func(string)
}

// NewInProcess returns an InProcess host whose Log calls are forwarded to
// logSink. A nil logSink discards log messages.
func NewInProcess(logSink func(string)) *InProcess {
	if logSink == nil {
		logSink = func(string) {}
	}
	return &InProcess{
		channels: map[host.EdgeDescriptor]*mxl.MemoryChannel{},
		logSink:  logSink,
	}
}

func (h *InProcess) channel(edge host.EdgeDescriptor) *mxl.MemoryChannel {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels[edge]
	if !ok {
		ch = mxl.NewMemoryChannel()
		h.channels[edge] = ch
	}
	return ch
}

// ChannelSend implements host.Primitives.
func (h *InProcess) ChannelSend(edge host.EdgeDescriptor, frame []byte) {
	f, err := mxl.WireDecode(frame)
	if err != nil {
		h.Log([]byte("hostproc: malformed frame on send: " + err.Error()))
		return
	}
	h.channel(edge).Send(f)
}

// ChannelRecv implements host.Primitives.
func (h *InProcess) ChannelRecv(edge host.EdgeDescriptor) ([]byte, bool) {
	f, ok := h.channel(edge).Recv()
	if !ok {
		return nil, false
	}
	buf, err := mxl.WireEncode(f)
	if err != nil {
		h.Log([]byte("hostproc: failed to encode frame on recv: " + err.Error()))
		return nil, false
	}
	return buf, true
}

// ChannelFinished implements host.Primitives.
func (h *InProcess) ChannelFinished(edge host.EdgeDescriptor) bool {
	return h.channel(edge).Finished()
}

// Log implements host.Primitives.
func (h *InProcess) Log(msg []byte) {
	h.logSink(string(msg))
}
