package ffi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mixlayer/graph/mxl"
)

// GraphHandle is the opaque handle build_graph hands back to the host: an
// assembled, driver-backed graph that every later entry point takes as its
// argument. Its id is recorded in a package-level table until FreeGraph.
type GraphHandle struct {
	id     uint64
	driver *mxl.Driver
	graph  *mxl.Graph
}

var (
	nextHandle uint64
	handles    sync.Map // uint64 -> *GraphHandle
)

// BuildGraph registers an already-assembled graph and returns the opaque
// handle the host uses for every subsequent call. The graph itself is
// built by ordinary Go code using the mxl.Builder before this is called --
// there is no guest-side graph description language, only the typed
// builder -- so BuildGraph's only job is to bind a Driver to it and hand
// out a stable id.
func BuildGraph(g *mxl.Graph) *GraphHandle {
	h := &GraphHandle{
		id:     atomic.AddUint64(&nextHandle, 1),
		driver: mxl.NewDriver(g),
		graph:  g,
	}
	handles.Store(h.id, h)
	return h
}

// TickNode advances a single node by one tick.
func TickNode(h *GraphHandle, nodeID uint32) error {
	if h == nil {
		return fmt.Errorf("ffi: tick_node: nil graph handle")
	}
	return h.driver.TickNode(nodeID)
}

// ExportGraph returns the length-prefixed structural description of the
// graph bound to h, for the host's visualization use.
func ExportGraph(h *GraphHandle) []byte {
	if h == nil {
		return nil
	}
	return h.graph.Export().Marshal()
}

// FreeGraph releases h, the guest-side free_graph destructor trigger. The
// graph and its driver become eligible for garbage collection once no other
// reference to them remains.
func FreeGraph(h *GraphHandle) {
	if h == nil {
		return
	}
	handles.Delete(h.id)
}

// Malloc returns a fresh buffer of the requested length for the host to
// marshal data into before handing it back across the boundary. There is no separate guest heap to manage in a Go build: the
// buffer is ordinary Go-GC'd memory, and its lifetime is whatever the
// caller does with the returned slice.
func Malloc(length int) []byte {
	return make([]byte, length)
}
