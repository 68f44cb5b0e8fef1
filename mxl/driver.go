package mxl

import (
	"errors"
	"fmt"
)

// ErrDriverDidNotQuiesce is returned by RunToQuiescence if the graph is
// still producing frames after an unreasonable number of passes, which
// indicates a misbehaving node (one that never reaches RecvFinished) rather
// than a slow but correct one.
var ErrDriverDidNotQuiesce = errors.New("mxl: graph did not quiesce")

// MaxQuiescencePasses bounds RunToQuiescence defensively, here and in the
// telemetry package's instrumented equivalent. It is not a coverage cap on
// the graph's output -- every frame a correct graph produces is still
// delivered -- it only stops a buggy node that never stops emitting from
// looping the driver forever.
const MaxQuiescencePasses = 1 << 20

// countingChannel wraps a Channel to let the driver detect "no node sent
// anything this pass" without needing type assertions on the concrete
// Channel implementation bound to each edge.
type countingChannel struct {
	inner   Channel
	counter *int
}

func (c countingChannel) Send(f Frame[[]byte]) {
	*c.counter++
	c.inner.Send(f)
}

func (c countingChannel) Recv() (Frame[[]byte], bool) { return c.inner.Recv() }
func (c countingChannel) Finished() bool              { return c.inner.Finished() }

// Driver is the reference in-process tick driver: the surface an
// external scheduler -- here, one running in the same process rather than
// across a host/guest boundary -- uses to advance nodes and, optionally, to
// run a graph to quiescence on its own. A sandboxed host is expected to
// call TickNode directly through the ffi package instead of RunToQuiescence.
type Driver struct {
	graph    *Graph
	channels map[Edge]Channel
	log      func([]byte)

	sentThisPass int
}

// NewDriver binds a fresh MemoryChannel to every edge currently in g. The
// graph must not gain additional edges after this call; the core treats the
// graph as fixed once execution begins (see Non-goals: dynamic graph
// mutation after execution begins).
func NewDriver(g *Graph) *Driver {
	d := &Driver{
		graph:    g,
		channels: map[Edge]Channel{},
		log:      func([]byte) {},
	}

	for _, e := range g.Edges() {
		d.channels[e] = NewMemoryChannel()
	}

	return d
}

// SetLogger installs the function NodeContext.Log forwards diagnostics to.
func (d *Driver) SetLogger(log func([]byte)) {
	d.log = log
}

// TickNode builds a fresh NodeContext for id from the channels bound to its
// edges and calls its Tick method once.
func (d *Driver) TickNode(id uint32) error {
	node, ok := d.graph.Node(id)
	if !ok {
		return fmt.Errorf("mxl: tick: unknown node %d", id)
	}

	ctx := d.buildContext(id)

	return node.Tick(ctx)
}

func (d *Driver) buildContext(id uint32) *NodeContext {
	inputsByPort := map[uint32][]InputChannel{}
	for _, e := range d.graph.UpstreamEdges(id) {
		ch := d.wrap(e)
		inputsByPort[e.DestPort] = append(inputsByPort[e.DestPort], ch)
	}

	outputsByPort := map[uint32][]OutputChannel{}
	for _, e := range d.graph.DownstreamEdges(id) {
		ch := d.wrap(e)
		outputsByPort[e.SourcePort] = append(outputsByPort[e.SourcePort], ch)
	}

	inputs := map[uint32]*Input{}
	for port, chans := range inputsByPort {
		start := d.graph.nextScanOffset(id, port) % len(chans)
		inputs[port] = newInput(chans, start)
	}

	outputs := map[uint32]*Output{}
	for port, chans := range outputsByPort {
		outputs[port] = newOutput(chans)
	}

	return newNodeContext(inputs, outputs, d.log)
}

func (d *Driver) wrap(e Edge) countingChannel {
	return countingChannel{inner: d.channels[e], counter: &d.sentThisPass}
}

// ResetPassCounter zeroes the per-pass send counter Quiesced consults. A
// caller driving ticks itself (the telemetry package's instrumented
// RunToQuiescence) calls this once before each pass, the same way
// RunToQuiescence does internally.
func (d *Driver) ResetPassCounter() {
	d.sentThisPass = 0
}

// Quiesced reports whether the most recently completed pass produced no
// frames and every bound channel's writer has closed.
func (d *Driver) Quiesced() bool {
	return d.sentThisPass == 0 && d.allWritersClosed()
}

// RunToQuiescence ticks every node, in SortFromSources order, repeatedly
// until a full pass produces no new frames and every edge's writer has
// closed. It is a convenience for embedding this engine without a real
// host scheduler (tests, the hostproc package); it is not part of the core
// tick contract, which only requires TickNode.
func (d *Driver) RunToQuiescence() error {
	order := d.graph.SortFromSources()

	for pass := 0; pass < MaxQuiescencePasses; pass++ {
		d.ResetPassCounter()

		for _, id := range order {
			if err := d.TickNode(id); err != nil {
				return err
			}
		}

		if d.Quiesced() {
			return nil
		}
	}

	return ErrDriverDidNotQuiesce
}

func (d *Driver) allWritersClosed() bool {
	for _, ch := range d.channels {
		if !ch.Finished() {
			return false
		}
	}
	return true
}
