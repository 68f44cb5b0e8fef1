package mxl

// NodeKind classifies a node for metadata/export purposes.
type NodeKind int

const (
	KindSource NodeKind = iota
	KindTransform
	KindSink
	KindJoin
)

func (k NodeKind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindTransform:
		return "Transform"
	case KindSink:
		return "Sink"
	case KindJoin:
		return "Join"
	default:
		return "Unknown"
	}
}

// VNode is the tick contract every node in the graph implements. The
// driver calls Tick once per scheduling slice, handing a freshly built
// NodeContext. A well-behaved node emits at most one principal output frame
// per tick (flatten and sources are explicitly allowed to emit more) and
// must be reentrant across ticks, keeping any state it needs on the
// receiver itself.
type VNode interface {
	Tick(ctx *NodeContext) error
}

// Labeled is implemented by node types that want to contribute a default
// metadata label beyond their bare type name; it is optional.
type Labeled interface {
	DefaultLabel() string
}

// Input aggregates one or more input channels bound to the same destination
// port (fan-in). Recv performs a first-ready scan starting from a rotating
// offset the graph advances once per tick (see Graph.nextScanOffset) --
// fairness is not guaranteed, matching the "first-ready scan... documented
// as unfair" design note, but starting from a different channel each tick
// keeps one producer from starving the others indefinitely.
type Input struct {
	channels []InputChannel
	start    int
}

func newInput(channels []InputChannel, start int) *Input {
	return &Input{channels: channels, start: start}
}

// Recv returns the first frame found scanning the constituent channels in
// rotated order, or (Frame[[]byte]{}, false) if none has one buffered.
func (in *Input) Recv() (Frame[[]byte], bool) {
	n := len(in.channels)
	if n == 0 {
		return Frame[[]byte]{}, false
	}

	for i := 0; i < n; i++ {
		ch := in.channels[(in.start+i)%n]
		if f, ok := ch.Recv(); ok {
			return f, true
		}
	}

	return Frame[[]byte]{}, false
}

// Finished reports true iff every constituent channel has been closed by
// its writer.
func (in *Input) Finished() bool {
	for _, ch := range in.channels {
		if !ch.Finished() {
			return false
		}
	}
	return true
}

// Output aggregates one or more output channels bound to the same source
// port (fan-out). Send forwards f to every channel, which is how fan-out
// duplication is implemented: each downstream receives the identical
// sub-sequence of frames, in the same order.
type Output struct {
	channels []OutputChannel
}

func newOutput(channels []OutputChannel) *Output {
	return &Output{channels: channels}
}

// Send forwards f to every constituent output channel.
func (out *Output) Send(f Frame[[]byte]) {
	for _, ch := range out.channels {
		ch.Send(f)
	}
}

// NodeContext is the per-tick view of a node's input and output ports. It
// is rebuilt fresh for every tick and carries no state between ticks; nodes
// must not retain a NodeContext (or anything obtained from it) past the
// Tick call that received it.
type NodeContext struct {
	inputs  map[uint32]*Input
	outputs map[uint32]*Output
	log     func([]byte)
}

func newNodeContext(inputs map[uint32]*Input, outputs map[uint32]*Output, log func([]byte)) *NodeContext {
	if log == nil {
		log = func([]byte) {}
	}
	return &NodeContext{inputs: inputs, outputs: outputs, log: log}
}

// Recv receives the next frame on the given input port, if any.
func (ctx *NodeContext) Recv(port uint32) (Frame[[]byte], bool) {
	in, ok := ctx.inputs[port]
	if !ok {
		return Frame[[]byte]{}, false
	}
	return in.Recv()
}

// PortFinished reports whether the given input port has seen its writer
// close.
func (ctx *NodeContext) PortFinished(port uint32) bool {
	in, ok := ctx.inputs[port]
	if !ok {
		return true
	}
	return in.Finished()
}

// RecvFinished reports true iff every input port is finished -- the
// convenience most stateful operators consult to decide whether to emit
// their terminal End frame.
func (ctx *NodeContext) RecvFinished() bool {
	for _, in := range ctx.inputs {
		if !in.Finished() {
			return false
		}
	}
	return true
}

// Send sends f on the given output port, fanning it out to every channel
// bound to that port.
func (ctx *NodeContext) Send(port uint32, f Frame[[]byte]) {
	if out, ok := ctx.outputs[port]; ok {
		out.Send(f)
	}
}

// Log forwards a diagnostic message to the host's log primitive.
func (ctx *NodeContext) Log(msg []byte) {
	ctx.log(msg)
}

// RecvTyped decodes the next frame on port using codec, returning
// (Frame[T]{}, false) if no frame is buffered yet.
func RecvTyped[T any](ctx *NodeContext, port uint32, codec Codec[T]) (Frame[T], bool) {
	f, ok := ctx.Recv(port)
	if !ok {
		return Frame[T]{}, false
	}
	return DecodeFrame(codec, f), true
}

// SendTyped encodes f using codec and sends it on port. An encode failure is
// an operator fault: it is returned to the caller instead of being
// forwarded as a Frame::Error, per the encode/decode error taxonomy.
func SendTyped[T any](ctx *NodeContext, port uint32, codec Codec[T], f Frame[T]) error {
	wf, err := EncodeFrame(codec, f)
	if err != nil {
		return err
	}
	ctx.Send(port, wf)
	return nil
}
