package mxl

import (
	"bufio"
	"os"
)

// debugSinkNode prints every arriving frame via the host-provided log
// primitive -- useful for wiring up a pipeline's tail
// during development without writing a dedicated sink operator.
type debugSinkNode[T any] struct {
	codec Codec[T]
	done  bool
}

// NewDebugSink registers a sink logging every frame it receives through
// NodeContext.Log.
func NewDebugSink[T any](b *Builder, h Handle[T], codec Codec[T]) uint32 {
	return Sink[T](b, h, &debugSinkNode[T]{codec: codec}, "")
}

func (n *debugSinkNode[T]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
		}
		return nil
	}

	ctx.Log([]byte(f.String()))

	if f.IsEnd() {
		n.done = true
	}

	return nil
}

// fsLineSinkNode writes every arriving string as a line to a file opened
// lazily in write mode on first write.
type fsLineSinkNode struct {
	path string
	f    *os.File
	w    *bufio.Writer
	done bool
}

// NewFsLineSink registers a sink writing each incoming string to path,
// truncating any existing file content the first time a line arrives.
func NewFsLineSink(b *Builder, h Handle[string], path string) uint32 {
	return Sink[string](b, h, &fsLineSinkNode{path: path}, "")
}

func (n *fsLineSinkNode) open() error {
	if n.f != nil {
		return nil
	}
	f, err := os.Create(n.path)
	if err != nil {
		return err
	}
	n.f = f
	n.w = bufio.NewWriter(f)
	return nil
}

func (n *fsLineSinkNode) flushClose() error {
	if n.w == nil {
		return nil
	}
	if err := n.w.Flush(); err != nil {
		return err
	}
	return n.f.Close()
}

func (n *fsLineSinkNode) Tick(ctx *NodeContext) error {
	codec := StringCodec()

	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return n.flushClose()
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return n.flushClose()
	case f.IsError():
		return nil
	default:
		line, _ := f.Value()
		if err := n.open(); err != nil {
			return err
		}
		if _, err := n.w.WriteString(line); err != nil {
			return err
		}
		return n.w.WriteByte('\n')
	}
}
