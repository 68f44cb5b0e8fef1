package mxl

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// vecSourceNode emits the elements of a fixed slice one per tick, in
// reverse order, then one End; further ticks after that are no-ops. Emitting in reverse order keeps the node's state a single
// shrinking index rather than a second cursor.
type vecSourceNode[T any] struct {
	codec Codec[T]
	items []T
	idx   int
	done  bool
}

// NewVecSource registers a source that replays items in reverse, using
// codec to encode each element onto the wire.
func NewVecSource[T any](b *Builder, items []T, codec Codec[T]) Handle[T] {
	node := &vecSourceNode[T]{codec: codec, items: items, idx: len(items) - 1}
	return AddSource[T](b, node)
}

func (n *vecSourceNode[T]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	if n.idx < 0 {
		n.done = true
		return SendTyped(ctx, 0, n.codec, EndFrame[T]())
	}

	v := n.items[n.idx]
	n.idx--

	return SendTyped(ctx, 0, n.codec, DataFrame(v))
}

// fsLineSourceNode lazily opens a file and emits one line per tick; an I/O
// error short of EOF emits Frame::Error rather than halting the node.
type fsLineSourceNode struct {
	path string
	f    *os.File
	r    *bufio.Reader
	done bool
}

// NewFsLineSource registers a source reading newline-delimited strings from
// path, opened on first tick rather than at construction.
func NewFsLineSource(b *Builder, path string) Handle[string] {
	return AddSource[string](b, &fsLineSourceNode{path: path})
}

func (n *fsLineSourceNode) open() error {
	if n.f != nil {
		return nil
	}
	f, err := os.Open(n.path)
	if err != nil {
		return err
	}
	n.f = f
	n.r = bufio.NewReader(f)
	return nil
}

func (n *fsLineSourceNode) Tick(ctx *NodeContext) error {
	codec := StringCodec()

	if n.done {
		return nil
	}

	if err := n.open(); err != nil {
		return err
	}

	line, err := n.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if line != "" {
				return SendTyped(ctx, 0, codec, DataFrame(strings.TrimSuffix(line, "\n")))
			}
			n.done = true
			return SendTyped(ctx, 0, codec, EndFrame[string]())
		}
		return SendTyped(ctx, 0, codec, ErrorFrame[string]())
	}

	return SendTyped(ctx, 0, codec, DataFrame(strings.TrimSuffix(line, "\n")))
}
