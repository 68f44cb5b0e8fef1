package mxl

// batchNode accumulates up to n Data values, emitting Data([]O) and opening
// a fresh batch once the current one reaches n -- at most one batch emitted
// per tick. On recv-finished it flushes any partial batch, then emits End.
type batchNode[O any] struct {
	n      int
	codecI Codec[O]
	codecO Codec[[]O]
	buf    []O
	done   bool
}

func newBatchNode[O any](n int, codecI Codec[O], codecO Codec[[]O]) *batchNode[O] {
	return &batchNode[O]{n: n, codecI: codecI, codecO: codecO}
}

func (n *batchNode[O]) flush(ctx *NodeContext) error {
	if len(n.buf) == 0 {
		return nil
	}
	batch := n.buf
	n.buf = nil
	return SendTyped(ctx, 0, n.codecO, DataFrame(batch))
}

func (n *batchNode[O]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	// Drain everything currently buffered, stopping as soon as one full
	// batch has gone out -- at most one batch per tick, but no reason to
	// wait a whole extra tick per item when several are already queued up.
	// RecvFinished is only consulted once a Recv comes back empty, not
	// before draining: an upstream node (e.g. another batch or collect)
	// may deliver its last Data frame and End within the same tick, and
	// checking RecvFinished first would skip straight to End and lose
	// that still-unread Data frame.
	for {
		f, ok := RecvTyped(ctx, 0, n.codecI)
		if !ok {
			if ctx.RecvFinished() {
				n.done = true
				if err := n.flush(ctx); err != nil {
					return err
				}
				return SendTyped(ctx, 0, n.codecO, EndFrame[[]O]())
			}
			return nil
		}

		switch {
		case f.IsEnd():
			n.done = true
			if err := n.flush(ctx); err != nil {
				return err
			}
			return SendTyped(ctx, 0, n.codecO, EndFrame[[]O]())
		case f.IsError():
		default:
			v, _ := f.Value()
			n.buf = append(n.buf, v)
			if len(n.buf) == n.n {
				return n.flush(ctx)
			}
		}
	}
}
