package mxl

// collectNode buffers every Data value until recv-finished, then emits the
// whole buffer as a single []O Data frame followed by End.
type collectNode[O any] struct {
	codecI Codec[O]
	codecO Codec[[]O]
	buf    []O
	done   bool
}

func newCollectNode[O any](codecI Codec[O], codecO Codec[[]O]) *collectNode[O] {
	return &collectNode[O]{codecI: codecI, codecO: codecO}
}

func (n *collectNode[O]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecI)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			if err := SendTyped(ctx, 0, n.codecO, DataFrame(n.buf)); err != nil {
				return err
			}
			return SendTyped(ctx, 0, n.codecO, EndFrame[[]O]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		if err := SendTyped(ctx, 0, n.codecO, DataFrame(n.buf)); err != nil {
			return err
		}
		return SendTyped(ctx, 0, n.codecO, EndFrame[[]O]())
	case f.IsError():
		return nil
	default:
		v, _ := f.Value()
		n.buf = append(n.buf, v)
		return nil
	}
}
