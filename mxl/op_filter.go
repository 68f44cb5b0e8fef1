package mxl

// filterNode passes through Data values for which pred holds and drops the
// rest, without otherwise affecting EOS propagation.
type filterNode[O any] struct {
	codec Codec[O]
	pred  func(O) bool
	done  bool
}

func newFilterNode[O any](codec Codec[O], pred func(O) bool) *filterNode[O] {
	return &filterNode[O]{codec: codec, pred: pred}
}

func (n *filterNode[O]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return SendTyped(ctx, 0, n.codec, EndFrame[O]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, n.codec, EndFrame[O]())
	case f.IsError():
		return nil
	default:
		v, _ := f.Value()
		if n.pred(v) {
			return SendTyped(ctx, 0, n.codec, DataFrame(v))
		}
		return nil
	}
}
