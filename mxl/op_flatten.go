package mxl

// flattenNode expands each []E Data frame into its individual elements, one
// Data(elem) per element in order. flatten is explicitly allowed to emit
// more than one principal output frame per tick.
type flattenNode[E any] struct {
	codecSeq  Codec[[]E]
	codecElem Codec[E]
	done      bool
}

func newFlattenNode[E any](codecSeq Codec[[]E], codecElem Codec[E]) *flattenNode[E] {
	return &flattenNode[E]{codecSeq: codecSeq, codecElem: codecElem}
}

func (n *flattenNode[E]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecSeq)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return SendTyped(ctx, 0, n.codecElem, EndFrame[E]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, n.codecElem, EndFrame[E]())
	case f.IsError():
		return nil
	default:
		seq, _ := f.Value()
		for _, elem := range seq {
			if err := SendTyped(ctx, 0, n.codecElem, DataFrame(elem)); err != nil {
				return err
			}
		}
		return nil
	}
}
