package mxl

// mapNode applies an infallible function to every Data value it receives,
// emitting End exactly once upstream has finished. Frame::Error is
// advisory and dropped: transforms forward neither the error nor its
// context.
type mapNode[I, O any] struct {
	codecI Codec[I]
	codecO Codec[O]
	fn     func(I) O
	done   bool
}

func newMapNode[I, O any](codecI Codec[I], codecO Codec[O], fn func(I) O) *mapNode[I, O] {
	return &mapNode[I, O]{codecI: codecI, codecO: codecO, fn: fn}
}

func (n *mapNode[I, O]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecI)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return SendTyped(ctx, 0, n.codecO, EndFrame[O]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, n.codecO, EndFrame[O]())
	case f.IsError():
		return nil
	default:
		v, _ := f.Value()
		return SendTyped(ctx, 0, n.codecO, DataFrame(n.fn(v)))
	}
}

// tryMapNode is mapNode's fallible counterpart. A function failure is
// returned from Tick as an operator fault, surfaced to the driver, never as
// a downstream Frame::Error.
type tryMapNode[I, O any] struct {
	codecI Codec[I]
	codecO Codec[O]
	fn     func(I) (O, error)
	done   bool
}

func newTryMapNode[I, O any](codecI Codec[I], codecO Codec[O], fn func(I) (O, error)) *tryMapNode[I, O] {
	return &tryMapNode[I, O]{codecI: codecI, codecO: codecO, fn: fn}
}

func (n *tryMapNode[I, O]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecI)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return SendTyped(ctx, 0, n.codecO, EndFrame[O]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, n.codecO, EndFrame[O]())
	case f.IsError():
		return nil
	default:
		v, _ := f.Value()
		out, err := n.fn(v)
		if err != nil {
			return err
		}
		return SendTyped(ctx, 0, n.codecO, DataFrame(out))
	}
}
