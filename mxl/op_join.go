package mxl

// leftJoinNode implements a two-phase left join. Port 0 is the left input,
// port 1 the right input. While buffering, it drains the
// right input into an append-only list; the phase ends on right-End. After
// that it consumes left frames: for each left Data(KV(k,l)) it emits one
// Data(KV(k, KV(l,r))) per buffered right entry whose key matches k, walked
// in the right side's insertion order (a linear scan, not an index -- the
// documented cost of this join). A left key with no matching right entry
// emits nothing.
type leftJoinNode[K comparable, L, R any] struct {
	codecLeft  Codec[KV[K, L]]
	codecRight Codec[KV[K, R]]
	codecOut   Codec[KV[K, KV[L, R]]]

	buffering bool
	rightBuf  []KV[K, R]
	done      bool
}

func newLeftJoinNode[K comparable, L, R any](codecLeft Codec[KV[K, L]], codecRight Codec[KV[K, R]], codecOut Codec[KV[K, KV[L, R]]]) *leftJoinNode[K, L, R] {
	return &leftJoinNode[K, L, R]{codecLeft: codecLeft, codecRight: codecRight, codecOut: codecOut, buffering: true}
}

func (n *leftJoinNode[K, L, R]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	if n.buffering {
		f, ok := RecvTyped(ctx, 1, n.codecRight)
		if !ok {
			if ctx.PortFinished(1) {
				n.buffering = false
			}
			return nil
		}

		switch {
		case f.IsEnd():
			n.buffering = false
		case f.IsError():
		default:
			kv, _ := f.Value()
			n.rightBuf = append(n.rightBuf, kv)
		}
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecLeft)
	if !ok {
		if ctx.PortFinished(0) {
			n.done = true
			return SendTyped(ctx, 0, n.codecOut, EndFrame[KV[K, KV[L, R]]]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, n.codecOut, EndFrame[KV[K, KV[L, R]]]())
	case f.IsError():
		return nil
	default:
		kv, _ := f.Value()
		for _, r := range n.rightBuf {
			if r.Key == kv.Key {
				out := NewKV(kv.Key, NewKV(kv.Val, r.Val))
				if err := SendTyped(ctx, 0, n.codecOut, DataFrame(out)); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
