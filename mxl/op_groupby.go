package mxl

// groupByKeyNode buffers KV[K, V] into a keyed multi-map while upstream is
// open; on recv-finished it emits one Data(KV(k, values)) per distinct key,
// in first-seen order, then End. Key ordering within the emission is
// otherwise unspecified, so first-seen is deterministic and cheap.
type groupByKeyNode[K comparable, V any] struct {
	codecIn  Codec[KV[K, V]]
	codecOut Codec[KV[K, []V]]

	order []K
	vals  map[K][]V
	done  bool
}

func newGroupByKeyNode[K comparable, V any](codecIn Codec[KV[K, V]], codecOut Codec[KV[K, []V]]) *groupByKeyNode[K, V] {
	return &groupByKeyNode[K, V]{codecIn: codecIn, codecOut: codecOut, vals: map[K][]V{}}
}

func (n *groupByKeyNode[K, V]) flush(ctx *NodeContext) error {
	for _, k := range n.order {
		if err := SendTyped(ctx, 0, n.codecOut, DataFrame(NewKV(k, n.vals[k]))); err != nil {
			return err
		}
	}
	return SendTyped(ctx, 0, n.codecOut, EndFrame[KV[K, []V]]())
}

func (n *groupByKeyNode[K, V]) Tick(ctx *NodeContext) error {
	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codecIn)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return n.flush(ctx)
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return n.flush(ctx)
	case f.IsError():
		return nil
	default:
		kv, _ := f.Value()
		if _, seen := n.vals[kv.Key]; !seen {
			n.order = append(n.order, kv.Key)
		}
		n.vals[kv.Key] = append(n.vals[kv.Key], kv.Val)
		return nil
	}
}
