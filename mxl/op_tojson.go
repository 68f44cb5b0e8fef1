package mxl

// toJSONNode re-encodes every Data value as a schema-free JSON object. A
// value that does not round-trip to an object shape is an encode fault and
// is returned from Tick rather than swallowed.
type toJSONNode[O any] struct {
	codec Codec[O]
	done  bool
}

func newToJSONNode[O any](codec Codec[O]) *toJSONNode[O] {
	return &toJSONNode[O]{codec: codec}
}

func (n *toJSONNode[O]) Tick(ctx *NodeContext) error {
	jsonCodec := JSONCodec[JSON]()

	if n.done {
		return nil
	}

	f, ok := RecvTyped(ctx, 0, n.codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
			return SendTyped(ctx, 0, jsonCodec, EndFrame[JSON]())
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return SendTyped(ctx, 0, jsonCodec, EndFrame[JSON]())
	case f.IsError():
		return nil
	default:
		v, _ := f.Value()
		obj, err := ToJSONObject(v)
		if err != nil {
			return err
		}
		return SendTyped(ctx, 0, jsonCodec, DataFrame(obj))
	}
}
