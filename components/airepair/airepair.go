// Package airepair provides a sink node accepting possibly-malformed JSON
// strings (the kind an LLM-backed upstream node emits) and logging their
// repaired, canonical form through the host log primitive.
package airepair

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"

	"github.com/mixlayer/graph/mxl"
)

// sink repairs each incoming string into canonical JSON before logging it.
// A string that neither parses as-is nor repairs is logged as a decode
// failure rather than dropped silently, so a misbehaving upstream node is
// visible in the host log.
type sink struct {
	done bool
}

// Sink registers a sink consuming h and logging each frame's repaired JSON
// form.
func Sink(b *mxl.Builder, h mxl.Handle[string]) uint32 {
	return mxl.Sink[string](b, h, &sink{}, "")
}

func (n *sink) Tick(ctx *mxl.NodeContext) error {
	codec := mxl.StringCodec()

	if n.done {
		return nil
	}

	f, ok := mxl.RecvTyped(ctx, 0, codec)
	if !ok {
		if ctx.RecvFinished() {
			n.done = true
		}
		return nil
	}

	switch {
	case f.IsEnd():
		n.done = true
		return nil
	case f.IsError():
		return nil
	default:
		raw, _ := f.Value()
		ctx.Log([]byte(canonicalize(raw)))
		return nil
	}
}

func canonicalize(raw string) string {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return "airepair: unrepairable JSON: " + err.Error() + ": " + raw
	}

	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return "airepair: repaired JSON still invalid: " + err.Error() + ": " + repaired
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "airepair: failed to re-marshal repaired JSON: " + err.Error()
	}

	return string(b)
}
