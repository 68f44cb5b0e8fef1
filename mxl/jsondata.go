package mxl

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/whitaker-io/data"
)

// JSON is the dynamic, JSON-shaped container any value with a JSON-shape
// capability round-trips through to satisfy MxlData.
type JSON = data.Data

// JSONCodec provides the blanket MxlData implementation for any type that
// round-trips through canonical JSON. Decoding is defensive in the same
// spirit as the frame wire codec: a payload that fails to unmarshal as
// strict JSON (for example, near-miss JSON produced upstream by an
// LLM-backed sink) is retried once through jsonrepair before the decode is
// declared failed.
func JSONCodec[T any]() Codec[T] {
	return Codec[T]{
		Encode: func(v T) ([]byte, error) {
			return json.Marshal(v)
		},
		Decode: func(b []byte) (T, error) {
			var v T
			if err := json.Unmarshal(b, &v); err == nil {
				return v, nil
			} else if repaired, rerr := jsonrepair.JSONRepair(string(b)); rerr == nil {
				if err2 := json.Unmarshal([]byte(repaired), &v); err2 == nil {
					return v, nil
				}
			}
			var zero T
			return zero, fmt.Errorf("mxl: value does not round-trip through JSON")
		},
	}
}

// ToJSONObject converts v into the JSON object shape to_json requires,
// failing if v does not marshal to a JSON object. A scalar value has no
// well-defined object encoding, so it is reported as an error rather than
// silently wrapped or coerced.
func ToJSONObject[T any](v T) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("mxl: to_json requires an object shape: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("mxl: to_json requires an object shape, got null")
	}

	return JSON(m), nil
}
