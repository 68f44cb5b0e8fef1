// Package mxl implements the core of a typed dataflow graph engine: a
// strongly typed builder over an erased node graph, a uniform framed byte
// encoding for values crossing channels, and the cooperative per-node tick
// protocol an external driver uses to run the graph to completion.
package mxl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

type frameKind uint8

const (
	kindData frameKind = iota
	kindEnd
	kindError
)

// Frame is a tagged value crossing a channel: exactly one of Data(T), End, or
// Error. End is terminal for a single stream; Error is informational and
// non-terminal.
type Frame[T any] struct {
	kind  frameKind
	value T
}

// DataFrame wraps v as a Frame carrying data.
func DataFrame[T any](v T) Frame[T] {
	return Frame[T]{kind: kindData, value: v}
}

// EndFrame returns the terminal frame for T's stream.
func EndFrame[T any]() Frame[T] {
	return Frame[T]{kind: kindEnd}
}

// ErrorFrame returns an informational, non-terminal error frame.
func ErrorFrame[T any]() Frame[T] {
	return Frame[T]{kind: kindError}
}

// IsData reports whether f carries a value.
func (f Frame[T]) IsData() bool { return f.kind == kindData }

// IsEnd reports whether f is the terminal End frame.
func (f Frame[T]) IsEnd() bool { return f.kind == kindEnd }

// IsError reports whether f is an informational Error frame.
func (f Frame[T]) IsError() bool { return f.kind == kindError }

// Value returns the carried value and true iff f.IsData().
func (f Frame[T]) Value() (T, bool) {
	return f.value, f.kind == kindData
}

// MapFrame transforms the value carried by a Data frame, leaving End/Error
// as is.
func MapFrame[T, U any](f Frame[T], fn func(T) U) Frame[U] {
	switch f.kind {
	case kindData:
		return DataFrame(fn(f.value))
	case kindEnd:
		return EndFrame[U]()
	default:
		return ErrorFrame[U]()
	}
}

func (f Frame[T]) String() string {
	switch f.kind {
	case kindData:
		return fmt.Sprintf("Data(%v)", f.value)
	case kindEnd:
		return "End"
	default:
		return "Error"
	}
}

// Codec is the capability a type must provide to cross a channel boundary:
// it knows how to turn a value of T into frame bytes and back. This is the
// capability-style abstraction the frame codec is built on in place of an
// inheritance hierarchy or reflection-driven marshaling: a Codec is a pair of
// plain functions, and composite codecs (Option, Sequence, KV) are built by
// wrapping a narrower Codec rather than by introspecting T.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// Errors returned by Codec.Decode implementations and by the wire-level
// framing in this file. Decode failures are defensive: the caller is
// expected to turn them into a Frame[T] Error variant rather than panic.
var (
	ErrTruncatedFrame      = errors.New("mxl: truncated frame")
	ErrUnknownDiscriminant = errors.New("mxl: unknown frame discriminant")
	ErrValueTooLarge       = errors.New("mxl: encoded value exceeds u32 length")
)

// EncodeFrame encodes a Frame[T] into a Frame[[]byte] using codec. End and
// Error frames pass through without consulting the codec. A failing Encode
// is NOT turned into a Frame Error here -- per the encode/decode error
// taxonomy, an encode fault surfaces to the tick result, so callers use the
// returned error to abort the tick rather than forwarding a frame.
func EncodeFrame[T any](codec Codec[T], f Frame[T]) (Frame[[]byte], error) {
	switch f.kind {
	case kindEnd:
		return EndFrame[[]byte](), nil
	case kindError:
		return ErrorFrame[[]byte](), nil
	default:
		b, err := codec.Encode(f.value)
		if err != nil {
			return Frame[[]byte]{}, err
		}
		return DataFrame(b), nil
	}
}

// DecodeFrame decodes a Frame[[]byte] into a Frame[T] using codec. A
// failing Decode is defensive: it produces a Frame[T] Error rather than a Go
// error, matching the "decode produces Frame::Error delivered to the
// downstream node" policy.
func DecodeFrame[T any](codec Codec[T], f Frame[[]byte]) Frame[T] {
	switch f.kind {
	case kindEnd:
		return EndFrame[T]()
	case kindError:
		return ErrorFrame[T]()
	default:
		b, _ := f.Value()
		v, err := codec.Decode(b)
		if err != nil {
			return ErrorFrame[T]()
		}
		return DataFrame(v)
	}
}

// WireEncode serializes a Frame[[]byte] to its on-wire representation:
// Data(b) -> 0x00 || u32_be(len(b)) || b; End -> 0x01; Error -> 0x02.
// There is no version byte and no trailing length; the codec is not
// self-synchronizing, so each call's result is handed to the host channel as
// a single discrete message.
func WireEncode(f Frame[[]byte]) ([]byte, error) {
	switch f.kind {
	case kindEnd:
		return []byte{0x01}, nil
	case kindError:
		return []byte{0x02}, nil
	default:
		b, _ := f.Value()
		if uint64(len(b)) > uint64(^uint32(0)) {
			return nil, ErrValueTooLarge
		}
		out := make([]byte, 5+len(b))
		out[0] = 0x00
		binary.BigEndian.PutUint32(out[1:5], uint32(len(b)))
		copy(out[5:], b)
		return out, nil
	}
}

// WireDecode parses a single on-wire frame message. It is defensive:
// truncated length prefixes, truncated buffers, a length prefix that
// disagrees with the remaining buffer, or an unknown discriminant byte all
// produce an error instead of panicking.
func WireDecode(buf []byte) (Frame[[]byte], error) {
	if len(buf) == 0 {
		return Frame[[]byte]{}, ErrTruncatedFrame
	}

	switch buf[0] {
	case 0x00:
		if len(buf) < 5 {
			return Frame[[]byte]{}, ErrTruncatedFrame
		}
		l := binary.BigEndian.Uint32(buf[1:5])
		rest := buf[5:]
		if uint64(len(rest)) != uint64(l) {
			return Frame[[]byte]{}, ErrTruncatedFrame
		}
		payload := make([]byte, len(rest))
		copy(payload, rest)
		return DataFrame(payload), nil
	case 0x01:
		return EndFrame[[]byte](), nil
	case 0x02:
		return ErrorFrame[[]byte](), nil
	default:
		return Frame[[]byte]{}, ErrUnknownDiscriminant
	}
}
