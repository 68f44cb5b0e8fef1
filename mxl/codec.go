package mxl

import "encoding/binary"

// KV is the canonical shape for join-able streams: a key paired with a
// value. It is a plain struct rather than a two-element array so Option and
// Sequence codecs can wrap it without any special casing.
type KV[K, V any] struct {
	Key K
	Val V
}

// NewKV is a convenience constructor mirroring the glossary's KV(k, v)
// notation used throughout the operator table.
func NewKV[K, V any](k K, v V) KV[K, V] {
	return KV[K, V]{Key: k, Val: v}
}

// Option represents an optional value on the wire as a one-byte
// discriminant followed, for Some, by the inner encoding.
type Option[T any] struct {
	Present bool
	Value   T
}

// Some wraps v as a present Option.
func Some[T any](v T) Option[T] { return Option[T]{Present: true, Value: v} }

// None returns the absent Option for T.
func None[T any]() Option[T] { return Option[T]{} }

// UnitCodec encodes the unit value as an empty payload, so EncodeFrame
// turns it into a zero-byte Data frame; it does not produce an End frame. It
// exists so source/sink operators that carry no payload (e.g. a bare
// completion signal) can still be expressed as an MxlData-compatible type
// without a special-cased node implementation.
func UnitCodec() Codec[struct{}] {
	return Codec[struct{}]{
		Encode: func(struct{}) ([]byte, error) { return []byte{}, nil },
		Decode: func([]byte) (struct{}, error) { return struct{}{}, nil },
	}
}

// Uint32Codec encodes a uint32 as 4 bytes, big-endian.
func Uint32Codec() Codec[uint32] {
	return Codec[uint32]{
		Encode: func(v uint32) ([]byte, error) {
			b := make([]byte, 4)
			binary.BigEndian.PutUint32(b, v)
			return b, nil
		},
		Decode: func(b []byte) (uint32, error) {
			if len(b) != 4 {
				return 0, ErrTruncatedFrame
			}
			return binary.BigEndian.Uint32(b), nil
		},
	}
}

// StringCodec encodes a string as its raw UTF-8 bytes.
func StringCodec() Codec[string] {
	return Codec[string]{
		Encode: func(v string) ([]byte, error) { return []byte(v), nil },
		Decode: func(b []byte) (string, error) { return string(b), nil },
	}
}

// OptionCodec lifts a Codec[T] to a Codec[Option[T]]: Present=false encodes
// as the single discriminant byte 0x00; Present=true encodes as 0x01
// followed by inner's encoding of Value.
func OptionCodec[T any](inner Codec[T]) Codec[Option[T]] {
	return Codec[Option[T]]{
		Encode: func(v Option[T]) ([]byte, error) {
			if !v.Present {
				return []byte{0x00}, nil
			}
			b, err := inner.Encode(v.Value)
			if err != nil {
				return nil, err
			}
			out := make([]byte, 1+len(b))
			out[0] = 0x01
			copy(out[1:], b)
			return out, nil
		},
		Decode: func(b []byte) (Option[T], error) {
			if len(b) == 0 {
				return Option[T]{}, ErrTruncatedFrame
			}
			switch b[0] {
			case 0x00:
				return None[T](), nil
			case 0x01:
				inV, err := inner.Decode(b[1:])
				if err != nil {
					return Option[T]{}, err
				}
				return Some(inV), nil
			default:
				return Option[T]{}, ErrUnknownDiscriminant
			}
		},
	}
}

// SequenceCodec lifts a Codec[T] to a Codec[[]T]: a homogeneous sequence is
// the concatenation of each element's u32-be-length-prefixed encoding. A
// zero-byte buffer decodes to an empty (non-nil) sequence, not a
// length-prefixed zero-element marker.
func SequenceCodec[T any](inner Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		Encode: func(vs []T) ([]byte, error) {
			out := make([]byte, 0, len(vs)*8)
			for _, v := range vs {
				b, err := inner.Encode(v)
				if err != nil {
					return nil, err
				}
				if uint64(len(b)) > uint64(^uint32(0)) {
					return nil, ErrValueTooLarge
				}
				lenPrefix := make([]byte, 4)
				binary.BigEndian.PutUint32(lenPrefix, uint32(len(b)))
				out = append(out, lenPrefix...)
				out = append(out, b...)
			}
			return out, nil
		},
		Decode: func(b []byte) ([]T, error) {
			out := []T{}
			for len(b) > 0 {
				if len(b) < 4 {
					return nil, ErrTruncatedFrame
				}
				l := binary.BigEndian.Uint32(b[:4])
				b = b[4:]
				if uint64(len(b)) < uint64(l) {
					return nil, ErrTruncatedFrame
				}
				v, err := inner.Decode(b[:l])
				if err != nil {
					return nil, err
				}
				out = append(out, v)
				b = b[l:]
			}
			return out, nil
		},
	}
}

// KVCodec lifts a Codec[K] and Codec[V] to a Codec[KV[K,V]]: two u32-be
// lengths followed by key bytes then value bytes. Nesting composes
// associatively -- KVCodec(k, KVCodec(a, b)) yields a total payload of
// 8 + len(k) + 8 + len(a) + len(b), since the inner KV's own 8-byte header
// is simply part of "value bytes" from the outer codec's perspective.
func KVCodec[K, V any](keyCodec Codec[K], valCodec Codec[V]) Codec[KV[K, V]] {
	return Codec[KV[K, V]]{
		Encode: func(kv KV[K, V]) ([]byte, error) {
			kb, err := keyCodec.Encode(kv.Key)
			if err != nil {
				return nil, err
			}
			vb, err := valCodec.Encode(kv.Val)
			if err != nil {
				return nil, err
			}
			if uint64(len(kb)) > uint64(^uint32(0)) || uint64(len(vb)) > uint64(^uint32(0)) {
				return nil, ErrValueTooLarge
			}
			out := make([]byte, 8+len(kb)+len(vb))
			binary.BigEndian.PutUint32(out[0:4], uint32(len(kb)))
			binary.BigEndian.PutUint32(out[4:8], uint32(len(vb)))
			copy(out[8:8+len(kb)], kb)
			copy(out[8+len(kb):], vb)
			return out, nil
		},
		Decode: func(b []byte) (KV[K, V], error) {
			var zero KV[K, V]
			if len(b) < 8 {
				return zero, ErrTruncatedFrame
			}
			kl := binary.BigEndian.Uint32(b[0:4])
			vl := binary.BigEndian.Uint32(b[4:8])
			rest := b[8:]
			if uint64(len(rest)) != uint64(kl)+uint64(vl) {
				return zero, ErrTruncatedFrame
			}
			k, err := keyCodec.Decode(rest[:kl])
			if err != nil {
				return zero, err
			}
			v, err := valCodec.Decode(rest[kl:])
			if err != nil {
				return zero, err
			}
			return NewKV(k, v), nil
		},
	}
}
