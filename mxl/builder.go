package mxl

import (
	"fmt"
	"reflect"
)

// Builder wraps a Graph under construction with a single type-parameterized
// handle family: instead of one builder subtype per node kind, every
// operation returns a Handle[O], and Go's generics reject wiring a Handle[O]
// into anything that does not expect exactly O at compile time.
type Builder struct {
	g *Graph
}

// NewBuilder returns a Builder around a fresh, empty Graph.
func NewBuilder() *Builder {
	return &Builder{g: NewGraph()}
}

// Graph returns the Graph being assembled. Once execution begins (a Driver
// has been built from it), the builder must not be used to add further
// nodes or edges.
func (b *Builder) Graph() *Graph {
	return b.g
}

// Handle is a copyable, comparable reference to one node's output, carrying
// its element type O only as a compile-time phantom. A Handle itself holds
// no Codec -- each operator constructor below takes the codecs it needs
// explicitly, the same way the MxlData capability is realized as an
// explicit value rather than a blanket trait impl.
type Handle[O any] struct {
	id uint32
	b  *Builder
}

// ID returns the underlying node id, for callers that need to address the
// node directly (export, direct Driver.TickNode calls, diagnostics).
func (h Handle[O]) ID() uint32 {
	return h.id
}

// Builder returns the Builder this handle was produced from.
func (h Handle[O]) Builder() *Builder {
	return h.b
}

// Label overwrites the node's metadata label and returns h unchanged, to
// allow chaining: Map(b, src, ...).Label("uppercase").
func (h Handle[O]) Label(label string) Handle[O] {
	h.b.g.SetLabel(h.id, label)
	return h
}

// Connect wires h's output into an additional, already-existing node's
// input port dstPort. Most chains never need this -- every builder
// function below wires its own upstream link at construction time -- it
// exists for fan-out into a node built via a lower-level path.
func (h Handle[O]) Connect(dstID, dstPort uint32) error {
	return h.b.g.AddEdge(h.id, 0, dstID, dstPort)
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return t.String()
}

func must(id uint32, err error) uint32 {
	if err != nil {
		panic(fmt.Errorf("mxl: builder invariant violated: %w", err))
	}
	return id
}

// AddSource registers a source node (no upstream input) and returns a
// handle to its single output port.
func AddSource[O any](b *Builder, node VNode) Handle[O] {
	id := must(b.g.Insert(node, KindSource, "", "()", typeName[O](), nil))
	return Handle[O]{id: id, b: b}
}

// Transform registers a node with one input (reading h's output) and one
// output of a possibly different type O, wiring port 0 to port 0. This is
// the general-purpose entry point every operator constructor below goes
// through, so a caller with a custom VNode never has to reach for a
// lower-level Graph method.
func Transform[I, O any](b *Builder, h Handle[I], node VNode, label string) Handle[O] {
	id := must(b.g.Insert(node, KindTransform, label, typeName[I](), typeName[O](),
		[]UpstreamLink{{SourceNodeID: h.id, SourcePort: 0, DestPort: 0}}))
	return Handle[O]{id: id, b: b}
}

// Sink registers a terminal node reading h's output on port 0. There is no
// returned handle: a sink has no output port for a further stage to consume.
func Sink[I any](b *Builder, h Handle[I], node VNode, label string) uint32 {
	return must(b.g.Insert(node, KindSink, label, typeName[I](), "()",
		[]UpstreamLink{{SourceNodeID: h.id, SourcePort: 0, DestPort: 0}}))
}

// Map applies fn to every Data value h produces, registering a Map node.
// fn must not fail; use TryMap for a fallible transform.
func Map[I, O any](b *Builder, h Handle[I], codecI Codec[I], codecO Codec[O], fn func(I) O) Handle[O] {
	return Transform[I, O](b, h, newMapNode(codecI, codecO, fn), "")
}

// TryMap applies a fallible fn to every Data value h produces. A returned
// error is surfaced to the driver as a Tick error (which may halt or log
// it), never as a downstream Frame::Error.
func TryMap[I, O any](b *Builder, h Handle[I], codecI Codec[I], codecO Codec[O], fn func(I) (O, error)) Handle[O] {
	return Transform[I, O](b, h, newTryMapNode(codecI, codecO, fn), "")
}

// Filter keeps only the Data values for which pred returns true, dropping
// the rest without affecting EOS propagation.
func (h Handle[O]) Filter(codec Codec[O], pred func(O) bool) Handle[O] {
	return Transform[O, O](h.b, h, newFilterNode(codec, pred), "")
}

// Collect buffers every Data value until End, then emits them as a single
// []O Data frame followed by End. O is h's own type parameter, so
// this does not need a free function despite changing the element type.
func (h Handle[O]) Collect(codecI Codec[O], codecO Codec[[]O]) Handle[[]O] {
	return Transform[O, []O](h.b, h, newCollectNode(codecI, codecO), "")
}

// Batch groups every n consecutive Data values into a []O frame, emitting a
// short final batch at End if one is buffered. At most one batch is
// emitted per tick.
func (h Handle[O]) Batch(n int, codecI Codec[O], codecO Codec[[]O]) Handle[[]O] {
	return Transform[O, []O](h.b, h, newBatchNode(n, codecI, codecO), "")
}

// Flatten expands each []E Data frame h produces into its individual
// elements, each as its own Data frame, in order. E is a new type
// parameter relative to h's own O=[]E, so unlike Collect/Batch this must be
// a free function rather than a method.
func Flatten[E any](b *Builder, h Handle[[]E], codecSeq Codec[[]E], codecElem Codec[E]) Handle[E] {
	return Transform[[]E, E](b, h, newFlattenNode(codecSeq, codecElem), "")
}

// ToJSON re-encodes every Data value as a schema-free JSON object. A value that does not round-trip to a JSON object shape yields
// a Tick error the first time it is encountered.
func (h Handle[O]) ToJSON(codec Codec[O]) Handle[JSON] {
	return Transform[O, JSON](h.b, h, newToJSONNode(codec), "")
}

// GroupByKey buffers every KV[K, V] until End, then emits one
// KV[K, []V] per distinct key, in first-seen key order, followed by End.
// K and V are not reachable from h's single type parameter
// KV[K, V] without a new type parameter, so this is a free function.
func GroupByKey[K comparable, V any](b *Builder, h Handle[KV[K, V]], codecIn Codec[KV[K, V]], codecOut Codec[KV[K, []V]]) Handle[KV[K, []V]] {
	return Transform[KV[K, V], KV[K, []V]](b, h, newGroupByKeyNode[K, V](codecIn, codecOut), "")
}

// LeftJoin registers a two-input join node: port 0 reads left, port 1 reads
// right. It buffers the right side until its End, then for each left value
// emits one KV[K, KV[L, R]] per buffered right entry sharing its key, in
// the right side's insertion order. A left key with no
// matching right entry emits nothing -- a documented limitation, not a bug.
func LeftJoin[K comparable, L, R any](
	b *Builder,
	left Handle[KV[K, L]], right Handle[KV[K, R]],
	codecLeft Codec[KV[K, L]], codecRight Codec[KV[K, R]], codecOut Codec[KV[K, KV[L, R]]],
) Handle[KV[K, KV[L, R]]] {
	node := newLeftJoinNode[K, L, R](codecLeft, codecRight, codecOut)

	id := must(b.g.Insert(node, KindJoin, "", typeName[KV[K, L]](), typeName[KV[K, KV[L, R]]](),
		[]UpstreamLink{{SourceNodeID: left.id, SourcePort: 0, DestPort: 0}}))

	if err := b.g.AddEdge(right.id, 0, id, 1); err != nil {
		panic(fmt.Errorf("mxl: builder invariant violated: %w", err))
	}

	return Handle[KV[K, KV[L, R]]]{id: id, b: b}
}
