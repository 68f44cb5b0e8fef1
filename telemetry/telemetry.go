// Package telemetry instruments Driver.TickNode calls with otel counters
// and spans: each tick is wrapped in a span and recorded in a tick counter,
// an error counter and a duration recorder, keyed by operation and label.
// Frames received and sent per tick are not counted.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/trace"

	"github.com/mixlayer/graph/mxl"
)

var (
	meter  = global.Meter("mxl")
	tracer = otel.GetTracerProvider().Tracer("mxl")

	tickCounter  = metric.Must(meter).NewInt64Counter("mxl.tick.count")
	errorCounter = metric.Must(meter).NewInt64Counter("mxl.tick.errors")
	tickDuration = metric.Must(meter).NewInt64ValueRecorder("mxl.tick.duration_ms")
)

type runIDKey struct{}

// withRunID attaches a run correlation ID to ctx, read back by TickNode and
// attached to every span and counter measurement it records.
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// TickNode ticks id on d, recording a span, the tick and error counters and
// the tick duration, keyed by the node's recorded operation and label.
func TickNode(ctx context.Context, g *mxl.Graph, d *mxl.Driver, id uint32) error {
	meta, _ := g.Meta(id)

	attrs := []attribute.KeyValue{
		attribute.String("mxl.operation", meta.Operation),
		attribute.String("mxl.kind", meta.Kind.String()),
	}
	if meta.Label != "" {
		attrs = append(attrs, attribute.String("mxl.label", meta.Label))
	}
	if runID, ok := ctx.Value(runIDKey{}).(string); ok {
		attrs = append(attrs, attribute.String("mxl.run_id", runID))
	}
	attrSet := trace.WithAttributes(attrs...)

	_, span := tracer.Start(ctx, "mxl.tick", attrSet)
	defer span.End()

	start := time.Now()
	err := d.TickNode(id)
	elapsed := time.Since(start)

	tickCounter.Measure(ctx, 1, attrs...)
	tickDuration.Measure(ctx, elapsed.Milliseconds(), attrs...)

	if err != nil {
		errorCounter.Measure(ctx, 1, attrs...)
		span.RecordError(err)
	}

	return err
}

// RunToQuiescence ticks every node in the graph's source-rooted order
// through TickNode, pass after pass, until Driver itself reports the graph
// has quiesced. Quiescence detection (did this pass produce output, have
// all channels closed) stays Driver's job -- see RunToQuiescence there --
// this loop only adds a span and the counters above around every
// individual tick it drives.
func RunToQuiescence(ctx context.Context, g *mxl.Graph, d *mxl.Driver) error {
	ctx = withRunID(ctx, uuid.NewString())
	order := g.SortFromSources()

	for pass := 0; pass < mxl.MaxQuiescencePasses; pass++ {
		d.ResetPassCounter()

		for _, id := range order {
			if err := TickNode(ctx, g, d, id); err != nil {
				return err
			}
		}

		if d.Quiesced() {
			return nil
		}
	}

	return mxl.ErrDriverDidNotQuiesce
}
