package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns Dispatcher events into OpenTelemetry spans: one span per
// event, named after event.Msg, with runID/step/nodeID and event.Meta as
// attributes. Each span is opened and ended immediately since an event marks
// a point in time, not a duration; SetStatus(codes.Error, ...) fires when
// event.Meta["error"] is set.
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	emitter := emit.NewOTelEmitter(otel.Tracer("treeflow-go"))
type OTelEmitter struct {
	tracer trace.Tracer
	spans  []trace.Span // never appended to: every span is ended inside Emit
}

// NewOTelEmitter wraps an OpenTelemetry tracer obtained from
// otel.Tracer("service-name").
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{
		tracer: tracer,
		spans:  make([]trace.Span, 0),
	}
}

func (o *OTelEmitter) Emit(event Event) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	o.addStandardAttributes(span, event)
	o.addMetadataAttributes(span, event.Meta)
	o.addConcurrencyAttributes(span, event.Meta)

	if err, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, err)
		span.RecordError(fmt.Errorf("%s", err))
	}
}

// EmitBatch opens and closes one span per event; the span processor batches
// the export.
func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, event.Msg)

		o.addStandardAttributes(span, event)
		o.addMetadataAttributes(span, event.Meta)
		o.addConcurrencyAttributes(span, event.Meta)

		if err, ok := event.Meta["error"].(string); ok {
			span.SetStatus(codes.Error, err)
			span.RecordError(fmt.Errorf("%s", err))
		}

		span.End()
	}

	return nil
}

// Flush forces the tracer provider to export pending spans, if it supports
// ForceFlush (the SDK provider does; the global no-op provider does not).
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()

	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}

	return nil
}

// addStandardAttributes adds core event fields as span attributes.
func (o *OTelEmitter) addStandardAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("treeflow.run_id", event.RunID),
		attribute.Int("treeflow.step", event.Step),
		attribute.String("treeflow.node_id", event.NodeID),
	)
}

// addMetadataAttributes converts event metadata (the dispatcher's "error",
// "result", and "status" keys) to span attributes under the treeflow.*
// namespace, converting by Go type (string/int/int64/float64/bool/duration,
// else stringified).
func (o *OTelEmitter) addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	if meta == nil {
		return
	}

	for key, value := range meta {
		if key == "step_id" || key == "order_key" || key == "attempt" {
			continue
		}

		attrKey := "treeflow." + key

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			// Convert duration to milliseconds
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			// Fallback to string representation
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}

// addConcurrencyAttributes records step_id/order_key/attempt when a caller's
// Callbacks or a future scheduler attaches them to an event's Meta; the
// Dispatcher itself does not set these today.
func (o *OTelEmitter) addConcurrencyAttributes(span trace.Span, meta map[string]interface{}) {
	if meta == nil {
		return
	}

	if stepID, ok := meta["step_id"].(string); ok {
		span.SetAttributes(attribute.String("treeflow.step_id", stepID))
	}

	if orderKey, ok := meta["order_key"].(string); ok {
		span.SetAttributes(attribute.String("treeflow.order_key", orderKey))
	}

	if attempt, ok := meta["attempt"].(int); ok {
		span.SetAttributes(attribute.Int("treeflow.attempt", attempt))
	} else if attempt, ok := meta["attempt"].(int64); ok {
		span.SetAttributes(attribute.Int64("treeflow.attempt", attempt))
	}
}
