package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names. Every dispatched command gets exactly one span — the
	// crossing loop inside it never opens a child span per fill, only
	// attributes accumulated on the one span for the whole command.
	SpanNewOrder     = "new_order"
	SpanMatchOrder   = "match_order"
	SpanCancelOrder  = "cancel_order"
	SpanReplaceOrder = "replace_order"
	SpanPublishEvent = "publish_event"

	// Attribute keys
	AttributeOrderID           = "order.id"
	AttributeOrderSide         = "order.side"
	AttributeOrderType         = "order.type"
	AttributeOrderQuantity     = "order.quantity"
	AttributeOrderPrice        = "order.price"
	AttributeEventKind         = "event.kind"
	AttributeRejectReason      = "event.reject_reason"
	AttributeExecutedQuantity  = "order.executed_quantity"
	AttributeRemainingQuantity = "order.remaining_quantity"
	AttributeFillCount         = "order.fill_count"
)

// StartOrderSpan starts a new span for one dispatched command, under the
// engine's single tracer.
func StartOrderSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := Tracer()
	if tracer == nil {
		return ctx, nil
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span.
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
