package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTracerFallsBackToNoopBeforeInit(t *testing.T) {
	ResetForTesting()
	tracer := Tracer()
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "probe")
	assert.False(t, span.SpanContext().HasTraceID())
}

func TestInitForTestingInstallsTracer(t *testing.T) {
	ResetForTesting()
	tp := sdktrace.NewTracerProvider()
	InitForTesting(tp.Tracer("test"))

	_, span := Tracer().Start(context.Background(), SpanMatchOrder)
	assert.NotNil(t, span)
}

func TestStartOrderSpanNeverPanicsBeforeInit(t *testing.T) {
	ResetForTesting()
	ctx, span := StartOrderSpan(context.Background(), SpanNewOrder)
	assert.NotNil(t, ctx)
	AddAttributes(span)
}
