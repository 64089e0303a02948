package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// engineMetrics holds the singleton instance.
	engineMetrics *EngineMetrics
	// meter is the global meter for engine-domain metrics.
	meter = otel.GetMeterProvider().Meter(instrumentationName)
)

// EngineMetrics holds the counters and histograms updated after each
// dispatched command, one sample per emitted event — never inside the
// inner crossing loop, where even an atomic increment per fill would show
// up in a profile.
type EngineMetrics struct {
	eventsTotal      metric.Int64Counter
	matchedQuantity  metric.Float64Histogram
}

// GetEngineMetrics returns the EngineMetrics singleton, initializing it
// lazily against whatever meter provider is currently installed.
func GetEngineMetrics() *EngineMetrics {
	if engineMetrics == nil {
		eventsTotal, err := meter.Int64Counter(
			"engine.events.total",
			metric.WithDescription("Total number of events emitted, by kind"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		matchedQuantity, err := meter.Float64Histogram(
			"engine.matched_quantity",
			metric.WithDescription("Distribution of quantity matched per fill"),
			metric.WithUnit("{lot}"),
		)
		if err != nil {
			return &EngineMetrics{eventsTotal: eventsTotal}
		}

		engineMetrics = &EngineMetrics{
			eventsTotal:     eventsTotal,
			matchedQuantity: matchedQuantity,
		}
	}

	return engineMetrics
}

// RecordEvent increments the per-kind event counter.
func (m *EngineMetrics) RecordEvent(ctx context.Context, kind string) {
	if m.eventsTotal == nil {
		return
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event.kind", kind)))
}

// RecordFill records one fill's quantity into the matched-quantity
// histogram.
func (m *EngineMetrics) RecordFill(ctx context.Context, quantity uint64) {
	if m.matchedQuantity == nil {
		return
	}
	m.matchedQuantity.Record(ctx, float64(quantity))
}

// ResetEngineMetricsForTesting clears the singleton so tests can install a fresh meter
// provider before the first call to GetEngineMetrics.
func ResetEngineMetricsForTesting() {
	engineMetrics = nil
	meter = otel.GetMeterProvider().Meter(instrumentationName)
}
