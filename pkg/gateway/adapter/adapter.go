// Package adapter is the only place in this repository that imports both
// wire and core: it implements grpc.Dispatcher by translating wire
// records into MatchingEngine calls and back, and is where a command
// crossing the process boundary picks up a span, a log line, and a
// latency sample before it ever touches book state.
package adapter

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/altilar-labs/microlob/pkg/core"
	"github.com/altilar-labs/microlob/pkg/fixedpoint"
	"github.com/altilar-labs/microlob/pkg/latency"
	"github.com/altilar-labs/microlob/pkg/logging"
	"github.com/altilar-labs/microlob/pkg/otel"
	"github.com/altilar-labs/microlob/pkg/wire"
)

// EngineAdapter implements grpc.Dispatcher against one symbol's
// MatchingEngine. It is not safe for concurrent Dispatch calls — the
// engine it wraps has no synchronization of its own, by design, so the
// host process must serialize calls onto a single goroutine.
type EngineAdapter struct {
	engine   *core.MatchingEngine
	symbol   uint32
	recorder *latency.Recorder
}

// New constructs an adapter around engine for the given wire symbol ID.
// recorder may be nil, in which case dispatch latency is not sampled.
func New(engine *core.MatchingEngine, symbol uint32, recorder *latency.Recorder) *EngineAdapter {
	return &EngineAdapter{engine: engine, symbol: symbol, recorder: recorder}
}

// Dispatch satisfies grpc.Dispatcher. It never returns an error: a
// malformed command comes back as a wire.EvtReject event, the same as
// any other rejection the engine can produce.
func (a *EngineAdapter) Dispatch(ctx context.Context, cmd wire.Command) []wire.Event {
	start := time.Now()

	ctx, span := otel.StartOrderSpan(ctx, spanForCommand(cmd.Kind),
		attribute.Int64("order.id", int64(cmd.OrderID)))

	var coreEvents []core.Event
	switch cmd.Kind {
	case wire.CmdNew:
		coreEvents = a.engine.New(
			core.OrderID(cmd.OrderID),
			core.Side(cmd.Side),
			core.OrderType(cmd.OrderType),
			fixedpoint.FromTicks(cmd.Price),
			fixedpoint.FromLots(cmd.Quantity),
		)
	case wire.CmdCancel:
		coreEvents = a.engine.Cancel(core.OrderID(cmd.OrderID))
	case wire.CmdReplace:
		coreEvents = a.engine.Replace(
			core.OrderID(cmd.OrderID),
			fixedpoint.FromTicks(cmd.NewPrice),
			fixedpoint.FromLots(cmd.NewQuantity),
		)
	default:
		coreEvents = []core.Event{{Kind: core.EventReject, OrderID: core.OrderID(cmd.OrderID), Reason: core.ReasonInvalid}}
	}

	events := make([]wire.Event, len(coreEvents))
	metrics := otel.GetEngineMetrics()
	fills := 0
	for i, ev := range coreEvents {
		events[i] = toWireEvent(ev, a.symbol)
		metrics.RecordEvent(ctx, ev.Kind.String())
		if ev.Kind == core.EventFill {
			fills++
			metrics.RecordFill(ctx, ev.Quantity.Lots())
		}
	}

	if span != nil {
		otel.AddAttributes(span, attribute.Int(otel.AttributeFillCount, fills))
		span.End()
	}

	if a.recorder != nil {
		a.recorder.Record(time.Since(start))
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Uint64("order_id", cmd.OrderID).
		Int("events", len(events)).
		Msg("dispatched command")

	return events
}

func spanForCommand(kind wire.CommandKind) string {
	switch kind {
	case wire.CmdNew:
		return otel.SpanNewOrder
	case wire.CmdCancel:
		return otel.SpanCancelOrder
	case wire.CmdReplace:
		return otel.SpanReplaceOrder
	default:
		return otel.SpanNewOrder
	}
}

func toWireEvent(ev core.Event, symbol uint32) wire.Event {
	return wire.Event{
		Kind:      wire.EventKind(ev.Kind),
		Reason:    uint8(ev.Reason),
		Side:      uint8(ev.Side),
		OrderID:   uint64(ev.OrderID),
		CounterID: uint64(ev.CounterID),
		Price:     ev.Price.Ticks(),
		Quantity:  ev.Quantity.Lots(),
		Sequence:  ev.Sequence,
		Symbol:    symbol,
	}
}
