package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altilar-labs/microlob/pkg/fixedpoint"
)

func testClock() Clock {
	var t int64
	return func() int64 {
		t++
		return t
	}
}

func newTestEngine(t *testing.T, capacity int) *MatchingEngine {
	t.Helper()
	e, err := NewMatchingEngine(capacity, testClock())
	require.NoError(t, err)
	return e
}

func TestEngineSimpleMatch(t *testing.T) {
	e := newTestEngine(t, 8)

	acks := e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	require.Len(t, acks, 1)
	assert.Equal(t, EventAck, acks[0].Kind)

	fills := e.New(2, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	require.Len(t, fills, 1)
	assert.Equal(t, EventFill, fills[0].Kind)
	assert.Equal(t, OrderID(2), fills[0].OrderID)
	assert.Equal(t, OrderID(1), fills[0].CounterID)
	assert.Equal(t, fixedpoint.FromLots(10), fills[0].Quantity)
	assert.Equal(t, 0, e.Len())
}

func TestEnginePartialFillRestsRemainder(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	events := e.New(2, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(15))

	require.Len(t, events, 2)
	assert.Equal(t, EventFill, events[0].Kind)
	assert.Equal(t, fixedpoint.FromLots(10), events[0].Quantity)
	assert.Equal(t, EventAck, events[1].Kind)
	assert.Equal(t, fixedpoint.FromLots(5), events[1].Quantity)
	assert.Equal(t, 1, e.Len())
}

func TestEnginePriceTimePriority(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	e.New(2, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))

	events := e.New(3, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	require.Len(t, events, 1)
	assert.Equal(t, OrderID(1), events[0].CounterID, "the order resting first at a price must be matched first")
}

func TestEnginePriceTimePriorityPrefersBetterPrice(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(105), fixedpoint.FromLots(5))
	e.New(2, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))

	events := e.New(3, Bid, Limit, fixedpoint.FromTicks(105), fixedpoint.FromLots(5))
	require.Len(t, events, 1)
	assert.Equal(t, OrderID(2), events[0].CounterID, "the better-priced resting ask must be matched first")
}

func TestEngineIOCWithNoLiquidityCancelsImmediately(t *testing.T) {
	e := newTestEngine(t, 8)

	events := e.New(1, Bid, ImmediateOrCancel, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	require.Len(t, events, 1)
	assert.Equal(t, EventCancelAck, events[0].Kind)
	assert.Equal(t, fixedpoint.FromLots(10), events[0].Quantity)
	assert.Equal(t, 0, e.Len(), "an IOC must never rest")
}

func TestEngineIOCPartialFillCancelsRemainder(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(4))
	events := e.New(2, Bid, ImmediateOrCancel, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))

	require.Len(t, events, 2)
	assert.Equal(t, EventFill, events[0].Kind)
	assert.Equal(t, fixedpoint.FromLots(4), events[0].Quantity)
	assert.Equal(t, EventCancelAck, events[1].Kind)
	assert.Equal(t, fixedpoint.FromLots(6), events[1].Quantity)
	assert.Equal(t, 0, e.Len())
}

func TestEnginePostOnlyRejectsWhenItWouldCross(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	events := e.New(2, Bid, PostOnly, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))

	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonWouldCross, events[0].Reason)
	assert.Equal(t, 1, e.Len(), "the resting ask must be untouched by a rejected PostOnly")
}

func TestEnginePostOnlyRestsWhenItDoesNotCross(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	events := e.New(2, Bid, PostOnly, fixedpoint.FromTicks(99), fixedpoint.FromLots(5))

	require.Len(t, events, 1)
	assert.Equal(t, EventAck, events[0].Kind)
	assert.Equal(t, 2, e.Len())
}

func TestEngineMarketOrderResidualCancelsRatherThanRejects(t *testing.T) {
	e := newTestEngine(t, 8)

	events := e.New(1, Bid, Market, 0, fixedpoint.FromLots(10))
	require.Len(t, events, 1)
	assert.Equal(t, EventCancelAck, events[0].Kind, "insufficient liquidity for a Market order cancels the residual, it does not reject")
}

func TestEngineCancelUnknownOrderIsRejected(t *testing.T) {
	e := newTestEngine(t, 8)
	events := e.Cancel(999)
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonUnknownOrder, events[0].Reason)
}

func TestEngineCancelRestingOrderFreesItsSlot(t *testing.T) {
	e := newTestEngine(t, 8)
	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	require.Equal(t, 1, e.Len())

	events := e.Cancel(1)
	require.Len(t, events, 1)
	assert.Equal(t, EventCancelAck, events[0].Kind)
	assert.Equal(t, 0, e.Len())

	// the id is free to be reused once cancelled
	events = e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))
	require.Len(t, events, 1)
	assert.Equal(t, EventAck, events[0].Kind)
}

func TestEngineReplaceResetsTimePriority(t *testing.T) {
	e := newTestEngine(t, 8)

	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	e.New(2, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))

	events := e.Replace(1, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	require.Len(t, events, 2)
	assert.Equal(t, EventCancelAck, events[0].Kind)
	assert.Equal(t, EventAck, events[1].Kind)

	// order 1 was replaced (and so lost time priority); order 2 should now
	// be matched first at the shared price.
	fillEvents := e.New(3, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	require.Len(t, fillEvents, 1)
	assert.Equal(t, OrderID(2), fillEvents[0].CounterID)
}

func TestEngineReplaceUnknownOrderIsRejected(t *testing.T) {
	e := newTestEngine(t, 8)
	events := e.Replace(42, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonUnknownOrder, events[0].Reason)
}

func TestEngineRejectsZeroQuantity(t *testing.T) {
	e := newTestEngine(t, 8)
	events := e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.ZeroQty)
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonInvalid, events[0].Reason)
}

func TestEngineRejectsNonPositivePriceOnLimit(t *testing.T) {
	e := newTestEngine(t, 8)
	events := e.New(1, Bid, Limit, fixedpoint.FromTicks(0), fixedpoint.FromLots(1))
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonInvalid, events[0].Reason)
}

func TestEngineRejectsDuplicateOrderID(t *testing.T) {
	e := newTestEngine(t, 8)
	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))
	events := e.New(1, Bid, Limit, fixedpoint.FromTicks(101), fixedpoint.FromLots(1))
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonInvalid, events[0].Reason)
}

func TestEngineRejectsNewOrderWhenPoolIsFull(t *testing.T) {
	e := newTestEngine(t, 1)
	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))

	events := e.New(2, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))
	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Kind)
	assert.Equal(t, ReasonNoCapacity, events[0].Reason)
}

func TestEngineFullyMatchedLimitOrderIgnoresFullPool(t *testing.T) {
	e := newTestEngine(t, 1)
	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))

	events := e.New(2, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	require.Len(t, events, 1)
	assert.Equal(t, EventFill, events[0].Kind)
	assert.Equal(t, 0, e.pool.Len())
}

func TestEnginePoolInvariantMatchesRestingCount(t *testing.T) {
	e := newTestEngine(t, 8)
	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(1))
	e.New(2, Bid, Limit, fixedpoint.FromTicks(99), fixedpoint.FromLots(1))
	e.New(3, Ask, Limit, fixedpoint.FromTicks(105), fixedpoint.FromLots(1))

	assert.Equal(t, 3, e.Len())
	assert.Equal(t, 3, e.pool.Len())
}

func TestEngineMarketPriceForQuantityAveragesAcrossLevels(t *testing.T) {
	e := newTestEngine(t, 8)
	e.New(1, Ask, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(10))
	e.New(2, Ask, Limit, fixedpoint.FromTicks(110), fixedpoint.FromLots(10))

	avg, filled, ok := e.MarketPriceForQuantity(Bid, fixedpoint.FromLots(20))
	require.True(t, ok)
	assert.Equal(t, fixedpoint.FromLots(20), filled)
	assert.Equal(t, fixedpoint.FromTicks(105), avg)
}

func TestEngineMarketPriceForQuantityNoLiquidity(t *testing.T) {
	e := newTestEngine(t, 8)
	_, _, ok := e.MarketPriceForQuantity(Bid, fixedpoint.FromLots(10))
	assert.False(t, ok)
}

func TestEngineDepthReflectsRestingLevels(t *testing.T) {
	e := newTestEngine(t, 8)
	e.New(1, Bid, Limit, fixedpoint.FromTicks(100), fixedpoint.FromLots(5))
	e.New(2, Bid, Limit, fixedpoint.FromTicks(105), fixedpoint.FromLots(5))

	depth := e.BidDepth(10)
	require.Len(t, depth, 2)
	assert.Equal(t, fixedpoint.FromTicks(105), depth[0].Price)
}
