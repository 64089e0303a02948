package core

import (
	"math/big"

	"github.com/altilar-labs/microlob/pkg/fixedpoint"
)

// Clock returns a monotonically non-decreasing timestamp. The engine
// thread calls it once per accepted order to stamp time priority; tests
// supply a deterministic fake instead of wall-clock time.
type Clock func() int64

// MatchingEngine owns one symbol's resting state: the order pool, the two
// book sides, and the OrderID index that ties them together. It carries
// no synchronization of its own — New/Cancel/Replace and the read-only
// accessors must all be called from one goroutine at a time.
type MatchingEngine struct {
	pool  *OrderPool
	bids  *BookSide
	asks  *BookSide
	index *orderIndex
	clock Clock
	seq   uint64

	// events is the reusable scratch buffer every dispatch method appends
	// into and returns. Callers must finish consuming the slice (copy out
	// anything they need to retain) before the next New, Cancel or Replace
	// call, which truncates and reuses the same backing array to stay allocation-free
	// on the hot path.
	events []Event
}

// NewMatchingEngine constructs an engine with room for exactly capacity
// simultaneously resting orders.
func NewMatchingEngine(capacity int, clock Clock) (*MatchingEngine, error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}
	pool := NewOrderPool(capacity)
	return &MatchingEngine{
		pool:   pool,
		bids:   newBookSide(true, pool),
		asks:   newBookSide(false, pool),
		index:  newOrderIndex(capacity),
		clock:  clock,
		events: make([]Event, 0, 8),
	}, nil
}

// Len returns the number of orders currently resting in the book.
func (e *MatchingEngine) Len() int { return e.pool.Len() }

func (e *MatchingEngine) sideFor(s Side) *BookSide {
	if s == Bid {
		return e.bids
	}
	return e.asks
}

func (e *MatchingEngine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

func (e *MatchingEngine) reset() []Event {
	e.events = e.events[:0]
	return e.events
}

func (e *MatchingEngine) emit(ev Event) {
	e.events = append(e.events, ev)
}

// New dispatches a New-order command and returns the events it produced.
// The returned slice aliases the engine's internal scratch buffer and is
// only valid until the next New, Cancel or Replace call.
func (e *MatchingEngine) New(id OrderID, side Side, typ OrderType, price fixedpoint.Price, qty fixedpoint.Quantity) []Event {
	e.reset()

	if qty.IsZero() {
		e.emit(newReject(id, ReasonInvalid, e.nextSeq()))
		return e.events
	}
	if typ > PostOnly {
		e.emit(newReject(id, ReasonInvalid, e.nextSeq()))
		return e.events
	}
	if (typ == Limit || typ == PostOnly) && !price.Positive() {
		e.emit(newReject(id, ReasonInvalid, e.nextSeq()))
		return e.events
	}
	if _, exists := e.index.get(id); exists {
		e.emit(newReject(id, ReasonInvalid, e.nextSeq()))
		return e.events
	}

	isBid := side == Bid
	opp := e.sideFor(side.Opposite())

	if typ == PostOnly {
		if best, ok := opp.Best(); ok && price.Crosses(best.Price, isBid) {
			e.emit(newReject(id, ReasonWouldCross, e.nextSeq()))
			return e.events
		}
		e.rest(id, side, typ, price, qty)
		return e.events
	}

	remaining := e.match(id, side, typ, price, qty, opp)

	switch {
	case remaining.IsZero():
		// Fully matched: a Limit order that crosses for its entire
		// quantity never needs a resting slot, so it must never be
		// rejected for lack of one.
	case typ == Market || typ == ImmediateOrCancel:
		e.emit(Event{Kind: EventCancelAck, OrderID: id, Quantity: remaining, Sequence: e.nextSeq()})
	default: // Limit, residual wants to rest
		h, err := e.pool.Allocate()
		if err != nil {
			e.emit(newReject(id, ReasonNoCapacity, e.nextSeq()))
			return e.events
		}
		e.restInSlot(h, id, side, Limit, price, qty, remaining)
	}

	return e.events
}

// match runs the crossing loop against opp, emitting one Fill event per
// maker/taker pairing, and returns the taker's unfilled remainder.
func (e *MatchingEngine) match(id OrderID, side Side, typ OrderType, price fixedpoint.Price, qty fixedpoint.Quantity, opp *BookSide) fixedpoint.Quantity {
	isBid := side == Bid
	remaining := qty

	for !remaining.IsZero() {
		level, ok := opp.Best()
		if !ok {
			break
		}
		if typ != Market && !price.Crosses(level.Price, isBid) {
			break
		}

		for !remaining.IsZero() && !level.Empty() {
			makerSlot := level.Front()
			maker := e.pool.getSlot(makerSlot)
			fill := remaining.Min(maker.Remaining)

			level.decreaseHeadQuantity(e.pool, fill)
			remaining = remaining.Sub(fill)

			e.emit(newFill(id, side, maker.ID, level.Price, fill, e.nextSeq()))

			if maker.Remaining.IsZero() {
				makerID := maker.ID
				level.popFront(e.pool)
				e.index.delete(makerID)
				e.pool.Free(Handle{Index: uint32(makerSlot), Generation: maker.generation})
			}
		}
	}

	return remaining
}

// rest allocates a fresh slot for a PostOnly order (which never matches)
// and threads it straight onto the book.
func (e *MatchingEngine) rest(id OrderID, side Side, typ OrderType, price fixedpoint.Price, qty fixedpoint.Quantity) {
	h, err := e.pool.Allocate()
	if err != nil {
		e.emit(newReject(id, ReasonNoCapacity, e.nextSeq()))
		return
	}
	e.restInSlot(h, id, side, typ, price, qty, qty)
}

// restInSlot finalizes an already-allocated handle as a resting order
// with the given remaining quantity and threads it onto its book side.
func (e *MatchingEngine) restInSlot(h Handle, id OrderID, side Side, typ OrderType, price fixedpoint.Price, original, remaining fixedpoint.Quantity) {
	order := e.pool.Get(h)
	order.ID = id
	order.Side = side
	order.Type = typ
	order.Price = price
	order.Original = original
	order.Remaining = remaining
	order.Timestamp = e.clock()

	bookSide := e.sideFor(side)
	bookSide.Add(price, slotIndex(h.Index))
	e.index.put(id, location{handle: h, side: side, price: price})

	e.emit(newAck(id, price, remaining, e.nextSeq()))
}

// Cancel dispatches a Cancel command for id.
func (e *MatchingEngine) Cancel(id OrderID) []Event {
	e.reset()

	loc, ok := e.index.get(id)
	if !ok {
		e.emit(newReject(id, ReasonUnknownOrder, e.nextSeq()))
		return e.events
	}

	e.unlinkAndFree(id, loc)
	e.emit(newCancelAck(id, e.nextSeq()))
	return e.events
}

func (e *MatchingEngine) unlinkAndFree(id OrderID, loc location) {
	side := e.sideFor(loc.side)
	side.Remove(loc.price, slotIndex(loc.handle.Index))
	e.pool.Free(loc.handle)
	e.index.delete(id)
}

// Replace dispatches a Replace command: cancel-then-new under the same
// OrderID, unconditionally resetting time priority, per the conservative
// rule decided for the case where only quantity decreases.
func (e *MatchingEngine) Replace(id OrderID, newPrice fixedpoint.Price, newQty fixedpoint.Quantity) []Event {
	e.reset()

	loc, ok := e.index.get(id)
	if !ok {
		e.emit(newReject(id, ReasonUnknownOrder, e.nextSeq()))
		return e.events
	}

	side := loc.side
	e.unlinkAndFree(id, loc)
	e.emit(newCancelAck(id, e.nextSeq()))

	// New appends to the same scratch buffer via its own reset, so build
	// the replacement leg separately and splice it on rather than losing
	// the CancelAck already recorded above.
	cancelEvents := append([]Event(nil), e.events...)
	newEvents := e.New(id, side, Limit, newPrice, newQty)
	e.events = append(cancelEvents, newEvents...)
	return e.events
}

// BidDepth returns a read-only snapshot of up to levels resting bid price
// levels, best first.
func (e *MatchingEngine) BidDepth(levels int) []LevelView { return e.bids.Depth(levels) }

// AskDepth returns a read-only snapshot of up to levels resting ask price
// levels, best first.
func (e *MatchingEngine) AskDepth(levels int) []LevelView { return e.asks.Depth(levels) }

// MarketPriceForQuantity computes the volume-weighted average price at
// which a hypothetical order of qty on side would currently execute
// against the resting opposite side, without matching or mutating any
// state. It returns ok=false if the opposite side can't fill any of qty.
func (e *MatchingEngine) MarketPriceForQuantity(side Side, qty fixedpoint.Quantity) (avg fixedpoint.Price, filled fixedpoint.Quantity, ok bool) {
	opp := e.sideFor(side.Opposite())
	remaining := qty
	totalCost := new(big.Int)

	opp.IterFromBest(func(l *PriceLevel) bool {
		if remaining.IsZero() {
			return false
		}
		take := remaining.Min(l.Aggregate)
		if take.IsZero() {
			return true
		}
		cost := new(big.Int).Mul(big.NewInt(l.Price.Ticks()), big.NewInt(int64(take.Lots())))
		totalCost.Add(totalCost, cost)
		filled = filled.Add(take)
		remaining = remaining.Sub(take)
		return !remaining.IsZero()
	})

	if filled.IsZero() {
		return 0, 0, false
	}
	avgBig := new(big.Int).Div(totalCost, big.NewInt(int64(filled.Lots())))
	return fixedpoint.FromTicks(avgBig.Int64()), filled, true
}
