package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// OrderID is the externally assigned identifier a client uses to refer to
// an order. It is unique over the engine's lifetime; the engine translates
// it to an internal pool handle via the order index and never exposes a
// handle across the wire.
type OrderID uint64

// Side is Bid or Ask. There is no tie-break beyond price: time priority is
// resolved inside a PriceLevel's FIFO.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// String implements fmt.Stringer.
func (s Side) String() string {
	if s == Bid {
		return "BID"
	}
	return "ASK"
}

// OrderType is the small tagged union decided once per command. Routing on
// it happens once, in MatchingEngine.New; inside the crossing loop the only
// check on it is whether a Market order skips the price test.
type OrderType uint8

const (
	// Limit rests on the book if not fully matched.
	Limit OrderType = iota
	// Market matches at best available prices; any unfilled remainder is
	// cancelled rather than rested.
	Market
	// ImmediateOrCancel matches what it can immediately; the remainder is
	// cancelled, never rests.
	ImmediateOrCancel
	// PostOnly must rest without crossing; if it would cross, the whole
	// order is rejected before it ever enters the matching loop.
	PostOnly
)

// String implements fmt.Stringer.
func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case ImmediateOrCancel:
		return "IOC"
	case PostOnly:
		return "POST_ONLY"
	default:
		return "UNKNOWN"
	}
}

// slotIndex is a raw index into the OrderPool's backing array. Index 0 is
// reserved as the "no slot" sentinel, so a pool of capacity N allocates
// N+1 array entries and hands out indices 1..N.
type slotIndex uint32

const nullSlot slotIndex = 0

// Order is the resident order record: exactly one 64-byte cache line, hot
// fields first. Only Remaining and Timestamp (on replace) ever change
// after construction; Side and Type are fixed for the life of the record.
type Order struct {
	ID        OrderID             // 8  — client-assigned, stable for life of record
	Remaining fixedpoint.Quantity // 8  — 0 means depleted
	Price     fixedpoint.Price    // 8  — ticks; meaningless (0) for Market
	Timestamp int64               // 8  — monotonic per engine thread
	Original  fixedpoint.Quantity // 8  — quantity at acceptance time
	Symbol    uint32              // 4  — zero in this single-symbol build
	Side      Side                // 1
	Type      OrderType           // 1
	_         [2]byte             // pad to 48
	next      slotIndex           // 4  — intrusive FIFO successor within its level
	prev      slotIndex           // 4  — intrusive FIFO predecessor within its level
	generation uint32             // 4  — bumped on free, detects stale handles
	_         [4]byte             // pad to 64
}

// Handle is the stable, externally-held reference to a live pool slot. It
// is the only way code outside the pool refers to a resting order.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether h is the zero Handle (never a valid allocation).
func (h Handle) IsZero() bool { return h.Index == 0 }
