package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// EventKind tags what a single Event reports.
type EventKind uint8

const (
	EventAck EventKind = iota
	EventFill
	EventCancelAck
	EventReject
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventAck:
		return "ACK"
	case EventFill:
		return "FILL"
	case EventCancelAck:
		return "CANCEL_ACK"
	case EventReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// RejectReason classifies why a command produced a Reject event. It is the
// only failure signal the engine emits — there is no separate Go error
// path for a bad command once it reaches dispatch.
type RejectReason uint8

const (
	// ReasonNone is the zero value, valid only on non-Reject events.
	ReasonNone RejectReason = iota
	// ReasonInvalid covers malformed commands: zero/negative price on a
	// Limit, zero quantity, an unrecognized OrderType.
	ReasonInvalid
	// ReasonUnknownOrder is returned for Cancel/Replace against an
	// OrderID the engine has no live order for.
	ReasonUnknownOrder
	// ReasonNoCapacity is returned when the order pool is exhausted.
	ReasonNoCapacity
	// ReasonWouldCross is returned for a PostOnly order that would match
	// immediately against the resting book.
	ReasonWouldCross
)

// String implements fmt.Stringer.
func (r RejectReason) String() string {
	switch r {
	case ReasonInvalid:
		return "invalid"
	case ReasonUnknownOrder:
		return "unknown_order"
	case ReasonNoCapacity:
		return "no_capacity"
	case ReasonWouldCross:
		return "would_cross"
	default:
		return "none"
	}
}

// Event is the record type the engine emits for the commands it
// dispatches; one command can emit several. A New that fully or
// partially matches produces one Ack
// (if any quantity rests) and zero or more Fill events — one per
// maker/taker pairing — rather than folding them together, so a consumer
// never has to unpack a variable-length payload out of a fixed-size
// record.
type Event struct {
	Kind      EventKind
	OrderID   OrderID
	CounterID OrderID             // maker's OrderID, set only on Fill
	Side      Side                // taker's side, set only on Fill
	Price     fixedpoint.Price    // fill price (maker's resting price) or rest price on Ack
	Quantity  fixedpoint.Quantity // filled quantity on Fill, remaining quantity on Ack
	Reason    RejectReason        // set only on Reject
	Sequence  uint64              // monotonic, assigned by the engine thread
}

// newAck builds an Ack event for the portion of an order that rests.
func newAck(id OrderID, price fixedpoint.Price, remaining fixedpoint.Quantity, seq uint64) Event {
	return Event{Kind: EventAck, OrderID: id, Price: price, Quantity: remaining, Sequence: seq}
}

// newFill builds a Fill event. id/side describe the taker; counterID
// names the resting maker that was matched against.
func newFill(id OrderID, side Side, counterID OrderID, price fixedpoint.Price, qty fixedpoint.Quantity, seq uint64) Event {
	return Event{
		Kind:      EventFill,
		OrderID:   id,
		CounterID: counterID,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Sequence:  seq,
	}
}

// newCancelAck builds a CancelAck event for the order identified by id.
func newCancelAck(id OrderID, seq uint64) Event {
	return Event{Kind: EventCancelAck, OrderID: id, Sequence: seq}
}

// newReject builds a Reject event carrying why the command failed.
func newReject(id OrderID, reason RejectReason, seq uint64) Event {
	return Event{Kind: EventReject, OrderID: id, Reason: reason, Sequence: seq}
}
