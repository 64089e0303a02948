package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// PriceLevel is the FIFO of resting orders at a single price, threaded as
// an intrusive doubly linked list through the pool slots themselves
// (Order.next/Order.prev) so that cancel — once the order index has
// produced a slotIndex — is O(1) instead of an O(k) scan.
//
// Aggregate is tracked incrementally; the level-invariant (aggregate ==
// sum of remaining across the FIFO) is maintained by construction, never
// recomputed.
type PriceLevel struct {
	Price     fixedpoint.Price
	head      slotIndex
	tail      slotIndex
	count     int
	Aggregate fixedpoint.Quantity
}

// Empty reports whether the level currently has no resting quantity. An
// empty level may still be retained in the book's price tree for reuse;
// it is simply skipped during best-price selection and iteration.
func (l *PriceLevel) Empty() bool {
	return l.head == nullSlot
}

// Front returns the slot at the head of the FIFO (the next order due to
// be matched), or nullSlot if empty.
func (l *PriceLevel) Front() slotIndex {
	return l.head
}

// Count returns the number of resting orders in the level.
func (l *PriceLevel) Count() int { return l.count }

// pushBack appends slot to the tail of the FIFO and adds its remaining
// quantity to the aggregate. slot must not already be linked anywhere.
func (l *PriceLevel) pushBack(pool *OrderPool, slot slotIndex) {
	order := pool.getSlot(slot)
	order.next = nullSlot
	order.prev = l.tail

	if l.tail != nullSlot {
		pool.getSlot(l.tail).next = slot
	} else {
		l.head = slot
	}
	l.tail = slot

	l.count++
	l.Aggregate = l.Aggregate.Add(order.Remaining)
}

// popFront removes and returns the head of the FIFO. Callers use this in
// the crossing loop once a maker's remaining quantity has reached zero.
func (l *PriceLevel) popFront(pool *OrderPool) slotIndex {
	head := l.head
	if head == nullSlot {
		return nullSlot
	}
	l.remove(pool, head)
	return head
}

// remove unlinks slot from the FIFO wherever it sits — head, tail, or
// the middle — in O(1), and subtracts its remaining quantity from the
// aggregate. This is the operation cancel uses once the order index has
// resolved an OrderID to a slotIndex.
func (l *PriceLevel) remove(pool *OrderPool, slot slotIndex) {
	order := pool.getSlot(slot)

	if order.prev != nullSlot {
		pool.getSlot(order.prev).next = order.next
	} else {
		l.head = order.next
	}

	if order.next != nullSlot {
		pool.getSlot(order.next).prev = order.prev
	} else {
		l.tail = order.prev
	}

	l.Aggregate = l.Aggregate.Sub(order.Remaining)
	l.count--

	order.next = nullSlot
	order.prev = nullSlot
}

// decreaseHeadQuantity reduces the head order's remaining quantity by
// fill and keeps Aggregate consistent. It does not unlink the order even
// if it reaches zero — the caller decides whether to pop it.
func (l *PriceLevel) decreaseHeadQuantity(pool *OrderPool, fill fixedpoint.Quantity) {
	order := pool.getSlot(l.head)
	order.Remaining = order.Remaining.Sub(fill)
	l.Aggregate = l.Aggregate.Sub(fill)
}
