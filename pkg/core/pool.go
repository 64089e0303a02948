package core

import "errors"

// ErrPoolFull is returned by Allocate when the free list is exhausted. It
// is never fatal — callers surface it as a Reject(no_capacity) event.
var ErrPoolFull = errors.New("core: order pool exhausted")

// OrderPool is a fixed-capacity arena of Order slots. Handles are 32-bit
// indices into the backing array plus a generation counter; allocation and
// freeing are both O(1) and allocation-free after construction, via an
// intrusive free list threaded through the unused slots' next field.
//
// The pool is exclusively owned by the engine thread — it carries no
// locking of its own.
type OrderPool struct {
	slots     []Order
	freeHead  slotIndex
	freeCount int
	capacity  int
}

// NewOrderPool constructs a pool with room for exactly capacity live
// orders. capacity must be > 0.
func NewOrderPool(capacity int) *OrderPool {
	if capacity <= 0 {
		panic("core: pool capacity must be positive")
	}

	p := &OrderPool{
		// slot 0 is the reserved null sentinel, so the backing array is
		// capacity+1 long.
		slots:    make([]Order, capacity+1),
		capacity: capacity,
	}
	p.resetFreeList()
	return p
}

func (p *OrderPool) resetFreeList() {
	for i := 1; i <= p.capacity; i++ {
		next := slotIndex(0)
		if i < p.capacity {
			next = slotIndex(i + 1)
		}
		p.slots[i].next = next
	}
	p.freeHead = slotIndex(1)
	p.freeCount = p.capacity
}

// Capacity returns the maximum number of simultaneously live orders.
func (p *OrderPool) Capacity() int { return p.capacity }

// Len returns the number of currently live (allocated) orders. Per the
// pool-live-count invariant, this always equals the number of orders
// currently resting in the book.
func (p *OrderPool) Len() int { return p.capacity - p.freeCount }

// Allocate reserves a slot and returns a stable Handle to it, or
// ErrPoolFull if the pool is exhausted. The returned slot's fields are
// zeroed except for Generation bookkeeping; the caller must fully
// initialize the Order before use.
func (p *OrderPool) Allocate() (Handle, error) {
	if p.freeHead == nullSlot {
		return Handle{}, ErrPoolFull
	}

	idx := p.freeHead
	slot := &p.slots[idx]
	p.freeHead = slot.next
	p.freeCount--

	slot.next = nullSlot
	slot.prev = nullSlot

	return Handle{Index: uint32(idx), Generation: slot.generation}, nil
}

// Get returns a pointer to the live order behind h, or nil if h is stale
// (already freed and possibly reused under a new generation) or out of
// range. The generation check is cheap enough to run unconditionally
// rather than gating it behind a debug build tag.
func (p *OrderPool) Get(h Handle) *Order {
	if h.Index == 0 || int(h.Index) > p.capacity {
		return nil
	}
	slot := &p.slots[h.Index]
	if slot.generation != h.Generation {
		return nil
	}
	return slot
}

// getSlot is the hot-path accessor used internally once a slotIndex is
// already known to be live (e.g. while walking a PriceLevel's FIFO) —
// it skips the generation check entirely.
func (p *OrderPool) getSlot(idx slotIndex) *Order {
	return &p.slots[idx]
}

// Free returns h's slot to the pool and bumps its generation so that any
// other Handle still referring to it becomes stale. The caller is
// responsible for having already unlinked the order from its PriceLevel
// and the order index.
func (p *OrderPool) Free(h Handle) {
	if h.Index == 0 || int(h.Index) > p.capacity {
		return
	}
	slot := &p.slots[h.Index]
	if slot.generation != h.Generation {
		return // already freed under a later generation; idempotent no-op
	}

	*slot = Order{generation: slot.generation + 1}
	slot.next = p.freeHead
	p.freeHead = slotIndex(h.Index)
	p.freeCount++
}
