// Package ring implements a lock-free single-producer/single-consumer
// ring buffer of fixed-size messages. There is exactly one writer
// goroutine and exactly one reader goroutine per Ring; using it from more
// than one of either is a data race.
package ring

import "sync/atomic"

const cacheLineSize = 64

// Ring is a fixed-capacity SPSC circular buffer of T. Capacity must be a
// power of two so that index wraparound is a single AND instead of a
// division. The read and write cursors are padded onto their own cache
// lines so that the producer spinning on readPos and the consumer
// spinning on writePos never invalidate each other's line on a shared
// core — the classic false-sharing fix for a cross-core ring.
type Ring[T any] struct {
	buf  []T
	mask uint64

	writePos uint64
	_        [cacheLineSize - 8]byte
	readPos  uint64
	_        [cacheLineSize - 8]byte
}

// New constructs a Ring with room for exactly capacity messages. capacity
// must be a power of two and at least 2.
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two >= 2")
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
}

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len returns the number of messages currently queued. It is a snapshot;
// under concurrent use by the producer/consumer goroutines the true value
// may have already changed by the time the caller observes it.
func (r *Ring[T]) Len() int {
	w := atomic.LoadUint64(&r.writePos)
	rp := atomic.LoadUint64(&r.readPos)
	return int(w - rp)
}

// TryPush attempts to enqueue v without blocking. It reports false if the
// ring is full; the caller decides whether to spin, drop, or apply
// backpressure upstream.
func (r *Ring[T]) TryPush(v T) bool {
	w := atomic.LoadUint64(&r.writePos)
	rp := atomic.LoadUint64(&r.readPos)
	if w-rp >= uint64(len(r.buf)) {
		return false
	}
	r.buf[w&r.mask] = v
	atomic.StoreUint64(&r.writePos, w+1)
	return true
}

// TryPop attempts to dequeue one message without blocking. It reports
// false if the ring is empty.
func (r *Ring[T]) TryPop() (T, bool) {
	var zero T
	rp := atomic.LoadUint64(&r.readPos)
	w := atomic.LoadUint64(&r.writePos)
	if rp == w {
		return zero, false
	}
	v := r.buf[rp&r.mask]
	atomic.StoreUint64(&r.readPos, rp+1)
	return v, true
}

// Drain pops up to len(out) messages into out without blocking, returning
// the number actually popped. It lets a consumer amortize the atomic load
// of writePos across a batch instead of paying it once per message.
func (r *Ring[T]) Drain(out []T) int {
	rp := atomic.LoadUint64(&r.readPos)
	w := atomic.LoadUint64(&r.writePos)

	available := w - rp
	n := uint64(len(out))
	if available < n {
		n = available
	}

	for i := uint64(0); i < n; i++ {
		out[i] = r.buf[(rp+i)&r.mask]
	}
	if n > 0 {
		atomic.StoreUint64(&r.readPos, rp+n)
	}
	return int(n)
}
