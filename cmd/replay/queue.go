package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/altilar-labs/microlob/pkg/ring"
	"github.com/altilar-labs/microlob/pkg/wire"
)

// ringBuffer wraps ring.Ring with a closed flag and a blocking Pop, since
// the sender goroutine needs to wait for the tape producer without
// busy-spinning the CPU the way the bare SPSC ring's TryPop/TryPush pair
// is meant to be used inside the engine thread itself.
type ringBuffer struct {
	r      *ring.Ring[wire.Command]
	closed atomic.Bool
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{r: ring.New[wire.Command](capacity)}
}

func (q *ringBuffer) TryPush(cmd wire.Command) bool {
	return q.r.TryPush(cmd)
}

func (q *ringBuffer) Close() {
	q.closed.Store(true)
}

// Pop blocks until a command is available, the queue is closed and
// drained, or ctx is cancelled.
func (q *ringBuffer) Pop(ctx context.Context) (wire.Command, bool) {
	for {
		if cmd, ok := q.r.TryPop(); ok {
			return cmd, true
		}
		if q.closed.Load() {
			if cmd, ok := q.r.TryPop(); ok {
				return cmd, true
			}
			return wire.Command{}, false
		}
		select {
		case <-ctx.Done():
			return wire.Command{}, false
		case <-time.After(100 * time.Microsecond):
		}
	}
}
