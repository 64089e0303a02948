package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altilar-labs/microlob/pkg/fixedpoint"
)

func allocWithQty(t *testing.T, pool *OrderPool, qty fixedpoint.Quantity) slotIndex {
	t.Helper()
	h, err := pool.Allocate()
	require.NoError(t, err)
	order := pool.Get(h)
	order.Remaining = qty
	order.Original = qty
	return slotIndex(h.Index)
}

func TestLevelFIFOOrderPreserved(t *testing.T) {
	pool := NewOrderPool(8)
	level := &PriceLevel{Price: fixedpoint.FromTicks(100)}

	a := allocWithQty(t, pool, fixedpoint.FromLots(1))
	b := allocWithQty(t, pool, fixedpoint.FromLots(2))
	c := allocWithQty(t, pool, fixedpoint.FromLots(3))

	level.pushBack(pool, a)
	level.pushBack(pool, b)
	level.pushBack(pool, c)

	assert.Equal(t, fixedpoint.FromLots(6), level.Aggregate)
	assert.Equal(t, 3, level.Count())

	assert.Equal(t, a, level.popFront(pool))
	assert.Equal(t, b, level.popFront(pool))
	assert.Equal(t, c, level.popFront(pool))
	assert.True(t, level.Empty())
	assert.Equal(t, fixedpoint.ZeroQty, level.Aggregate)
}

func TestLevelRemoveFromMiddle(t *testing.T) {
	pool := NewOrderPool(8)
	level := &PriceLevel{Price: fixedpoint.FromTicks(100)}

	a := allocWithQty(t, pool, fixedpoint.FromLots(1))
	b := allocWithQty(t, pool, fixedpoint.FromLots(2))
	c := allocWithQty(t, pool, fixedpoint.FromLots(3))
	level.pushBack(pool, a)
	level.pushBack(pool, b)
	level.pushBack(pool, c)

	level.remove(pool, b)

	assert.Equal(t, 2, level.Count())
	assert.Equal(t, fixedpoint.FromLots(4), level.Aggregate)
	assert.Equal(t, a, level.Front())

	assert.Equal(t, a, level.popFront(pool))
	assert.Equal(t, c, level.popFront(pool))
	assert.True(t, level.Empty())
}

func TestLevelDecreaseHeadQuantityKeepsAggregateConsistent(t *testing.T) {
	pool := NewOrderPool(4)
	level := &PriceLevel{Price: fixedpoint.FromTicks(100)}

	a := allocWithQty(t, pool, fixedpoint.FromLots(10))
	level.pushBack(pool, a)

	level.decreaseHeadQuantity(pool, fixedpoint.FromLots(4))

	assert.Equal(t, fixedpoint.FromLots(6), level.Aggregate)
	assert.Equal(t, fixedpoint.FromLots(6), pool.getSlot(a).Remaining)
}
