package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceAddSaturatesAtMax(t *testing.T) {
	p := MaxPrice
	got := p.Add(FromTicks(1))
	assert.Equal(t, MaxPrice, got)
}

func TestPriceSubSaturatesAtMin(t *testing.T) {
	p := MinPrice
	got := p.Sub(FromTicks(1))
	assert.Equal(t, MinPrice, got)
}

func TestPriceAddWithinRange(t *testing.T) {
	p := FromTicks(100)
	got := p.Add(FromTicks(25))
	assert.Equal(t, FromTicks(125), got)
}

func TestPricePositive(t *testing.T) {
	assert.True(t, FromTicks(1).Positive())
	assert.False(t, FromTicks(0).Positive())
	assert.False(t, FromTicks(-1).Positive())
}

func TestPriceCrosses(t *testing.T) {
	// Bid at 100 crosses an ask resting at 100 or below.
	assert.True(t, FromTicks(100).Crosses(FromTicks(100), true))
	assert.True(t, FromTicks(100).Crosses(FromTicks(99), true))
	assert.False(t, FromTicks(100).Crosses(FromTicks(101), true))

	// Ask at 100 crosses a bid resting at 100 or above.
	assert.True(t, FromTicks(100).Crosses(FromTicks(100), false))
	assert.True(t, FromTicks(100).Crosses(FromTicks(101), false))
	assert.False(t, FromTicks(100).Crosses(FromTicks(99), false))
}

func TestQuantitySubSaturatesAtZero(t *testing.T) {
	q := FromLots(5)
	got := q.Sub(FromLots(10))
	assert.Equal(t, ZeroQty, got)
}

func TestQuantityAddSaturatesAtMax(t *testing.T) {
	q := MaxQuantity
	got := q.Add(FromLots(1))
	assert.Equal(t, MaxQuantity, got)
}

func TestQuantityMin(t *testing.T) {
	assert.Equal(t, FromLots(3), FromLots(3).Min(FromLots(7)))
	assert.Equal(t, FromLots(3), FromLots(7).Min(FromLots(3)))
}

func TestQuantityMulSmallSaturates(t *testing.T) {
	q := FromLots(MaxQuantity.Lots())
	got := q.MulSmall(2)
	assert.Equal(t, MaxQuantity, got)
}

func TestQuantityIsZero(t *testing.T) {
	assert.True(t, ZeroQty.IsZero())
	assert.False(t, FromLots(1).IsZero())
}
