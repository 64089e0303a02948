// Package fixedpoint implements the integer-tick Price and Quantity scalars
// used throughout the matching core. Neither type ever touches a float:
// a Price is a signed count of ticks, a Quantity is an unsigned count of
// lots, and every arithmetic operation saturates instead of wrapping or
// panicking.
package fixedpoint

import "math"

// Price is a signed 64-bit count of ticks. Tick size is a deployment
// constant outside the core; the core only ever compares and adds raw
// tick counts.
type Price int64

// Zero is the additive identity for Price.
const Zero Price = 0

// MaxPrice and MinPrice bound the saturating range for Price arithmetic.
const (
	MaxPrice Price = math.MaxInt64
	MinPrice Price = math.MinInt64
)

// FromTicks constructs a Price directly from a raw tick count.
func FromTicks(ticks int64) Price { return Price(ticks) }

// Ticks returns the raw tick count.
func (p Price) Ticks() int64 { return int64(p) }

// Positive reports whether p is strictly greater than zero — a resting
// Limit order is never accepted at a zero or negative price.
func (p Price) Positive() bool { return p > 0 }

// Add returns p+q, saturating at MaxPrice/MinPrice on overflow.
func (p Price) Add(q Price) Price {
	sum := int64(p) + int64(q)
	if q > 0 && sum < int64(p) {
		return MaxPrice
	}
	if q < 0 && sum > int64(p) {
		return MinPrice
	}
	return Price(sum)
}

// Sub returns p-q, saturating on overflow.
func (p Price) Sub(q Price) Price {
	diff := int64(p) - int64(q)
	if q < 0 && diff < int64(p) {
		return MaxPrice
	}
	if q > 0 && diff > int64(p) {
		return MinPrice
	}
	return Price(diff)
}

// Cmp returns -1, 0, or 1 as p is less than, equal to, or greater than q.
func (p Price) Cmp(q Price) int {
	switch {
	case p < q:
		return -1
	case p > q:
		return 1
	default:
		return 0
	}
}

// Crosses reports whether a bid at price p would cross an ask resting at
// askPrice (p >= askPrice), or symmetrically whether an ask at p would
// cross a bid resting at bidPrice when isBid is false.
func (p Price) Crosses(resting Price, isBid bool) bool {
	if isBid {
		return p >= resting
	}
	return p <= resting
}
