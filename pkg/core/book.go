package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// LevelView is a read-only snapshot of one resting price level, handed out
// by Depth. It never aliases engine state — taking one is a copy, not a
// reference into the tree.
type LevelView struct {
	Price     fixedpoint.Price
	Quantity  fixedpoint.Quantity
	OrderCount int
}

// BookSide is one side (bid or ask) of the book: a price-ordered tree of
// PriceLevels plus a cached pointer to the best (highest bid / lowest ask)
// node so that repeated best-price reads don't re-descend the tree.
//
// The cache only ever needs to move "away" from the best (toward worse
// prices) as levels empty out; Add keeps it pointing at the true best
// whenever a fresher, better price arrives.
type BookSide struct {
	isBid bool
	pool  *OrderPool
	tree  *priceTree
	best  *rbNode
}

func newBookSide(isBid bool, pool *OrderPool) *BookSide {
	return &BookSide{isBid: isBid, pool: pool, tree: newPriceTree()}
}

// better reports whether a is strictly a better resting price than b for
// this side (higher for bids, lower for asks).
func (s *BookSide) better(a, b *rbNode) bool {
	if s.isBid {
		return a.price.Cmp(b.price) > 0
	}
	return a.price.Cmp(b.price) < 0
}

// extreme returns the tree's price-extreme node for this side (max for
// bids, min for asks), ignoring whether it's empty.
func (s *BookSide) extreme() *rbNode {
	if s.isBid {
		return s.tree.max()
	}
	return s.tree.min()
}

// away returns the next node strictly worse than n for this side.
func (s *BookSide) away(n *rbNode) *rbNode {
	if s.isBid {
		return predecessor(n)
	}
	return successor(n)
}

// Add threads slot into the FIFO at price, creating the level if this is
// the first resting order at that price, and returns the level it landed
// in.
func (s *BookSide) Add(price fixedpoint.Price, slot slotIndex) *PriceLevel {
	node := s.tree.upsert(price)
	node.level.pushBack(s.pool, slot)

	if s.best == nil || s.better(node, s.best) {
		s.best = node
	}
	return node.level
}

// FindLevel returns the level at price, or nil if none was ever created
// there. A level that was created and later fully drained is still
// returned, just empty.
func (s *BookSide) FindLevel(price fixedpoint.Price) *PriceLevel {
	node := s.tree.find(price)
	if node == nil {
		return nil
	}
	return node.level
}

// Remove unlinks slot from the level resting at price. The level itself
// is retained in the tree even if it becomes empty.
func (s *BookSide) Remove(price fixedpoint.Price, slot slotIndex) {
	node := s.tree.find(price)
	if node == nil {
		return
	}
	node.level.remove(s.pool, slot)
}

// Best returns the best non-empty price level on this side, advancing the
// cached pointer past any levels that have since drained to zero.
func (s *BookSide) Best() (*PriceLevel, bool) {
	n := s.best
	if n == nil {
		n = s.extreme()
	}
	for n != nil && n.level.Empty() {
		n = s.away(n)
	}
	s.best = n
	if n == nil {
		return nil, false
	}
	return n.level, true
}

// IterFromBest walks non-empty levels starting at the best price and
// moving away from it, calling fn for each until fn returns false or the
// side is exhausted. It never mutates book state.
func (s *BookSide) IterFromBest(fn func(*PriceLevel) bool) {
	best, ok := s.Best()
	if !ok {
		return
	}
	n := s.tree.find(best.Price)
	for n != nil {
		if !n.level.Empty() {
			if !fn(n.level) {
				return
			}
		}
		n = s.away(n)
	}
}

// Depth returns up to levels non-empty price levels starting from the
// best, as an independent snapshot for market-data consumers. It never
// mutates the book and is safe to call from outside the engine thread
// only if the caller already serializes access to the engine (the core
// itself carries no locking — see the pool's doc comment).
func (s *BookSide) Depth(levels int) []LevelView {
	if levels <= 0 {
		return nil
	}
	out := make([]LevelView, 0, levels)
	s.IterFromBest(func(l *PriceLevel) bool {
		out = append(out, LevelView{Price: l.Price, Quantity: l.Aggregate, OrderCount: l.Count()})
		return len(out) < levels
	})
	return out
}
