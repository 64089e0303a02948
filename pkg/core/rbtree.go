package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// priceTree is a red-black tree keyed by fixedpoint.Price mapping to a
// *PriceLevel, giving BookSide O(log n) insertion and an O(1) best-price
// read once the extreme node is cached (an array indexed by tick would
// also work, but only for a bounded price range; a tree keeps working as
// the symbol's price range grows).
//
// Levels are never deleted once created: an exhausted level is retained
// so that a price that trades again doesn't pay tree-rebalancing cost a
// second time.
type priceTree struct {
	root *rbNode
	size int
}

type rbColor uint8

const (
	red   rbColor = 0
	black rbColor = 1
)

type rbNode struct {
	price       fixedpoint.Price
	level       *PriceLevel
	color       rbColor
	left, right *rbNode
	parent      *rbNode
}

func newPriceTree() *priceTree {
	return &priceTree{}
}

func (t *priceTree) find(price fixedpoint.Price) *rbNode {
	n := t.root
	for n != nil {
		switch price.Cmp(n.price) {
		case -1:
			n = n.left
		case 1:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// upsert returns the node for price, creating (and rebalancing in) a new
// one with a fresh empty PriceLevel if it doesn't exist yet.
func (t *priceTree) upsert(price fixedpoint.Price) *rbNode {
	var parent *rbNode
	n := t.root
	for n != nil {
		parent = n
		switch price.Cmp(n.price) {
		case -1:
			n = n.left
		case 1:
			n = n.right
		default:
			return n
		}
	}

	z := &rbNode{price: price, level: &PriceLevel{Price: price}, color: red, parent: parent}
	switch {
	case parent == nil:
		t.root = z
	case price.Cmp(parent.price) < 0:
		parent.left = z
	default:
		parent.right = z
	}
	t.size++
	t.insertFixup(z)
	return z
}

func (t *priceTree) min() *rbNode { return subtreeMin(t.root) }
func (t *priceTree) max() *rbNode { return subtreeMax(t.root) }

func subtreeMin(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func subtreeMax(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

// successor returns the node holding the next larger key, or nil.
func successor(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	if n.right != nil {
		return subtreeMin(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

// predecessor returns the node holding the next smaller key, or nil.
func predecessor(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	if n.left != nil {
		return subtreeMax(n.left)
	}
	p := n.parent
	for p != nil && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

// forEachAscending and forEachDescending walk the tree from its absolute
// min/max rather than from a cached best pointer; BookSide.IterFromBest
// covers every production traversal need with an O(1) starting point, so
// these exist to verify successor/predecessor ordering against the whole
// tree directly, independent of that cache.
func (t *priceTree) forEachAscending(fn func(*PriceLevel) bool) {
	for n := t.min(); n != nil; n = successor(n) {
		if !fn(n.level) {
			return
		}
	}
}

func (t *priceTree) forEachDescending(fn func(*PriceLevel) bool) {
	for n := t.max(); n != nil; n = predecessor(n) {
		if !fn(n.level) {
			return
		}
	}
}

// --- standard CLRS red-black rebalancing ---

func (t *priceTree) rotateLeft(x *rbNode) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *priceTree) rotateRight(x *rbNode) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *priceTree) insertFixup(z *rbNode) {
	for z.parent != nil && z.parent.color == red {
		parent := z.parent
		grandparent := parent.parent
		if grandparent == nil {
			break
		}
		if parent == grandparent.left {
			uncle := grandparent.right
			if uncle != nil && uncle.color == red {
				parent.color = black
				uncle.color = black
				grandparent.color = red
				z = grandparent
				continue
			}
			if z == parent.right {
				z = parent
				t.rotateLeft(z)
				parent = z.parent
			}
			parent.color = black
			grandparent.color = red
			t.rotateRight(grandparent)
		} else {
			uncle := grandparent.left
			if uncle != nil && uncle.color == red {
				parent.color = black
				uncle.color = black
				grandparent.color = red
				z = grandparent
				continue
			}
			if z == parent.left {
				z = parent
				t.rotateRight(z)
				parent = z.parent
			}
			parent.color = black
			grandparent.color = red
			t.rotateLeft(grandparent)
		}
	}
	t.root.color = black
}
