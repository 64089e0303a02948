package core

import "github.com/altilar-labs/microlob/pkg/fixedpoint"

// location records where a live order rests: which pool slot it occupies
// and which side/price level it's threaded into, so Cancel and Replace
// can go straight from an OrderID to an O(1) unlink without walking the
// book.
type location struct {
	handle Handle
	side   Side
	price  fixedpoint.Price
}

// orderIndex maps the externally visible OrderID to its current
// location. It is a plain Go map — allocation on insert is unavoidable
// for an unbounded key space, but lookups, insert, and delete are all
// O(1) average, and the map is never iterated: New, the crossing loop,
// Cancel and Replace each touch it only by single-key access.
type orderIndex struct {
	byID map[OrderID]location
}

func newOrderIndex(capacity int) *orderIndex {
	return &orderIndex{byID: make(map[OrderID]location, capacity)}
}

func (idx *orderIndex) put(id OrderID, loc location) {
	idx.byID[id] = loc
}

func (idx *orderIndex) get(id OrderID) (location, bool) {
	loc, ok := idx.byID[id]
	return loc, ok
}

func (idx *orderIndex) delete(id OrderID) {
	delete(idx.byID, id)
}

func (idx *orderIndex) len() int {
	return len(idx.byID)
}
