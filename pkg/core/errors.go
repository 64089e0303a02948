package core

import "errors"

// Construction-time errors. These are returned from setup functions, never
// from command dispatch — a live command reports its outcome only through
// Events (see events.go), never through a Go error.
var (
	// ErrBadCapacity is returned by NewMatchingEngine given a non-positive
	// capacity. NewOrderPool panics on the same input instead.
	ErrBadCapacity = errors.New("core: capacity must be positive")

	// ErrDuplicateOrderID names the case of a New whose OrderID already has
	// a live order resting in the book. MatchingEngine.New does not return
	// it; it reports that case as a Reject event with ReasonInvalid.
	ErrDuplicateOrderID = errors.New("core: order id already live")
)
