// Package book implements the limit order book: a price-sorted,
// time-prioritised ledger of resting orders per side, plus the derived
// best-bid/offer view. It is the orchestration layer described in
// component E, it routes update.Update messages to the price-level
// list (component D), allocating and freeing Orders and PriceLevels
// through fixed-capacity pools (component A).
//
// A Book is single-writer: every method is expected to be called from
// one apply-thread. There are no locks inside it.
package book

import "lobengine/update"

// Order is an individual resting order, owned exclusively by the Book
// that allocated it. It is reachable through exactly two paths: the
// order-id index, and the sibling chain of the one PriceLevel it rests
// at.
type Order struct {
	ID       uint64
	Side     update.Side
	Price    int64
	Qty      uint32
	Priority uint64

	prev, next *Order // circular doubly-linked FIFO chain at one price level
}
