package book

import (
	"lobengine/update"

	"github.com/cockroachdb/errors"
)

// PriceLevel is the FIFO queue of orders resting at one (side, price). It
// also participates in the circular doubly-linked list of price levels
// on its side, sorted by side-specific priority (bids descending from
// the head, asks ascending).
type PriceLevel struct {
	Side  update.Side
	Price int64
	head  *Order // first = highest priority = earliest arrival

	prev, next *PriceLevel // circular doubly-linked list of levels on this side
}

// better reports whether a is strictly higher priority than b on the
// given side: for bids, higher price wins; for asks, lower price wins.
func better(side update.Side, a, b int64) bool {
	if side == update.Buy {
		return a > b
	}
	return a < b
}

// enqueue appends o to the tail of the level's FIFO chain. If the level
// is currently empty, o becomes the sole, self-linked head.
func (lvl *PriceLevel) enqueue(o *Order) {
	if lvl.head == nil {
		o.prev, o.next = o, o
		lvl.head = o
		return
	}
	tail := lvl.head.prev
	tail.next = o
	o.prev = tail
	o.next = lvl.head
	lvl.head.prev = o
}

// unlink removes o from the level's FIFO chain. It returns true if the
// level is now empty (o was its last order).
func (lvl *PriceLevel) unlink(o *Order) bool {
	if o.next == o {
		// singleton chain: o was the only order at this level.
		lvl.head = nil
		o.prev, o.next = nil, nil
		return true
	}
	o.prev.next = o.next
	o.next.prev = o.prev
	if lvl.head == o {
		lvl.head = o.next
	}
	o.prev, o.next = nil, nil
	return false
}

// aggregateQty sums the quantity of every order resting at this level,
// walking the FIFO chain once starting at head and stopping when it
// loops back.
func (lvl *PriceLevel) aggregateQty() uint32 {
	if lvl.head == nil {
		return 0
	}
	var total uint32
	for o := lvl.head; ; o = o.next {
		total += o.Qty
		if o.next == lvl.head {
			break
		}
	}
	return total
}

// sideList is the circular doubly-linked list of PriceLevels on one side,
// plus the direct-index table used for O(1) lookup by price.
type sideList struct {
	side  update.Side
	head  *PriceLevel
	index []*PriceLevel // size = capacity; slot = price mod capacity
}

func newSideList(side update.Side, capacity int) *sideList {
	return &sideList{side: side, index: make([]*PriceLevel, capacity)}
}

// slotFor maps a price into [0, capacity) using a true mathematical
// modulo (Go's % can return a negative result for negative dividends).
func (s *sideList) slotFor(price int64) int {
	n := int64(len(s.index))
	m := price % n
	if m < 0 {
		m += n
	}
	return int(m)
}

// lookup returns the PriceLevel at price, or nil if none exists on this
// side. It is the direct-index table read described in §4.D: O(1) via
// price mod capacity.
func (s *sideList) lookup(price int64) *PriceLevel {
	lvl := s.index[s.slotFor(price)]
	if lvl == nil || lvl.Price != price {
		return nil
	}
	return lvl
}

// insert splices a newly-allocated, not-yet-linked level into the side's
// circular list so that sort order is preserved, and records it in the
// direct-index table. A slot already occupied by a different price is a
// fatal configuration violation: it means two live prices on this side
// hashed to the same index, which the caller's MaxPriceLevels must be
// sized to avoid.
func (s *sideList) insert(lvl *PriceLevel) {
	slot := s.slotFor(lvl.Price)
	if existing := s.index[slot]; existing != nil {
		panic(errors.Newf(
			"book: price index collision on side %v: slot %d already holds price %d, cannot insert price %d",
			s.side, slot, existing.Price, lvl.Price))
	}
	s.index[slot] = lvl

	if s.head == nil {
		lvl.prev, lvl.next = lvl, lvl
		s.head = lvl
		return
	}

	// Walk from head, which holds the best price, skipping every
	// existing level that is still strictly better than lvl. Stop at the
	// first level lvl beats (insert before it), or having walked the
	// entire ring without finding one (lvl is worse than everyone;
	// "before head" and "after the current tail" are the same slot in a
	// circular list, so this also correctly appends at the tail).
	cur := s.head
	for first := true; first || cur != s.head; first = false {
		if !better(s.side, cur.Price, lvl.Price) {
			break
		}
		cur = cur.next
	}
	// insert lvl immediately before cur
	prev := cur.prev
	prev.next = lvl
	lvl.prev = prev
	lvl.next = cur
	cur.prev = lvl

	if better(s.side, lvl.Price, s.head.Price) {
		s.head = lvl
	}
}

// remove unlinks lvl from the side's circular list and frees its
// direct-index slot. If lvl was the head, its successor becomes the new
// head, or the head becomes nil if lvl was the only level.
func (s *sideList) remove(lvl *PriceLevel) {
	slot := s.slotFor(lvl.Price)
	s.index[slot] = nil

	if lvl.next == lvl {
		s.head = nil
	} else {
		lvl.prev.next = lvl.next
		lvl.next.prev = lvl.prev
		if s.head == lvl {
			s.head = lvl.next
		}
	}
	lvl.prev, lvl.next = nil, nil
}

// reset clears the side's list and index without freeing backing Order
// or PriceLevel records, callers (Book.Apply on Clear) are responsible
// for returning those to their pools first.
func (s *sideList) reset() {
	for i := range s.index {
		s.index[i] = nil
	}
	s.head = nil
}
