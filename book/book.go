package book

import (
	"lobengine/pool"
	"lobengine/update"

	"github.com/cockroachdb/errors"
)

// Default capacities, matching the C++ source's ME_MAX_* constants.
const (
	DefaultMaxOrderIDs    = 1 << 20 // 1,048,576
	DefaultMaxPriceLevels = 256
)

// Policy selects how Apply reacts to a malformed update (unknown type,
// qty=0 on ADD, CANCEL/MODIFY of an unknown id, duplicate ADD). It is
// set once at construction and never varies per call, per §7.
type Policy int

const (
	// PolicyFatal aborts the process (via panic) on any malformed
	// update. Intended for development.
	PolicyFatal Policy = iota
	// PolicyDropAndReport leaves the book unchanged and returns a
	// non-nil error from Apply. Intended for production.
	PolicyDropAndReport
)

// Config configures a new Book. Zero-value fields fall back to the
// package defaults.
type Config struct {
	TickerID       uint32
	MaxOrderIDs    int
	MaxPriceLevels int
	Policy         Policy
}

// Book is the per-symbol root: two pools, two side lists, the order-id
// index, and the derived BBO. It is single-writer, every method must be
// called from the same apply-thread; there are no locks inside it.
type Book struct {
	tickerID uint32
	policy   Policy

	orderPool *pool.Pool[Order]
	levelPool *pool.Pool[PriceLevel]

	bids *sideList
	asks *sideList

	orderIndex []*Order // capacity MaxOrderIDs, indexed directly by order id

	bbo BBO
}

// New constructs an empty Book. The only failure path is pool
// allocation failure inside the returned Book's lifetime, which is
// fatal, per §6, construction itself never fails.
func New(cfg Config) *Book {
	maxOrderIDs := cfg.MaxOrderIDs
	if maxOrderIDs <= 0 {
		maxOrderIDs = DefaultMaxOrderIDs
	}
	maxPriceLevels := cfg.MaxPriceLevels
	if maxPriceLevels <= 0 {
		maxPriceLevels = DefaultMaxPriceLevels
	}

	return &Book{
		tickerID:   cfg.TickerID,
		policy:     cfg.Policy,
		orderPool:  pool.New[Order](maxOrderIDs),
		levelPool:  pool.New[PriceLevel](2 * maxPriceLevels),
		bids:       newSideList(update.Buy, maxPriceLevels),
		asks:       newSideList(update.Sell, maxPriceLevels),
		orderIndex: make([]*Order, maxOrderIDs),
		bbo:        invalidBBO(),
	}
}

// TickerID returns the instrument this book was constructed for.
func (b *Book) TickerID() uint32 { return b.tickerID }

// OrderPoolLive returns the number of resting orders currently allocated
// out of the order pool. It equals the number of distinct live order ids.
func (b *Book) OrderPoolLive() int { return b.orderPool.Live() }

// LevelPoolLive returns the number of price levels currently allocated
// across both sides. It equals the number of distinct (side, price) pairs
// with at least one resting order.
func (b *Book) LevelPoolLive() int { return b.levelPool.Live() }

// malformed reports a malformed update per the book's configured
// Policy: it panics under PolicyFatal, or returns a descriptive error
// under PolicyDropAndReport, leaving the book unchanged.
func (b *Book) malformed(format string, args ...interface{}) error {
	err := errors.Newf(format, args...)
	if b.policy == PolicyFatal {
		panic(err)
	}
	return err
}

func (b *Book) sideListFor(side update.Side) *sideList {
	if side == update.Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) orderAt(id uint64) *Order {
	if id >= uint64(len(b.orderIndex)) {
		return nil
	}
	return b.orderIndex[id]
}

// Apply is the single public mutator: a state machine over update.Type.
// It returns a non-nil error only when the update was malformed and the
// book's Policy is PolicyDropAndReport; under PolicyFatal, a malformed
// update panics instead, and a structural-invariant violation (pool
// exhaustion, price collision, foreign/double free) always panics
// regardless of policy.
func (b *Book) Apply(u update.Update) error {
	switch u.Type {
	case update.Add:
		return b.applyAdd(u)
	case update.Modify:
		return b.applyModify(u)
	case update.Cancel:
		return b.applyCancel(u)
	case update.Trade:
		// Purely informational: book state changes only via the
		// CANCEL/MODIFY messages the feed sends to unwind a trade.
		return nil
	case update.Clear:
		b.applyClear()
		return nil
	case update.SnapshotStart, update.SnapshotEnd:
		// Transparent framing; no state mutation at this layer.
		return nil
	case update.Invalid:
		return b.malformed("book: received INVALID update")
	default:
		return b.malformed("book: unknown update type %d", u.Type)
	}
}

func (b *Book) applyAdd(u update.Update) error {
	if u.OrderID >= uint64(len(b.orderIndex)) {
		panic(errors.Newf("book: order id %d exceeds configured capacity %d", u.OrderID, len(b.orderIndex)))
	}
	if b.orderAt(u.OrderID) != nil {
		return b.malformed("book: duplicate ADD for order id %d", u.OrderID)
	}
	if u.Qty == 0 {
		return b.malformed("book: ADD with qty=0 for order id %d", u.OrderID)
	}
	if u.Side != update.Buy && u.Side != update.Sell {
		return b.malformed("book: ADD with invalid side %v for order id %d", u.Side, u.OrderID)
	}

	o := b.orderPool.Allocate()
	*o = Order{ID: u.OrderID, Side: u.Side, Price: u.Price, Qty: u.Qty, Priority: u.Priority}

	list := b.sideListFor(u.Side)
	lvl := list.lookup(u.Price)
	if lvl == nil {
		lvl = b.levelPool.Allocate()
		*lvl = PriceLevel{Side: u.Side, Price: u.Price}
		lvl.enqueue(o)
		list.insert(lvl)
	} else {
		lvl.enqueue(o)
	}

	b.orderIndex[u.OrderID] = o

	if list.head == lvl {
		b.recomputeSide(u.Side)
	}
	return nil
}

func (b *Book) applyModify(u update.Update) error {
	o := b.orderAt(u.OrderID)
	if o == nil {
		return b.malformed("book: MODIFY of unknown order id %d", u.OrderID)
	}
	if u.Qty == 0 {
		return b.malformed("book: MODIFY with qty=0 for order id %d", u.OrderID)
	}

	// Priority does not change on a MODIFY: the exchange contract keeps
	// FIFO priority across a quantity change. Only qty is overwritten
	// (the source's `mOrder_id = qty` assignment was a bug; see §9).
	o.Qty = u.Qty

	list := b.sideListFor(o.Side)
	if list.head != nil && list.head.Price == o.Price {
		b.recomputeSide(o.Side)
	}
	return nil
}

func (b *Book) applyCancel(u update.Update) error {
	o := b.orderAt(u.OrderID)
	if o == nil {
		return b.malformed("book: CANCEL of unknown order id %d", u.OrderID)
	}

	list := b.sideListFor(o.Side)
	lvl := list.lookup(o.Price)
	if lvl == nil {
		panic(errors.Newf("book: order %d references a price level %d that is no longer in the index", o.ID, o.Price))
	}

	wasTopOfBook := list.head == lvl
	emptied := lvl.unlink(o)
	if emptied {
		list.remove(lvl)
		b.levelPool.Deallocate(lvl)
	}

	b.orderIndex[u.OrderID] = nil
	b.orderPool.Deallocate(o)

	if wasTopOfBook {
		b.recomputeSide(lvl.Side)
	}
	return nil
}

func (b *Book) applyClear() {
	for i, o := range b.orderIndex {
		if o == nil {
			continue
		}
		b.orderPool.Deallocate(o)
		b.orderIndex[i] = nil
	}

	b.freeSideLevels(b.bids)
	b.freeSideLevels(b.asks)

	b.bids.reset()
	b.asks.reset()
	b.bbo = invalidBBO()
}

// freeSideLevels walks a side's circular list once, returning every live
// PriceLevel to the level pool. It does not touch orders: applyClear
// frees those separately via the order-id index.
func (b *Book) freeSideLevels(list *sideList) {
	if list.head == nil {
		return
	}
	lvl := list.head
	for {
		next := lvl.next
		b.levelPool.Deallocate(lvl)
		if next == list.head {
			break
		}
		lvl = next
	}
}
