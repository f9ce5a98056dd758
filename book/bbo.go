package book

import "lobengine/update"

// BBO is the derived best-bid/offer view: the top-of-book price and
// aggregate resting quantity on each side. Fields hold the sentinel
// invalid values (see package update) when a side is empty.
type BBO struct {
	BidPrice int64
	BidQty   uint32
	AskPrice int64
	AskQty   uint32
}

func invalidBBO() BBO {
	return BBO{
		BidPrice: update.PriceInvalid,
		BidQty:   update.QtyInvalid,
		AskPrice: update.PriceInvalid,
		AskQty:   update.QtyInvalid,
	}
}

// recomputeSide refreshes one side's half of the BBO from the current
// side list: if the side's head is nil, that half is set to the invalid
// sentinel; otherwise it is the head's price and the aggregate quantity
// of every order resting at the head level.
func (b *Book) recomputeSide(side update.Side) {
	var list *sideList
	if side == update.Buy {
		list = b.bids
	} else {
		list = b.asks
	}

	price, qty := update.PriceInvalid, update.QtyInvalid
	if list.head != nil {
		price = list.head.Price
		qty = list.head.aggregateQty()
	}

	if side == update.Buy {
		b.bbo.BidPrice, b.bbo.BidQty = price, qty
	} else {
		b.bbo.AskPrice, b.bbo.AskQty = price, qty
	}
}

// BBO returns a value copy of the most recently computed best-bid/offer
// view. It reflects every update applied before the call returns.
func (b *Book) BBO() BBO {
	return b.bbo
}
