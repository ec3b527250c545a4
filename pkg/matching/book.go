package matching

import "github.com/google/btree"

// btreeDegree matches the teacher's own defaults elsewhere in the corpus;
// it is not performance-tuned here, just a reasonable node fan-out for an
// in-memory ordered map of price levels.
const btreeDegree = 32

// askItem orders ascending by price: Min() is the best (lowest) ask.
type askItem struct {
	price Price
	level *PriceLevel
}

func (a *askItem) Less(than btree.Item) bool {
	return a.price < than.(*askItem).price
}

// bidItem orders descending by price by inverting Less: Min() is the best
// (highest) bid. google/btree only ever orders ascending by Less, so
// descending traversal is achieved by flipping the comparison rather than
// by walking the tree backwards — this is the same trick
// other_examples/jutinyang-golang_match_order applies for its bid tree.
type bidItem struct {
	price Price
	level *PriceLevel
}

func (a *bidItem) Less(than btree.Item) bool {
	return a.price > than.(*bidItem).price
}

// Book is the two-sided price-time priority book: bids ordered descending,
// asks ordered ascending, each price mapping to exactly one PriceLevel,
// plus an id index for O(log P + 1) cancel/modify.
type Book struct {
	bids *btree.BTree
	asks *btree.BTree
	byID map[OrderID]*Order
}

// NewBook returns an empty two-sided book.
func NewBook() *Book {
	return &Book{
		bids: btree.New(btreeDegree),
		asks: btree.New(btreeDegree),
		byID: make(map[OrderID]*Order),
	}
}

// Resident reports whether id currently has a live order in the book —
// used by the Add protocol's duplicate-id guard.
func (b *Book) Resident(id OrderID) bool {
	_, ok := b.byID[id]
	return ok
}

// Lookup returns the resident order for id, if any.
func (b *Book) Lookup(id OrderID) (*Order, bool) {
	o, ok := b.byID[id]
	return o, ok
}

// Place appends o to the tail of its price's FIFO, creating the level if
// necessary, and indexes it by id. o must not already be resident.
func (b *Book) Place(o *Order) {
	lvl := b.levelFor(o.Side, o.Price, true)
	lvl.Enqueue(o)
	b.byID[o.ID] = o
}

// Cancel splices the order for id out of its level, deletes the level if it
// emptied, removes it from the id index, and returns it to the caller so
// they can release it to the pool. Returns (nil, false) if id is not
// resident — a no-op per spec.
func (b *Book) Cancel(id OrderID) (*Order, bool) {
	o, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	b.removeResident(o)
	return o, true
}

// removeResident splices o out of its level and the id index, subtracting
// whatever RemainingQty it still carries from the level's TotalQty
// aggregate. Called both by Cancel (RemainingQty untouched, so the full
// resting quantity is removed) and by ApplyFill once an order fills to
// zero (RemainingQty already 0, so this is a no-op on TotalQty and only
// performs the splice).
func (b *Book) removeResident(o *Order) {
	lvl := o.level
	delete(b.byID, o.ID)
	if lvl == nil {
		return
	}
	lvl.TotalQty -= o.RemainingQty
	lvl.unlink(o)
	if lvl.empty() {
		b.deleteLevel(o.Side, lvl.Price)
	}
}

// ApplyFill subtracts qty from o's remaining quantity and from its level's
// TotalQty aggregate. If o is now fully filled it is spliced out of the
// book and its id index entry removed; the caller (the match loop) is
// responsible for returning a fully-filled order to the pool. Returns
// whether o was fully filled.
func (b *Book) ApplyFill(o *Order, qty Quantity) (filled bool) {
	o.RemainingQty -= qty
	if o.level != nil {
		o.level.TotalQty -= qty
	}
	if o.RemainingQty == 0 {
		b.removeResident(o)
		return true
	}
	return false
}

// Top returns the best price and its level on side, or (0, nil, false) if
// that side is empty.
func (b *Book) Top(side Side) (Price, *PriceLevel, bool) {
	var item btree.Item
	if side == Buy {
		item = b.bids.Min()
	} else {
		item = b.asks.Min()
	}
	if item == nil {
		return 0, nil, false
	}
	return levelOf(item).Price, levelOf(item), true
}

// Worst returns the worst resident price on side, or false if empty. Used
// to bind a Market order's effective price.
func (b *Book) Worst(side Side) (Price, bool) {
	var item btree.Item
	if side == Buy {
		item = b.bids.Max()
	} else {
		item = b.asks.Max()
	}
	if item == nil {
		return 0, false
	}
	return levelOf(item).Price, true
}

// CanMatch reports whether an order on side could cross at limit.
// For a Buy, true iff there exists an ask priced <= limit. For a Sell,
// true iff there exists a bid priced >= limit.
func (b *Book) CanMatch(side Side, limit Price) bool {
	if side == Buy {
		price, _, ok := b.Top(Sell)
		return ok && price <= limit
	}
	price, _, ok := b.Top(Buy)
	return ok && price >= limit
}

// CanFullyFill reports whether the eligible levels on the opposite side,
// walked best price first, carry enough aggregate quantity to satisfy qty
// at limit. Eligible levels are asks priced <= limit for a Buy, bids
// priced >= limit for a Sell.
func (b *Book) CanFullyFill(side Side, limit Price, qty Quantity) bool {
	var have Quantity
	visit := func(item btree.Item) bool {
		lvl := levelOf(item)
		have += lvl.TotalQty
		return have < qty
	}
	if side == Buy {
		b.asks.Ascend(func(item btree.Item) bool {
			if item.(*askItem).price > limit {
				return false
			}
			return visit(item)
		})
	} else {
		b.bids.Ascend(func(item btree.Item) bool {
			// bids tree is ordered descending by btree's Less, so
			// Ascend still visits best-bid-first.
			if item.(*bidItem).price < limit {
				return false
			}
			return visit(item)
		})
	}
	return have >= qty
}

// PeekLevels returns an ordered, best-first snapshot of (price, totalQty)
// pairs on side. It is a read-only view for market-data consumers; it does
// not alias PriceLevel internals.
func (b *Book) PeekLevels(side Side) []LevelView {
	var out []LevelView
	visit := func(item btree.Item) bool {
		lvl := levelOf(item)
		out = append(out, LevelView{Price: lvl.Price, TotalQty: lvl.TotalQty})
		return true
	}
	if side == Buy {
		b.bids.Ascend(visit)
	} else {
		b.asks.Ascend(visit)
	}
	return out
}

// LevelView is a read-only snapshot of one price level's depth.
type LevelView struct {
	Price    Price
	TotalQty Quantity
}

func (b *Book) levelFor(side Side, price Price, create bool) *PriceLevel {
	if side == Buy {
		key := &bidItem{price: price}
		if item := b.bids.Get(key); item != nil {
			return item.(*bidItem).level
		}
		if !create {
			return nil
		}
		lvl := &PriceLevel{Price: price}
		b.bids.ReplaceOrInsert(&bidItem{price: price, level: lvl})
		return lvl
	}
	key := &askItem{price: price}
	if item := b.asks.Get(key); item != nil {
		return item.(*askItem).level
	}
	if !create {
		return nil
	}
	lvl := &PriceLevel{Price: price}
	b.asks.ReplaceOrInsert(&askItem{price: price, level: lvl})
	return lvl
}

func (b *Book) deleteLevel(side Side, price Price) {
	if side == Buy {
		b.bids.Delete(&bidItem{price: price})
		return
	}
	b.asks.Delete(&askItem{price: price})
}

func levelOf(item btree.Item) *PriceLevel {
	switch v := item.(type) {
	case *askItem:
		return v.level
	case *bidItem:
		return v.level
	default:
		panic("matching: unexpected btree item type")
	}
}

// BidLevelCount and AskLevelCount back the H.bid_levels/ask_levels gauges.
func (b *Book) BidLevelCount() int { return b.bids.Len() }
func (b *Book) AskLevelCount() int { return b.asks.Len() }
