package matching

// Order is a mutable record owned exclusively by the book once placed, and
// returned to the pool at cancellation or full fill. It is never
// reconstructed across a pool cycle, only reset.
//
// prev/next form the intrusive doubly-linked list that backs the FIFO of
// its resident PriceLevel; they are zero when the order is not resident
// anywhere. This mirrors the teacher's orderbook.Order, which carries the
// same pair for O(1) splice on cancel.
type Order struct {
	ID           OrderID
	Discipline   Discipline
	Side         Side
	Price        Price
	InitialQty   Quantity
	RemainingQty Quantity

	level *PriceLevel
	prev  *Order
	next  *Order
}

// Reset overwrites every field so a slot pulled back out of the pool
// carries no state from its previous tenant. pkg/pool hands out slots
// without resetting them; pkg/engine calls Reset on each acquired slot and
// on a modified order before re-admitting it.
func (o *Order) Reset(id OrderID, disc Discipline, side Side, price Price, qty Quantity) {
	o.ID = id
	o.Discipline = disc
	o.Side = side
	o.Price = price
	o.InitialQty = qty
	o.RemainingQty = qty
	o.level = nil
	o.prev = nil
	o.next = nil
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool { return o.RemainingQty == 0 }

// Level returns the price level the order currently rests on, or nil if it
// is not resident in a book.
func (o *Order) Level() *PriceLevel { return o.level }
