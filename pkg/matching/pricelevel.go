package matching

// PriceLevel is the FIFO of orders resting at one exact price. Orders trade
// in strict arrival order: the head is always the next to trade at this
// level. This is grounded on the teacher's orderbook.PriceLevel, which
// keeps the same head/tail/TotalQty/OrderCount shape.
//
// Invariant: Count == length of the intrusive list, TotalQty == sum of
// RemainingQty across it. Both are maintained incrementally so nothing ever
// has to walk the list to answer a depth query: Enqueue adds to Count and
// TotalQty, unlink subtracts from Count, and the Book (ApplyFill and
// removeResident) subtracts from TotalQty.
type PriceLevel struct {
	Price    Price
	TotalQty Quantity
	Count    int

	head *Order
	tail *Order
}

// Head returns the earliest-arrived order at this level, or nil if empty.
func (p *PriceLevel) Head() *Order { return p.head }

// Enqueue appends o to the tail of the FIFO, giving it the worst time
// priority at this level. Used both for a fresh Add and for the tail-append
// that a Modify's implicit cancel+add produces.
func (p *PriceLevel) Enqueue(o *Order) {
	o.level = p
	o.prev = p.tail
	o.next = nil
	if p.tail != nil {
		p.tail.next = o
	} else {
		p.head = o
	}
	p.tail = o
	p.TotalQty += o.RemainingQty
	p.Count++
}

// unlink splices o out of the FIFO and decrements Count. It does not touch
// TotalQty: the caller (Book.removeResident) subtracts o's RemainingQty
// from TotalQty before unlinking.
func (p *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.prev = nil
	o.next = nil
	o.level = nil
	p.Count--
}

// empty reports whether the level has no resident orders left.
func (p *PriceLevel) empty() bool { return p.Count == 0 }
