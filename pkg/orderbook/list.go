package orderbook

// orderList is an intrusive FIFO over *Order's own prev/next pointers —
// no per-order allocation is needed to hold it in a queue (§9: "arena
// allocation plus stable indices/handles ... keeps nodes cache-adjacent").
// Both PriceLevel and StopLevel embed one.
type orderList struct {
	head, tail *Order
	count      int
}

func (l *orderList) empty() bool { return l.head == nil }

func (l *orderList) append(o *Order) {
	o.prev, o.next = nil, nil
	if l.tail == nil {
		l.head, l.tail = o, o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	l.count++
}

func (l *orderList) front() *Order { return l.head }

func (l *orderList) popFront() *Order {
	o := l.head
	if o == nil {
		return nil
	}
	l.unlink(o)
	return o
}

// remove excises o from wherever it sits in the list in O(1); o must
// currently be a member of this list.
func (l *orderList) remove(o *Order) {
	l.unlink(o)
}

func (l *orderList) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next = nil, nil
	l.count--
}
