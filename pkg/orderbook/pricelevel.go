package orderbook

// PriceLevel is the FIFO queue of resting orders at one price, plus the
// aggregate visible volume maintained incrementally (§3 invariant 5).
type PriceLevel struct {
	Price Price

	list          orderList
	visibleVolume Quantity
	totalVolume   Quantity // includes hidden iceberg quantity; internal only
}

func newPriceLevel(price Price) *PriceLevel {
	return &PriceLevel{Price: price}
}

// append pushes order to the tail and folds it into the aggregates.
func (pl *PriceLevel) append(o *Order) {
	o.level = pl
	pl.list.append(o)
	pl.visibleVolume += o.visibleQty()
	pl.totalVolume += o.RemainingQty
}

func (pl *PriceLevel) front() *Order { return pl.list.front() }

// popFront removes and returns the head order, used when it has been
// fully consumed by a trade.
func (pl *PriceLevel) popFront() *Order {
	o := pl.list.popFront()
	if o != nil {
		pl.visibleVolume -= o.visibleQty()
		pl.totalVolume -= o.RemainingQty
		o.level = nil
	}
	return o
}

// remove excises an arbitrary resting order (cancel path).
func (pl *PriceLevel) remove(o *Order) {
	pl.list.remove(o)
	pl.visibleVolume -= o.visibleQty()
	pl.totalVolume -= o.RemainingQty
	o.level = nil
}

func (pl *PriceLevel) empty() bool { return pl.list.empty() }

func (pl *PriceLevel) orderCount() int { return pl.list.count }

// VisibleVolume is the aggregate used by FOK feasibility (§4.5) and by
// snapshots.
func (pl *PriceLevel) VisibleVolume() Quantity { return pl.visibleVolume }

// StopLevel is the FIFO queue of conditional orders parked at one stop
// price, ordered by sequence (arrival order), exactly like a PriceLevel
// but without a visible-volume aggregate — stop orders never trade while
// parked.
type StopLevel struct {
	StopPrice Price

	list orderList
}

func newStopLevel(price Price) *StopLevel {
	return &StopLevel{StopPrice: price}
}

func (sl *StopLevel) append(o *Order) {
	o.stopLevel = sl
	sl.list.append(o)
}

func (sl *StopLevel) front() *Order { return sl.list.front() }

func (sl *StopLevel) popFront() *Order {
	o := sl.list.popFront()
	if o != nil {
		o.stopLevel = nil
	}
	return o
}

func (sl *StopLevel) remove(o *Order) {
	sl.list.remove(o)
	o.stopLevel = nil
}

func (sl *StopLevel) empty() bool { return sl.list.empty() }
