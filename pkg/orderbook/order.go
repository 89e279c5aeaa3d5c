package orderbook

// Order is the canonical live-order record. It is an intrusive list node:
// prev/next link it into whichever PriceLevel or StopLevel currently holds
// it, and level/stopLevel point back to that container so Cancel/Modify
// can unlink it in O(1) without a secondary lookup. An order is never a
// member of both a price level and a stop level at once.
type Order struct {
	ID     OrderId
	Symbol string
	// Owner is an opaque caller-supplied identifier (account, session id,
	// ...). The core never interprets it; it is stored on the order record
	// only and is not copied into emitted Events.
	Owner string

	Side Side
	Kind Kind
	TIF  TIF

	LimitPrice Price // set for Limit, StopLimit, Iceberg
	StopPrice  Price // set for StopMarket, StopLimit

	TotalQty     Quantity
	RemainingQty Quantity

	DisplayedQty Quantity // Iceberg only: currently visible slice
	RefillQty    Quantity // Iceberg only: original display slice

	Expiry Timestamp // GTD only

	Sequence Sequence
	State    State

	prev, next *Order
	level      *PriceLevel
	stopLevel  *StopLevel
}

// visibleQty is the quantity this order contributes to its level's
// aggregate visible volume: the displayed slice for Iceberg, the full
// remainder otherwise.
func (o *Order) visibleQty() Quantity {
	if o.Kind == Iceberg {
		return o.DisplayedQty
	}
	return o.RemainingQty
}

// effectiveLimit is L from §4.4: +inf for a Buy market order (represented
// as the maximum Price), 0 for a Sell market order, else the order's own
// limit price. Stop orders use this only after they have triggered, with
// their Kind already behaving as Market/Limit.
func (o *Order) effectiveLimit() Price {
	switch o.Kind {
	case Market:
		if o.Side == Buy {
			return maxPrice
		}
		return 0
	case StopMarket:
		if o.Side == Buy {
			return maxPrice
		}
		return 0
	default: // Limit, StopLimit, Iceberg
		return o.LimitPrice
	}
}

const maxPrice Price = 1<<63 - 1

// park transitions a not-yet-triggered stop order New -> Accepted and
// stamps its book sequence. Only valid for StopMarket/StopLimit orders.
func (o *Order) park(seq Sequence) error {
	if !o.Kind.IsStop() {
		return newErr(InvalidState, "park: not a stop order")
	}
	if o.State != StateNew {
		return newErr(InvalidState, "park: from "+o.State.String())
	}
	o.State = StateAccepted
	o.Sequence = seq
	return nil
}

// trigger transitions a parked (or triggering-on-arrival) stop order to
// Triggered. Only valid for stop orders.
func (o *Order) trigger() error {
	if !o.Kind.IsStop() {
		return newErr(InvalidState, "trigger: not a stop order")
	}
	switch o.State {
	case StateNew, StateAccepted:
		o.State = StateTriggered
		return nil
	default:
		return newErr(InvalidState, "trigger: from "+o.State.String())
	}
}

// accept transitions an order into the resting book, assigning its
// time-priority sequence. Valid from New (first entry to a book),
// Triggered (a stop order that just fired and has residual quantity), or
// PartiallyFilled (an incoming order whose residual rests after a
// partial fill).
func (o *Order) accept(seq Sequence) error {
	switch o.State {
	case StateNew, StateTriggered, StatePartiallyFilled:
		o.State = StateWorking
		o.Sequence = seq
		return nil
	default:
		return newErr(InvalidState, "accept: from "+o.State.String())
	}
}

// fill records the consumption of qty against RemainingQty, which the
// caller has already decremented, and transitions to PartiallyFilled or
// Filled depending on what remains. Valid from any non-terminal state
// that represents a live order.
func (o *Order) fill() error {
	if o.State.Terminal() {
		return newErr(InvalidState, "fill: from "+o.State.String())
	}
	if o.RemainingQty == 0 {
		o.State = StateFilled
	} else {
		o.State = StatePartiallyFilled
	}
	return nil
}

// cancel transitions a live order to Cancelled. Rejected if already
// terminal.
func (o *Order) cancel() error {
	if o.State.Terminal() {
		return newErr(InvalidState, "cancel: from "+o.State.String())
	}
	o.State = StateCancelled
	return nil
}

// expire transitions a live GTD order to Expired. Rejected if already
// terminal.
func (o *Order) expire() error {
	if o.State.Terminal() {
		return newErr(InvalidState, "expire: from "+o.State.String())
	}
	o.State = StateExpired
	return nil
}

// reject transitions a brand-new order, or a stop order that just
// triggered on arrival and failed its post-trigger feasibility check
// (FOK), straight to Rejected.
func (o *Order) reject() error {
	switch o.State {
	case StateNew, StateTriggered:
		o.State = StateRejected
		return nil
	default:
		return newErr(InvalidState, "reject: from "+o.State.String())
	}
}
