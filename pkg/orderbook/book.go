package orderbook

import "github.com/gammazero/deque"

// Book owns both side books, both stop books, the id index, and the last
// trade price for one symbol (§4.4). It is not safe for concurrent use —
// pkg/engine's façade is what serializes access per symbol (§4.7).
type Book struct {
	Symbol string

	buy, sell           *SideBook
	buyStops, sellStops *StopBook

	byID map[OrderId]*Order

	lastTradePrice Price
	seq            uint64
}

// NewBook constructs an empty book for symbol.
func NewBook(symbol string) *Book {
	return &Book{
		Symbol:    symbol,
		buy:       newSideBook(Buy),
		sell:      newSideBook(Sell),
		buyStops:  newStopBook(Buy),
		sellStops: newStopBook(Sell),
		byID:      make(map[OrderId]*Order),
	}
}

// LastTradePrice is the reference price for stop triggers.
func (b *Book) LastTradePrice() Price { return b.lastTradePrice }

func (b *Book) nextSequence() Sequence {
	b.seq++
	return Sequence(b.seq)
}

func (b *Book) sideBookFor(s Side) *SideBook {
	if s == Buy {
		return b.buy
	}
	return b.sell
}

func (b *Book) stopBookFor(s Side) *StopBook {
	if s == Buy {
		return b.buyStops
	}
	return b.sellStops
}

func minQty(a, b Quantity) Quantity {
	if a < b {
		return a
	}
	return b
}

// Submit accepts a brand-new order into the book, running it through the
// stop-trigger check (§4.5), the matching walk (§4.4 step 1), the
// order-type×TIF residual matrix (§4.4 step 2), and finally the stop
// drain (§4.5) before returning every event produced.
func (b *Book) Submit(o *Order) []Event {
	var events []Event

	if o.Kind.IsStop() {
		sbk := b.stopBookFor(o.Side)
		if !sbk.triggered(o.StopPrice, b.lastTradePrice) {
			seq := b.nextSequence()
			_ = o.park(seq)
			b.byID[o.ID] = o
			sbk.Park(o)
			events = append(events, Event{Kind: EventAccepted, Symbol: b.Symbol, OrderId: o.ID, Price: o.StopPrice, Qty: o.RemainingQty})
			return events
		}
		_ = o.trigger()
		events = append(events, Event{Kind: EventTriggered, Symbol: b.Symbol, OrderId: o.ID, Price: o.StopPrice, Qty: o.RemainingQty})
	}

	events = append(events, b.matchAndRest(o)...)
	events = append(events, b.drainStops()...)
	return events
}

// matchAndRest runs the matching walk for o and then applies the
// order-type×TIF residual policy (§4.4's matrix). It does not drain the
// stop book — callers that may have moved lastTradePrice do that once,
// after all nested promotions have had a chance to queue up.
func (b *Book) matchAndRest(o *Order) []Event {
	if o.TIF == FOK {
		if !b.fokFeasible(o) {
			_ = o.reject()
			return []Event{{Kind: EventRejected, Symbol: b.Symbol, OrderId: o.ID, ErrorKind: InsufficientLiquidity}}
		}
	}

	events := b.match(o)

	if o.RemainingQty == 0 {
		return events
	}

	switch o.TIF {
	case IOC, FOK:
		_ = o.cancel()
		events = append(events, Event{Kind: EventCancelled, Symbol: b.Symbol, OrderId: o.ID, Qty: o.RemainingQty})
	case GTC, GTD:
		switch o.Kind {
		case Market, StopMarket:
			// "reject residual (no resting unpriced orders)": whatever
			// already traded stands, the remainder simply cannot rest.
			_ = o.cancel()
			events = append(events, Event{Kind: EventCancelled, Symbol: b.Symbol, OrderId: o.ID, Qty: o.RemainingQty})
		default: // Limit, StopLimit, Iceberg
			seq := b.nextSequence()
			_ = o.accept(seq)
			b.byID[o.ID] = o
			level := b.sideBookFor(o.Side).InsertAt(o.LimitPrice)
			level.append(o)
			events = append(events, Event{Kind: EventAccepted, Symbol: b.Symbol, OrderId: o.ID, Price: o.LimitPrice, Qty: o.RemainingQty})
		}
	}
	return events
}

// match is the single-pass walk of §4.4 step 1: it consumes liquidity
// from the opposite side until o is filled or no further price is
// eligible, updating lastTradePrice and every touched record along the
// way. It does not decide what happens to a residual — that is
// matchAndRest's job.
func (b *Book) match(o *Order) []Event {
	var events []Event
	limit := o.effectiveLimit()
	counter := b.sideBookFor(o.Side.Opposite())
	traded := false

	for o.RemainingQty > 0 {
		price, level, ok := counter.Best()
		if !ok || stopWalk(o.Side, price, limit) {
			break
		}
		if level.empty() {
			counter.RemoveLevel(price)
			continue
		}

		r := level.front()
		tradeQty := minQty(o.RemainingQty, r.visibleQty())
		oldVisible := r.visibleQty()
		traded = true

		o.RemainingQty -= tradeQty
		r.RemainingQty -= tradeQty
		if r.Kind == Iceberg {
			r.DisplayedQty -= tradeQty
		}
		level.totalVolume -= tradeQty
		level.visibleVolume -= oldVisible - r.visibleQty()

		events = append(events, Event{
			Kind: EventTrade, Symbol: b.Symbol, Price: price, Qty: tradeQty,
			Aggressor: o.ID, Maker: r.ID,
		})
		b.lastTradePrice = price

		switch {
		case r.RemainingQty == 0:
			level.list.popFront()
			r.level = nil
			_ = r.fill()
			delete(b.byID, r.ID)
			events = append(events, Event{Kind: EventFilled, Symbol: b.Symbol, OrderId: r.ID})

		case r.Kind == Iceberg && r.DisplayedQty == 0:
			// Refill: tail placement with a new sequence — time
			// priority is lost (§3 invariant 7).
			level.list.remove(r)
			r.DisplayedQty = minQty(r.RefillQty, r.RemainingQty)
			r.Sequence = b.nextSequence()
			level.visibleVolume += r.DisplayedQty
			level.list.append(r)
			_ = r.fill()
			events = append(events, Event{Kind: EventPartiallyFilled, Symbol: b.Symbol, OrderId: r.ID, Qty: r.RemainingQty, Price: price})

		default:
			_ = r.fill()
			events = append(events, Event{Kind: EventPartiallyFilled, Symbol: b.Symbol, OrderId: r.ID, Qty: r.RemainingQty, Price: price})
		}

		if level.empty() {
			counter.RemoveLevel(price)
		}
	}

	if traded {
		_ = o.fill()
		if o.RemainingQty == 0 {
			events = append(events, Event{Kind: EventFilled, Symbol: b.Symbol, OrderId: o.ID})
		}
	}
	return events
}

// fokFeasible scans the opposite side's visible volume up to o's
// effective limit without mutating anything (§4.5).
func (b *Book) fokFeasible(o *Order) bool {
	limit := o.effectiveLimit()
	counter := b.sideBookFor(o.Side.Opposite())
	var cum Quantity
	feasible := false
	counter.IterFromBest(func(price Price, level *PriceLevel) bool {
		if stopWalk(o.Side, price, limit) {
			return false
		}
		cum += level.VisibleVolume()
		if cum >= o.RemainingQty {
			feasible = true
			return false
		}
		return true
	})
	return feasible
}

// drainStops implements §4.5's iterative drain: every stop that becomes
// eligible against the current lastTradePrice is promoted onto a FIFO
// work queue and processed as a Market/Limit order, which may itself move
// lastTradePrice and make further stops eligible. The queue, not
// recursion, is what makes this safe against arbitrarily long chains
// (§9 "the drain must be iterative, not recursive").
func (b *Book) drainStops() []Event {
	var events []Event
	var queue deque.Deque[*Order]

	enqueueEligible := func() {
		for {
			if o, ok := b.buyStops.PopEligible(b.lastTradePrice); ok {
				_ = o.trigger()
				events = append(events, Event{Kind: EventTriggered, Symbol: b.Symbol, OrderId: o.ID, Price: o.StopPrice, Qty: o.RemainingQty})
				queue.PushBack(o)
				continue
			}
			if o, ok := b.sellStops.PopEligible(b.lastTradePrice); ok {
				_ = o.trigger()
				events = append(events, Event{Kind: EventTriggered, Symbol: b.Symbol, OrderId: o.ID, Price: o.StopPrice, Qty: o.RemainingQty})
				queue.PushBack(o)
				continue
			}
			return
		}
	}

	enqueueEligible()
	for queue.Len() > 0 {
		o := queue.PopFront()
		events = append(events, b.matchAndRest(o)...)
		enqueueEligible()
	}
	return events
}

// Cancel unlinks a resting or parked order and marks it Cancelled.
func (b *Book) Cancel(id OrderId) (Event, error) {
	o, ok := b.byID[id]
	if !ok {
		return Event{}, newErr(NotFound, "cancel: unknown or terminal order")
	}
	b.unlink(o)
	delete(b.byID, id)
	if err := o.cancel(); err != nil {
		return Event{}, err
	}
	return Event{Kind: EventCancelled, Symbol: b.Symbol, OrderId: id, Price: o.LimitPrice, Qty: o.RemainingQty}, nil
}

// Modify implements §4.4's "cancel + resubmit, preserving the id only if
// price and size both decrease" rule: a non-increasing price and quantity
// re-enters matching under the same id (and loses time priority, exactly
// as a fresh submission would); any other change is rejected so the
// caller mints a new id instead (decision recorded in DESIGN.md).
func (b *Book) Modify(id OrderId, newPrice Price, newQty Quantity) ([]Event, error) {
	o, ok := b.byID[id]
	if !ok {
		return nil, newErr(NotFound, "modify: unknown or terminal order")
	}
	if newQty > o.RemainingQty || newPrice > o.LimitPrice {
		return nil, newErr(InvalidState, "modify: id-preserving modify requires non-increasing price and qty")
	}
	if newQty == 0 {
		return nil, newErr(BadOrder, "modify: newQty must be > 0")
	}

	b.unlink(o)
	delete(b.byID, id)

	o.LimitPrice = newPrice
	o.TotalQty = newQty
	o.RemainingQty = newQty
	if o.Kind == Iceberg {
		o.DisplayedQty = minQty(o.RefillQty, newQty)
	}
	o.State = StateNew

	var events []Event
	events = append(events, b.matchAndRest(o)...)
	events = append(events, b.drainStops()...)
	return events, nil
}

// unlink removes o from whichever container currently holds it, without
// changing its State — used by Cancel, Modify, and ExpireOrder, which
// each apply their own terminal transition afterward.
func (b *Book) unlink(o *Order) {
	if o.level != nil {
		lvl := o.level
		lvl.remove(o)
		if lvl.empty() {
			b.sideBookFor(o.Side).RemoveLevel(lvl.Price)
		}
		return
	}
	if o.stopLevel != nil {
		b.stopBookFor(o.Side).Remove(o)
	}
}

// ExpireOrder cancels a single GTD order if it is due by now, used by
// pkg/matching's cross-symbol GTD index (§4.6 `expire_due`). Returns
// NotFound if the id is unknown, already terminal, or not yet due.
func (b *Book) ExpireOrder(id OrderId, now Timestamp) (Event, error) {
	o, ok := b.byID[id]
	if !ok || o.TIF != GTD || now < o.Expiry {
		return Event{}, newErr(NotFound, "expire: not due")
	}
	b.unlink(o)
	delete(b.byID, id)
	if err := o.expire(); err != nil {
		return Event{}, err
	}
	return Event{Kind: EventExpired, Symbol: b.Symbol, OrderId: id, Price: o.LimitPrice, Qty: o.RemainingQty, MatchTime: now}, nil
}

// ExpireDue performs a full scan for every live GTD order due by now. It
// is O(n) in the book's live order count; pkg/matching's engine-wide
// index exists precisely so a caller managing many symbols need not pay
// that cost per symbol per tick, but Book exposes it directly so the
// core is independently testable (§8).
func (b *Book) ExpireDue(now Timestamp) []Event {
	var due []OrderId
	for id, o := range b.byID {
		if o.TIF == GTD && now >= o.Expiry {
			due = append(due, id)
		}
	}
	events := make([]Event, 0, len(due))
	for _, id := range due {
		if ev, err := b.ExpireOrder(id, now); err == nil {
			events = append(events, ev)
		}
	}
	return events
}
