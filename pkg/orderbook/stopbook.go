package orderbook

// StopBook holds conditional orders awaiting a trigger against the last
// trade price (§3 "Stop books", §4.5). A buy-stop book is walked from its
// lowest stop price (triggers as the market trades up through it); a
// sell-stop book from its highest (triggers as the market trades down
// through it).
type StopBook struct {
	side Side // Buy: triggers on last_trade_price >= stop_price; Sell: <=
	tree *orderedMap[*StopLevel]
}

func newStopBook(side Side) *StopBook {
	return &StopBook{side: side, tree: newOrderedMap[*StopLevel]()}
}

// Park inserts a not-yet-triggered stop order into its stop-price level.
func (sb *StopBook) Park(o *Order) {
	lvl := sb.tree.Upsert(o.StopPrice, func() *StopLevel { return newStopLevel(o.StopPrice) })
	lvl.append(o)
}

// Remove excises a parked stop order (cancel path).
func (sb *StopBook) Remove(o *Order) {
	lvl := o.stopLevel
	if lvl == nil {
		return
	}
	lvl.remove(o)
	if lvl.empty() {
		sb.tree.Delete(lvl.StopPrice)
	}
}

// triggered reports whether stopPrice is eligible to fire against
// lastTrade, per §3/§4.5.
func (sb *StopBook) triggered(stopPrice, lastTrade Price) bool {
	if sb.side == Buy {
		return lastTrade >= stopPrice
	}
	return lastTrade <= stopPrice
}

// PopEligible removes and returns the single best eligible parked stop
// order (lowest stop price for a buy-stop book, highest for a sell-stop
// book), or false if none is currently eligible against lastTrade. Order
// among stops at the same price is FIFO by sequence (§4.5 "stop_price
// priority, sequence ascending").
func (sb *StopBook) PopEligible(lastTrade Price) (*Order, bool) {
	var price Price
	var lvl *StopLevel
	var ok bool
	if sb.side == Buy {
		price, lvl, ok = sb.tree.Min()
	} else {
		price, lvl, ok = sb.tree.Max()
	}
	if !ok || !sb.triggered(price, lastTrade) {
		return nil, false
	}
	o := lvl.popFront()
	if lvl.empty() {
		sb.tree.Delete(price)
	}
	return o, true
}
