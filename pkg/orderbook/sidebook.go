package orderbook

// SideBook is the ordered collection of price levels for one side of one
// symbol (§4.3). Buy is ordered so best() returns the highest price; Sell
// so best() returns the lowest. Internally both directions share the same
// ascending red-black tree — only which end counts as "best" differs.
type SideBook struct {
	side  Side
	tree  *orderedMap[*PriceLevel]
	depth int // distinct price levels currently resting
}

func newSideBook(side Side) *SideBook {
	return &SideBook{side: side, tree: newOrderedMap[*PriceLevel]()}
}

// Best returns the best (price, level) on this side, or false if empty.
func (sb *SideBook) Best() (Price, *PriceLevel, bool) {
	if sb.side == Buy {
		p, v, ok := sb.tree.Max()
		return p, v, ok
	}
	p, v, ok := sb.tree.Min()
	return p, v, ok
}

// InsertAt returns the level at price, creating it if absent.
func (sb *SideBook) InsertAt(price Price) *PriceLevel {
	return sb.tree.Upsert(price, func() *PriceLevel {
		sb.depth++
		return newPriceLevel(price)
	})
}

// RemoveLevel evicts the (now-empty) level at price. The caller must have
// already emptied it (§3 invariant 2: a level exists iff non-empty).
func (sb *SideBook) RemoveLevel(price Price) {
	if sb.tree.Delete(price) {
		sb.depth--
	}
}

// IterFromBest performs a non-consuming traversal starting at the best
// price and walking away from it, for the matching loop (§4.4 step 1).
func (sb *SideBook) IterFromBest(fn func(Price, *PriceLevel) bool) {
	if sb.side == Buy {
		sb.tree.ForEachDescending(fn)
		return
	}
	sb.tree.ForEachAscending(fn)
}

// Depth is the number of distinct resting price levels.
func (sb *SideBook) Depth() int { return sb.depth }

// stopWalk implements §4.4 step 1's stop condition for the incoming
// order's side: "if s=Buy and p>L, stop; if s=Sell and p<L, stop", where
// incomingSide is the incoming (aggressor) order's side, not the side of
// the level being visited (always the opposite book).
func stopWalk(incomingSide Side, levelPrice, limit Price) bool {
	if incomingSide == Buy {
		return levelPrice > limit
	}
	return levelPrice < limit
}
