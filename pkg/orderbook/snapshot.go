package orderbook

// LevelView is one row of a side's depth: price, aggregate visible
// quantity (hidden iceberg quantity excluded), and resting order count.
type LevelView struct {
	Price    Price
	Qty      Quantity
	Count    int
	Orders   []OrderRow // only populated when full depth was requested
}

// OrderRow is one resting order within a level, in FIFO order, used by
// the optional full-depth snapshot (§6).
type OrderRow struct {
	OrderId OrderId
	Qty     Quantity // visible quantity only
}

// Snapshot is a read-only, consistent view of one symbol's book (§4.4
// `snapshot()`, §6 "Snapshot output").
type Snapshot struct {
	Symbol         string
	LastTradePrice Price
	Buy            []LevelView
	Sell           []LevelView
}

// Snapshot builds a consistent view of the book. fullDepth additionally
// populates each level's per-order FIFO rows; without it only the
// per-level aggregates are returned. Book itself is not safe for
// concurrent use — pkg/engine's façade is what makes a snapshot safe to
// take while matching proceeds on other symbols.
func (b *Book) Snapshot(fullDepth bool) Snapshot {
	snap := Snapshot{Symbol: b.Symbol, LastTradePrice: b.lastTradePrice}
	snap.Buy = collectSide(b.buy, fullDepth)
	snap.Sell = collectSide(b.sell, fullDepth)
	return snap
}

func collectSide(sb *SideBook, fullDepth bool) []LevelView {
	views := make([]LevelView, 0, sb.Depth())
	sb.IterFromBest(func(price Price, lvl *PriceLevel) bool {
		v := LevelView{Price: price, Qty: lvl.VisibleVolume(), Count: lvl.orderCount()}
		if fullDepth {
			v.Orders = make([]OrderRow, 0, lvl.orderCount())
			for o := lvl.front(); o != nil; o = o.next {
				v.Orders = append(v.Orders, OrderRow{OrderId: o.ID, Qty: o.visibleQty()})
			}
		}
		views = append(views, v)
		return true
	})
	return views
}
