package orderbook

import "testing"

func TestPriceLevelAppendAggregates(t *testing.T) {
	pl := newPriceLevel(100)
	a := &Order{ID: 1, Kind: Limit, RemainingQty: 10}
	b := &Order{ID: 2, Kind: Limit, RemainingQty: 5}
	pl.append(a)
	pl.append(b)

	if pl.VisibleVolume() != 15 {
		t.Errorf("expected visible 15, got %d", pl.VisibleVolume())
	}
	if pl.totalVolume != 15 {
		t.Errorf("expected total 15, got %d", pl.totalVolume)
	}
	if pl.orderCount() != 2 {
		t.Errorf("expected 2 orders, got %d", pl.orderCount())
	}
}

func TestPriceLevelIcebergHidesQuantity(t *testing.T) {
	pl := newPriceLevel(100)
	ice := &Order{ID: 1, Kind: Iceberg, RemainingQty: 100, DisplayedQty: 10, RefillQty: 10}
	pl.append(ice)

	if pl.VisibleVolume() != 10 {
		t.Errorf("expected visible 10 (hidden qty excluded), got %d", pl.VisibleVolume())
	}
	if pl.totalVolume != 100 {
		t.Errorf("expected total 100, got %d", pl.totalVolume)
	}
}

func TestPriceLevelPopFrontUpdatesAggregates(t *testing.T) {
	pl := newPriceLevel(100)
	a := &Order{ID: 1, Kind: Limit, RemainingQty: 10}
	pl.append(a)

	got := pl.popFront()
	if got != a {
		t.Fatalf("expected a, got %v", got)
	}
	if pl.VisibleVolume() != 0 || pl.totalVolume != 0 {
		t.Errorf("expected aggregates to zero out, got visible=%d total=%d", pl.VisibleVolume(), pl.totalVolume)
	}
	if !pl.empty() {
		t.Errorf("expected level empty")
	}
}

func TestPriceLevelRemoveArbitrary(t *testing.T) {
	pl := newPriceLevel(100)
	a := &Order{ID: 1, Kind: Limit, RemainingQty: 10}
	b := &Order{ID: 2, Kind: Limit, RemainingQty: 20}
	pl.append(a)
	pl.append(b)

	pl.remove(a)
	if pl.VisibleVolume() != 20 {
		t.Errorf("expected visible 20 after removing a, got %d", pl.VisibleVolume())
	}
	if pl.front() != b {
		t.Errorf("expected b at front, got %v", pl.front())
	}
}
