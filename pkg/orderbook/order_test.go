package orderbook

import "testing"

func TestOrderAcceptFromNew(t *testing.T) {
	o := &Order{ID: 1, Kind: Limit, TotalQty: 10, RemainingQty: 10}
	if err := o.accept(1); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if o.State != StateWorking {
		t.Errorf("expected Working, got %v", o.State)
	}
	if o.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", o.Sequence)
	}
}

func TestOrderAcceptFromTerminalRejected(t *testing.T) {
	o := &Order{ID: 1, Kind: Limit, State: StateCancelled}
	err := o.accept(1)
	if err == nil {
		t.Fatalf("expected InvalidState accepting a cancelled order")
	}
	if kind, ok := KindOf(err); !ok || kind != InvalidState {
		t.Errorf("expected InvalidState kind, got %v ok=%v", kind, ok)
	}
}

func TestOrderParkOnlyForStops(t *testing.T) {
	limit := &Order{ID: 1, Kind: Limit}
	if err := limit.park(1); err == nil {
		t.Fatalf("expected park to reject a non-stop order")
	}

	stop := &Order{ID: 2, Kind: StopMarket}
	if err := stop.park(1); err != nil {
		t.Fatalf("park: %v", err)
	}
	if stop.State != StateAccepted {
		t.Errorf("expected Accepted, got %v", stop.State)
	}
}

func TestOrderTriggerThenAccept(t *testing.T) {
	stop := &Order{ID: 1, Kind: StopLimit, TotalQty: 5, RemainingQty: 5}
	if err := stop.park(1); err != nil {
		t.Fatalf("park: %v", err)
	}
	if err := stop.trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if stop.State != StateTriggered {
		t.Errorf("expected Triggered, got %v", stop.State)
	}
	if err := stop.accept(2); err != nil {
		t.Fatalf("accept after trigger: %v", err)
	}
	if stop.State != StateWorking {
		t.Errorf("expected Working, got %v", stop.State)
	}
}

func TestOrderFillTransitions(t *testing.T) {
	o := &Order{ID: 1, Kind: Limit, TotalQty: 10, RemainingQty: 10}
	_ = o.accept(1)

	o.RemainingQty = 4
	if err := o.fill(); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if o.State != StatePartiallyFilled {
		t.Errorf("expected PartiallyFilled, got %v", o.State)
	}

	o.RemainingQty = 0
	if err := o.fill(); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if o.State != StateFilled {
		t.Errorf("expected Filled, got %v", o.State)
	}

	if err := o.fill(); err == nil {
		t.Errorf("expected fill on a terminal order to fail")
	}
}

func TestOrderRejectFromTriggered(t *testing.T) {
	o := &Order{ID: 1, Kind: StopMarket, TotalQty: 5, RemainingQty: 5}
	_ = o.trigger()
	if err := o.reject(); err != nil {
		t.Fatalf("reject from Triggered: %v", err)
	}
	if o.State != StateRejected {
		t.Errorf("expected Rejected, got %v", o.State)
	}
}

func TestOrderVisibleQty(t *testing.T) {
	ice := &Order{Kind: Iceberg, RemainingQty: 100, DisplayedQty: 10}
	if ice.visibleQty() != 10 {
		t.Errorf("expected iceberg visible qty 10, got %d", ice.visibleQty())
	}

	lim := &Order{Kind: Limit, RemainingQty: 100}
	if lim.visibleQty() != 100 {
		t.Errorf("expected limit visible qty 100, got %d", lim.visibleQty())
	}
}

func TestOrderEffectiveLimit(t *testing.T) {
	buyMkt := &Order{Kind: Market, Side: Buy}
	if buyMkt.effectiveLimit() != maxPrice {
		t.Errorf("expected max price for buy market, got %d", buyMkt.effectiveLimit())
	}
	sellMkt := &Order{Kind: Market, Side: Sell}
	if sellMkt.effectiveLimit() != 0 {
		t.Errorf("expected zero for sell market, got %d", sellMkt.effectiveLimit())
	}
	lim := &Order{Kind: Limit, LimitPrice: 100}
	if lim.effectiveLimit() != 100 {
		t.Errorf("expected 100, got %d", lim.effectiveLimit())
	}
}
