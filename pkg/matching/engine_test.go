package matching

import (
	"testing"

	"github.com/joripage/lob-engine/pkg/clock"
	"github.com/joripage/lob-engine/pkg/idgen"
	"github.com/joripage/lob-engine/pkg/orderbook"
)

func newTestEngine() (*Engine, *clock.Fake) {
	fc := clock.NewFake(0)
	e := New(idgen.New(0), fc, nil)
	e.RegisterSymbol("ABC")
	return e, fc
}

func TestEngineUnknownSymbolRejected(t *testing.T) {
	e, _ := newTestEngine()
	events, err := e.Submit(NewOrderRequest{Symbol: "ZZZ", Side: Buy, Kind: Limit, TIF: GTC, LimitPrice: 100, Qty: 1})
	if err == nil {
		t.Fatalf("expected UnknownSymbol error")
	}
	if kind, ok := orderbook.KindOf(err); !ok || kind != orderbook.UnknownSymbol {
		t.Errorf("expected UnknownSymbol kind, got %v", kind)
	}
	if len(events) != 1 || events[0].Kind != orderbook.EventRejected {
		t.Errorf("expected a single Rejected event, got %+v", events)
	}
}

func TestEngineValidatesBadOrder(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Submit(NewOrderRequest{Symbol: "ABC", Side: Buy, Kind: Limit, TIF: GTC, LimitPrice: 100, Qty: 0})
	if kind, ok := orderbook.KindOf(err); !ok || kind != orderbook.BadOrder {
		t.Fatalf("expected BadOrder for zero qty, got %v", err)
	}

	_, err = e.Submit(NewOrderRequest{Symbol: "ABC", Side: Buy, Kind: Limit, TIF: GTC, Qty: 1})
	if kind, ok := orderbook.KindOf(err); !ok || kind != orderbook.BadOrder {
		t.Fatalf("expected BadOrder for missing limit price, got %v", err)
	}

	_, err = e.Submit(NewOrderRequest{Symbol: "ABC", Side: Buy, Kind: StopMarket, TIF: GTC, Qty: 1})
	if kind, ok := orderbook.KindOf(err); !ok || kind != orderbook.BadOrder {
		t.Fatalf("expected BadOrder for missing stop price, got %v", err)
	}
}

func TestEngineAssignsIncreasingIds(t *testing.T) {
	e, _ := newTestEngine()
	ev1, _ := e.Submit(NewOrderRequest{Symbol: "ABC", Side: Sell, Kind: Limit, TIF: GTC, LimitPrice: 100, Qty: 1})
	ev2, _ := e.Submit(NewOrderRequest{Symbol: "ABC", Side: Sell, Kind: Limit, TIF: GTC, LimitPrice: 101, Qty: 1})

	id1, id2 := ev1[0].OrderId, ev2[0].OrderId
	if !(id1 < id2) {
		t.Errorf("expected increasing ids, got %d then %d", id1, id2)
	}
}

func TestEngineGTDExpiredOnArrival(t *testing.T) {
	e, fc := newTestEngine()
	fc.Set(1000)
	events, err := e.Submit(NewOrderRequest{Symbol: "ABC", Side: Buy, Kind: Limit, TIF: GTD, LimitPrice: 100, Qty: 1, Expiry: 500})
	if kind, ok := orderbook.KindOf(err); !ok || kind != orderbook.ExpiredOnArrival {
		t.Fatalf("expected ExpiredOnArrival, got %v", err)
	}
	if len(events) != 1 || events[0].Kind != orderbook.EventRejected {
		t.Errorf("expected a Rejected event, got %+v", events)
	}
}

func TestEngineExpireDueAcrossSymbols(t *testing.T) {
	e, fc := newTestEngine()
	e.RegisterSymbol("XYZ")
	fc.Set(100)

	e.Submit(NewOrderRequest{Symbol: "ABC", Side: Sell, Kind: Limit, TIF: GTD, LimitPrice: 10, Qty: 1, Expiry: 1000})
	e.Submit(NewOrderRequest{Symbol: "XYZ", Side: Sell, Kind: Limit, TIF: GTD, LimitPrice: 20, Qty: 1, Expiry: 2000})

	if events := e.ExpireDue(999); len(events) != 0 {
		t.Fatalf("expected no expiries yet, got %+v", events)
	}
	events := e.ExpireDue(1500)
	if len(events) != 1 || events[0].Symbol != "ABC" {
		t.Fatalf("expected ABC's order to expire first, got %+v", events)
	}
	events = e.ExpireDue(3000)
	if len(events) != 1 || events[0].Symbol != "XYZ" {
		t.Fatalf("expected XYZ's order to expire next, got %+v", events)
	}
}

func TestEngineCancelAndModify(t *testing.T) {
	e, _ := newTestEngine()
	ev, _ := e.Submit(NewOrderRequest{Symbol: "ABC", Side: Sell, Kind: Limit, TIF: GTC, LimitPrice: 100, Qty: 5})
	id := ev[0].OrderId

	if _, err := e.Modify(ModifyRequest{Symbol: "ABC", OrderId: id, NewPrice: 99, NewQty: 3}); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if _, err := e.Cancel(CancelRequest{Symbol: "ABC", OrderId: id}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := e.Cancel(CancelRequest{Symbol: "ABC", OrderId: id}); err == nil {
		t.Errorf("expected cancel of an already-cancelled id to fail")
	}
}
