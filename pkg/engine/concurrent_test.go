package engine

import (
	"sync"
	"testing"

	"github.com/joripage/lob-engine/pkg/clock"
	"github.com/joripage/lob-engine/pkg/idgen"
	"github.com/joripage/lob-engine/pkg/matching"
)

func newTestConcurrentEngine(symbols ...string) *ConcurrentEngine {
	inner := matching.New(idgen.New(0), clock.NewFake(0), nil)
	ce := NewConcurrent(inner)
	for _, s := range symbols {
		ce.RegisterSymbol(s)
	}
	return ce
}

func TestConcurrentSubmitAcrossSymbols(t *testing.T) {
	ce := newTestConcurrentEngine("AAA", "BBB", "CCC")

	var wg sync.WaitGroup
	symbols := []string{"AAA", "BBB", "CCC"}
	for _, sym := range symbols {
		sym := sym
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				ce.Submit(matching.NewOrderRequest{
					Symbol: sym, Side: matching.Buy, Kind: matching.Limit,
					TIF: matching.GTC, LimitPrice: 100, Qty: 1,
				})
			}(sym)
		}
	}
	wg.Wait()

	for _, sym := range symbols {
		snap, ok := ce.Snapshot(sym, false)
		if !ok {
			t.Fatalf("%s: missing snapshot", sym)
		}
		var total matching.Quantity
		for _, lvl := range snap.Buy {
			total += lvl.Qty
		}
		if total != 50 {
			t.Errorf("%s: expected 50 resting lots, got %d", sym, total)
		}
	}
}

func TestConcurrentSameSymbolSerialized(t *testing.T) {
	ce := newTestConcurrentEngine("XYZ")

	const n = 200
	var wg sync.WaitGroup
	ids := make([]matching.OrderId, n)
	var mu sync.Mutex
	idx := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := ce.Submit(matching.NewOrderRequest{
				Symbol: "XYZ", Side: matching.Sell, Kind: matching.Limit,
				TIF: matching.GTC, LimitPrice: 50, Qty: 1,
			})
			if err != nil || len(events) == 0 {
				t.Errorf("submit failed: %v", err)
				return
			}
			mu.Lock()
			ids[idx] = events[0].OrderId
			idx++
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[matching.OrderId]bool, n)
	for _, id := range ids[:idx] {
		if seen[id] {
			t.Fatalf("duplicate order id %d assigned under concurrent submission", id)
		}
		seen[id] = true
	}
	if idx != n {
		t.Fatalf("expected %d successful submits, got %d", n, idx)
	}

	snap, _ := ce.Snapshot("XYZ", false)
	var total matching.Quantity
	for _, lvl := range snap.Sell {
		total += lvl.Qty
	}
	if total != n {
		t.Errorf("expected %d resting lots after serialized submits, got %d", n, total)
	}
}

func TestConcurrentSnapshotConsistentDuringMatching(t *testing.T) {
	ce := newTestConcurrentEngine("SNP")
	ce.Submit(matching.NewOrderRequest{Symbol: "SNP", Side: matching.Sell, Kind: matching.Limit, TIF: matching.GTC, LimitPrice: 100, Qty: 10})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ce.Submit(matching.NewOrderRequest{Symbol: "SNP", Side: matching.Buy, Kind: matching.Limit, TIF: matching.IOC, LimitPrice: 100, Qty: 1})
		}()
	}
	wg.Wait()

	snap, ok := ce.Snapshot("SNP", false)
	if !ok {
		t.Fatal("missing snapshot")
	}
	var remaining matching.Quantity
	for _, lvl := range snap.Sell {
		remaining += lvl.Qty
	}
	if remaining != 0 {
		t.Errorf("expected the resting sell to be fully consumed, got %d remaining", remaining)
	}
}

func TestConcurrentExpireDueLocksOnlyDueSymbol(t *testing.T) {
	fc := clock.NewFake(0)
	inner2 := matching.New(idgen.New(0), fc, nil)
	ce2 := NewConcurrent(inner2)
	ce2.RegisterSymbol("E1")
	ce2.RegisterSymbol("E2")

	fc.Set(100)
	ce2.Submit(matching.NewOrderRequest{Symbol: "E1", Side: matching.Buy, Kind: matching.Limit, TIF: matching.GTD, LimitPrice: 10, Qty: 1, Expiry: 500})
	ce2.Submit(matching.NewOrderRequest{Symbol: "E2", Side: matching.Buy, Kind: matching.Limit, TIF: matching.GTD, LimitPrice: 10, Qty: 1, Expiry: 2000})

	events := ce2.ExpireDue(1000)
	if len(events) != 1 || events[0].Symbol != "E1" {
		t.Fatalf("expected only E1's order to expire, got %+v", events)
	}
	events = ce2.ExpireDue(5000)
	if len(events) != 1 || events[0].Symbol != "E2" {
		t.Fatalf("expected E2's order to expire next, got %+v", events)
	}
}
