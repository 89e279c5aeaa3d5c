package matching

import (
	"sync"

	"github.com/joripage/lob-engine/pkg/clock"
	"github.com/joripage/lob-engine/pkg/idgen"
	"github.com/joripage/lob-engine/pkg/orderbook"
)

// Engine is C6: the symbol→book routing layer sitting above the single
// per-symbol matching core. It assigns ids, validates command fields,
// and drives the engine-wide GTD expiry index. It is itself unsynchronized
// across symbols — pkg/engine's façade (C7) is what makes it safe to call
// from many producer threads, serializing per symbol and parallelizing
// across symbols.
type Engine struct {
	books sync.Map // string -> *orderbook.Book; populated only by RegisterSymbol

	ids  *idgen.Generator
	clk  clock.Clock
	sink orderbook.EventSink

	gtd *gtdIndex
}

// New constructs an Engine with no symbols registered yet.
func New(ids *idgen.Generator, clk clock.Clock, sink orderbook.EventSink) *Engine {
	return &Engine{ids: ids, clk: clk, sink: sink, gtd: newGTDIndex()}
}

// RegisterSymbol admits symbol for trading. Commands addressed to an
// unregistered symbol are rejected with UnknownSymbol (§4.6) — unlike
// joripage's OrderBookManager, which lazily creates a book on first
// order, the spec requires routing failure for unknown symbols, so
// symbols must be explicitly admitted up front.
func (e *Engine) RegisterSymbol(symbol string) {
	e.books.LoadOrStore(symbol, orderbook.NewBook(symbol))
}

func (e *Engine) bookFor(symbol string) (*orderbook.Book, bool) {
	v, ok := e.books.Load(symbol)
	if !ok {
		return nil, false
	}
	return v.(*orderbook.Book), true
}

func (e *Engine) emit(events []orderbook.Event) []orderbook.Event {
	if e.sink != nil {
		for _, ev := range events {
			e.sink(ev)
		}
	}
	return events
}

func (e *Engine) rejected(symbol string, id orderbook.OrderId, kind orderbook.ErrorKind) []orderbook.Event {
	return e.emit([]orderbook.Event{{Kind: orderbook.EventRejected, Symbol: symbol, OrderId: id, ErrorKind: kind}})
}

// validateNew checks the field-level constraints §4.6 names: positive
// quantity; limit-bearing kinds carry a price; stop kinds carry a stop
// price; Iceberg's displayed slice is positive and no larger than the
// total; GTD carries a positive expiry.
func validateNew(req NewOrderRequest) (orderbook.ErrorKind, bool) {
	if req.Qty == 0 {
		return orderbook.BadOrder, false
	}
	switch req.Kind {
	case orderbook.Limit, orderbook.StopLimit, orderbook.Iceberg:
		if req.LimitPrice <= 0 {
			return orderbook.BadOrder, false
		}
	}
	if req.Kind.IsStop() && req.StopPrice <= 0 {
		return orderbook.BadOrder, false
	}
	if req.Kind == orderbook.Iceberg && (req.DisplayedQty == 0 || req.DisplayedQty > req.Qty) {
		return orderbook.BadOrder, false
	}
	if req.TIF == orderbook.GTD && req.Expiry <= 0 {
		return orderbook.BadOrder, false
	}
	return 0, true
}

// Submit validates req, assigns its OrderId, and routes it to the book
// for req.Symbol.
func (e *Engine) Submit(req NewOrderRequest) ([]orderbook.Event, error) {
	book, ok := e.bookFor(req.Symbol)
	if !ok {
		return e.rejected(req.Symbol, 0, orderbook.UnknownSymbol), newErr(orderbook.UnknownSymbol, req.Symbol)
	}
	if kind, ok := validateNew(req); !ok {
		return e.rejected(req.Symbol, 0, kind), newErr(kind, "invalid order fields")
	}

	id := e.ids.Next()

	if req.TIF == orderbook.GTD && req.Expiry <= e.clk.Now() {
		return e.rejected(req.Symbol, id, orderbook.ExpiredOnArrival), newErr(orderbook.ExpiredOnArrival, "GTD expiry is not in the future")
	}

	order := &orderbook.Order{
		ID: id, Symbol: req.Symbol, Owner: req.Owner,
		Side: req.Side, Kind: req.Kind, TIF: req.TIF,
		LimitPrice: req.LimitPrice, StopPrice: req.StopPrice,
		TotalQty: req.Qty, RemainingQty: req.Qty,
		DisplayedQty: req.DisplayedQty, RefillQty: req.DisplayedQty,
		Expiry: req.Expiry,
	}

	events := book.Submit(order)
	if req.TIF == orderbook.GTD {
		if _, ok := findAccepted(events, id); ok {
			e.gtd.track(req.Symbol, id, req.Expiry)
		}
	}
	return e.emit(events), nil
}

func findAccepted(events []orderbook.Event, id orderbook.OrderId) (orderbook.Event, bool) {
	for _, ev := range events {
		if ev.OrderId == id && (ev.Kind == orderbook.EventAccepted || ev.Kind == orderbook.EventPartiallyFilled) {
			return ev, true
		}
	}
	return orderbook.Event{}, false
}

// Cancel routes a cancel to the book for req.Symbol.
func (e *Engine) Cancel(req CancelRequest) (orderbook.Event, error) {
	book, ok := e.bookFor(req.Symbol)
	if !ok {
		return orderbook.Event{}, newErr(orderbook.UnknownSymbol, req.Symbol)
	}
	ev, err := book.Cancel(req.OrderId)
	if err != nil {
		return orderbook.Event{}, err
	}
	e.emit([]orderbook.Event{ev})
	return ev, nil
}

// Modify routes a modify to the book for req.Symbol.
func (e *Engine) Modify(req ModifyRequest) ([]orderbook.Event, error) {
	book, ok := e.bookFor(req.Symbol)
	if !ok {
		return nil, newErr(orderbook.UnknownSymbol, req.Symbol)
	}
	// Modify never changes Expiry (§4.4's cancel+resubmit rule only
	// touches price/qty), so an order already tracked in the GTD index
	// from its original Submit needs no re-tracking here.
	events, err := book.Modify(req.OrderId, req.NewPrice, req.NewQty)
	if err != nil {
		return nil, err
	}
	return e.emit(events), nil
}

// ExpireDue drains every GTD order across every registered symbol whose
// expiry is <= now (§4.6 "expire_due(now)"), in expiry order. Used
// directly by single-threaded callers and tests; pkg/engine's façade
// uses ExpireDueLocked instead so each symbol's expiry still observes
// that symbol's per-symbol exclusive section (§4.7).
func (e *Engine) ExpireDue(now orderbook.Timestamp) []orderbook.Event {
	return e.ExpireDueLocked(now, func(_ string, fn func()) { fn() })
}

// ExpireDueLocked is ExpireDue with a caller-supplied per-symbol critical
// section: withSymbolLock(symbol, fn) must call fn exactly once, holding
// whatever exclusion that symbol requires for the duration.
func (e *Engine) ExpireDueLocked(now orderbook.Timestamp, withSymbolLock func(symbol string, fn func())) []orderbook.Event {
	var events []orderbook.Event
	for _, entry := range e.gtd.due(now) {
		withSymbolLock(entry.symbol, func() {
			book, ok := e.bookFor(entry.symbol)
			if !ok {
				return
			}
			if ev, err := book.ExpireOrder(entry.id, now); err == nil {
				events = append(events, e.emit([]orderbook.Event{ev})...)
			}
		})
	}
	return events
}

// Snapshot returns a consistent view of symbol's book, or false if
// symbol is not registered.
func (e *Engine) Snapshot(symbol string, fullDepth bool) (orderbook.Snapshot, bool) {
	book, ok := e.bookFor(symbol)
	if !ok {
		return orderbook.Snapshot{}, false
	}
	return book.Snapshot(fullDepth), true
}

func newErr(kind orderbook.ErrorKind, msg string) error {
	return &orderbook.Error{Kind: kind, Msg: msg}
}
