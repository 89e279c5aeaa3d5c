// Package matching implements the multi-symbol matching engine (C6): it
// owns the symbol→book mapping, assigns OrderId and validates every
// command before it reaches a pkg/orderbook.Book, and drives GTD expiry
// across all symbols via a single time-ordered index.
package matching

import "github.com/joripage/lob-engine/pkg/orderbook"

// NewOrderRequest is the caller-supplied order spec for a New command
// (§6 "Command input" / §3). OrderId and Sequence are not caller fields —
// the engine assigns both.
type NewOrderRequest struct {
	Symbol string
	Owner  string

	Side Side
	Kind Kind
	TIF  TIF

	LimitPrice Price
	StopPrice  Price

	Qty          Quantity
	DisplayedQty Quantity // Iceberg only

	Expiry Timestamp // GTD only
}

// Aliases so callers of this package don't need to import pkg/orderbook
// directly for the handful of primitive types a command spec needs.
type (
	Side      = orderbook.Side
	Kind      = orderbook.Kind
	TIF       = orderbook.TIF
	Price     = orderbook.Price
	Quantity  = orderbook.Quantity
	Timestamp = orderbook.Timestamp
	OrderId   = orderbook.OrderId
)

const (
	Buy  = orderbook.Buy
	Sell = orderbook.Sell
)

const (
	Limit      = orderbook.Limit
	Market     = orderbook.Market
	StopMarket = orderbook.StopMarket
	StopLimit  = orderbook.StopLimit
	Iceberg    = orderbook.Iceberg
)

const (
	GTC = orderbook.GTC
	IOC = orderbook.IOC
	FOK = orderbook.FOK
	GTD = orderbook.GTD
)

// CancelRequest identifies the order to cancel (§6 "Command input").
type CancelRequest struct {
	Symbol  string
	OrderId OrderId
}

// ModifyRequest carries the §4.4 cancel+resubmit modify fields.
type ModifyRequest struct {
	Symbol   string
	OrderId  OrderId
	NewPrice Price
	NewQty   Quantity
}
