// Package idgen generates the monotonic OrderId values the matching
// engine assigns to every inbound command before it reaches a book
// (spec §4.6, §3 "OrderId ... assigned by the caller before Submit").
package idgen

import (
	"sync/atomic"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// Generator issues strictly increasing ids, safe for concurrent use
// across symbols since a single engine-wide id space must never repeat
// regardless of which per-symbol book an order ultimately lands in.
type Generator struct {
	next atomic.Uint64
}

// New creates a generator that will hand out start+1 as its first id.
// On a fresh engine start=0; after replaying a durable event log,
// start should be the highest id ever assigned.
func New(start uint64) *Generator {
	g := &Generator{}
	g.next.Store(start)
	return g
}

// Next returns the next engine-wide unique OrderId.
func (g *Generator) Next() orderbook.OrderId {
	return orderbook.OrderId(g.next.Add(1))
}

// Current returns the last id issued, or start if none has been yet.
func (g *Generator) Current() uint64 {
	return g.next.Load()
}

// Reset reseeds the generator, used only after replaying a durable event
// log to resume from the highest id it contains.
func (g *Generator) Reset(v uint64) {
	g.next.Store(v)
}
