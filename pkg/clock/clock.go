// Package clock provides the injectable time source the matching engine
// uses to reject GTD orders whose expiry has already passed on arrival
// (spec §6 "Clock"); emitted events are not stamped from it. It is kept
// out of pkg/orderbook itself so the core matching algorithm stays a
// pure function of its inputs and is trivial to test deterministically.
package clock

import (
	"sync"
	"time"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// Clock returns the current time as a monotonic nanosecond Timestamp.
type Clock interface {
	Now() orderbook.Timestamp
}

// System is the production Clock, backed by time.Now().
type System struct{}

// Now returns time.Now() as Unix nanoseconds.
func (System) Now() orderbook.Timestamp {
	return orderbook.Timestamp(time.Now().UnixNano())
}

// Fake is a settable Clock for deterministic tests: GTD expiry, stop
// drains, and sequencing can all be exercised without real time passing.
type Fake struct {
	mu  sync.Mutex
	now orderbook.Timestamp
}

// NewFake creates a Fake clock starting at start.
func NewFake(start orderbook.Timestamp) *Fake {
	return &Fake{now: start}
}

// Now returns the currently set time.
func (f *Fake) Now() orderbook.Timestamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set pins the clock to t.
func (f *Fake) Set(t orderbook.Timestamp) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) orderbook.Timestamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += orderbook.Timestamp(d.Nanoseconds())
	return f.now
}
