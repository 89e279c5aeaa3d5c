package riskrule

import (
	"fmt"
	"sync"

	"github.com/joripage/lob-engine/pkg/matching"
)

type band struct {
	ceil  matching.Price
	floor matching.Price
}

// PriceBandRule rejects a limit-bearing order outside a symbol's
// configured [floor, ceil] band (a static daily-limit style check).
type PriceBandRule struct {
	mu     sync.RWMutex
	bands  map[string]band
}

func NewPriceBandRule() *PriceBandRule {
	return &PriceBandRule{bands: make(map[string]band)}
}

// SetBand replaces the band for symbol. Safe to call while Check runs
// concurrently on other goroutines (e.g. an operator updating bands at
// the start of a new trading session).
func (r *PriceBandRule) SetBand(symbol string, floor, ceil matching.Price) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bands[symbol] = band{ceil: ceil, floor: floor}
}

func (r *PriceBandRule) Check(req matching.NewOrderRequest) error {
	if req.LimitPrice == 0 {
		return nil
	}
	r.mu.RLock()
	b, ok := r.bands[req.Symbol]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	if req.LimitPrice > b.ceil || req.LimitPrice < b.floor {
		return fmt.Errorf("riskrule: price %d outside band [%d, %d] for %s", req.LimitPrice, b.floor, b.ceil, req.Symbol)
	}
	return nil
}
