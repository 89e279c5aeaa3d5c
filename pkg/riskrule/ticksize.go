package riskrule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joripage/lob-engine/pkg/matching"
)

type tickBand struct {
	MaxPrice int64 `json:"maxPrice"` // 0 = no limit for this band
	Step     int64 `json:"step"`
}

// TickSizeRule rejects a limit-bearing order whose price doesn't land
// on a valid tick for its symbol's price band.
type TickSizeRule struct {
	bands map[string][]tickBand
}

// NewTickSizeRuleFromFile loads per-symbol tick bands from a JSON file
// shaped as {"SYMBOL": [{"maxPrice":..., "step":...}, ...]}.
func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bands map[string][]tickBand
	if err := json.Unmarshal(data, &bands); err != nil {
		return nil, err
	}
	return &TickSizeRule{bands: bands}, nil
}

func (r *TickSizeRule) Check(req matching.NewOrderRequest) error {
	if req.LimitPrice == 0 {
		return nil // Market/StopMarket carry no limit price to check
	}
	bands, ok := r.bands[req.Symbol]
	if !ok {
		return nil
	}
	price := int64(req.LimitPrice)
	for _, b := range bands {
		if b.MaxPrice == 0 || price <= b.MaxPrice {
			if b.Step != 0 && price%b.Step != 0 {
				return fmt.Errorf("riskrule: price %d is not a multiple of tick size %d for %s", price, b.Step, req.Symbol)
			}
			return nil
		}
	}
	return nil
}
