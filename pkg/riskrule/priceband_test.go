package riskrule

import (
	"testing"

	"github.com/joripage/lob-engine/pkg/matching"
)

func TestPriceBandRejectsOutsideRange(t *testing.T) {
	r := NewPriceBandRule()
	r.SetBand("ABC", 100, 200)

	if err := r.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 150}); err != nil {
		t.Errorf("expected in-band price to pass, got %v", err)
	}
	if err := r.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 99}); err == nil {
		t.Errorf("expected below-floor price to be rejected")
	}
	if err := r.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 201}); err == nil {
		t.Errorf("expected above-ceiling price to be rejected")
	}
}

func TestPriceBandSkipsUnconfiguredSymbol(t *testing.T) {
	r := NewPriceBandRule()
	if err := r.Check(matching.NewOrderRequest{Symbol: "XYZ", LimitPrice: 999999}); err != nil {
		t.Errorf("expected no band configured to mean no check, got %v", err)
	}
}

func TestPriceBandSkipsUnpricedOrder(t *testing.T) {
	r := NewPriceBandRule()
	r.SetBand("ABC", 100, 200)
	if err := r.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 0}); err != nil {
		t.Errorf("expected market order (no limit price) to skip the band check, got %v", err)
	}
}
