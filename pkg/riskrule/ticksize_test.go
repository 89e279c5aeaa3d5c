package riskrule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joripage/lob-engine/pkg/matching"
)

func TestTickSizeRuleFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticks.json")
	body := `{"ABC": [{"maxPrice": 1000, "step": 5}, {"maxPrice": 0, "step": 10}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	rule, err := NewTickSizeRuleFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error loading rule file: %v", err)
	}

	if err := rule.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 995}); err != nil {
		t.Errorf("expected aligned price under 1000 to pass, got %v", err)
	}
	if err := rule.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 997}); err == nil {
		t.Errorf("expected misaligned price under 1000 to be rejected")
	}
	if err := rule.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 2000}); err != nil {
		t.Errorf("expected aligned price in the unbounded band to pass, got %v", err)
	}
	if err := rule.Check(matching.NewOrderRequest{Symbol: "ABC", LimitPrice: 0}); err != nil {
		t.Errorf("expected market order (no limit price) to skip the tick check, got %v", err)
	}
	if err := rule.Check(matching.NewOrderRequest{Symbol: "XYZ", LimitPrice: 3}); err != nil {
		t.Errorf("expected unconfigured symbol to pass, got %v", err)
	}
}
