package riskrule

import (
	"testing"

	"github.com/joripage/lob-engine/pkg/matching"
)

type fakeRule struct {
	err error
}

func (f fakeRule) Check(req matching.NewOrderRequest) error { return f.err }

func TestChainStopsAtFirstFailure(t *testing.T) {
	calls := 0
	ok := fakeRuleFunc(func(req matching.NewOrderRequest) error { calls++; return nil })
	reject := fakeRuleFunc(func(req matching.NewOrderRequest) error { calls++; return errTest })
	never := fakeRuleFunc(func(req matching.NewOrderRequest) error { calls++; return nil })

	chain := Chain{ok, reject, never}
	if err := chain.Check(matching.NewOrderRequest{}); err != errTest {
		t.Fatalf("expected errTest, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected chain to short-circuit after 2 calls, got %d", calls)
	}
}

func TestChainAllPass(t *testing.T) {
	chain := Chain{fakeRule{}, fakeRule{}}
	if err := chain.Check(matching.NewOrderRequest{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

type fakeRuleFunc func(req matching.NewOrderRequest) error

func (f fakeRuleFunc) Check(req matching.NewOrderRequest) error { return f(req) }

var errTest = &testError{"rejected"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
