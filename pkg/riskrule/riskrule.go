// Package riskrule is the pre-trade hook FIX ingress runs a
// NewOrderRequest through before it reaches the matching engine: any
// rule returning a non-nil error rejects the order without routing it
// to pkg/matching at all.
package riskrule

import "github.com/joripage/lob-engine/pkg/matching"

// Rule checks one pre-trade constraint against an incoming order.
type Rule interface {
	Check(req matching.NewOrderRequest) error
}

// Chain runs every rule in order and stops at the first failure.
type Chain []Rule

func (c Chain) Check(req matching.NewOrderRequest) error {
	for _, rule := range c {
		if err := rule.Check(req); err != nil {
			return err
		}
	}
	return nil
}
