package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/lob-engine/pkg/clock"
	"github.com/joripage/lob-engine/pkg/idgen"
	"github.com/joripage/lob-engine/pkg/matching"
	"github.com/joripage/lob-engine/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	symbol    = "ABC"
	minPrice  = 10000
	maxPrice  = 20000
	minQty    = 1
	maxQty    = 100
)

func randomRequest() matching.NewOrderRequest {
	side := orderbook.Buy
	if rand.Intn(2) == 1 {
		side = orderbook.Sell
	}
	return matching.NewOrderRequest{
		Symbol:     symbol,
		Side:       side,
		Kind:       orderbook.Limit,
		TIF:        orderbook.GTC,
		LimitPrice: orderbook.Price(minPrice + rand.Intn(maxPrice-minPrice)),
		Qty:        orderbook.Quantity(minQty + rand.Intn(maxQty-minQty+1)),
	}
}

// This is a throughput probe for pkg/matching, replacing joripage's
// original benchmark against orderbook.OrderBookManager — single
// symbol, single goroutine, no sink, so the number measured is the
// core matching loop and nothing else.
func main() {
	eng := matching.New(idgen.New(1), clock.System{}, func(orderbook.Event) {})
	eng.RegisterSymbol(symbol)

	var trades, rejects int

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		events, err := eng.Submit(randomRequest())
		if err != nil {
			rejects++
			continue
		}
		for _, ev := range events {
			if ev.Kind == orderbook.EventTrade {
				trades++
			}
		}
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("total orders : %d\n", numOrders)
	fmt.Printf("total trades : %d\n", trades)
	fmt.Printf("rejected     : %d\n", rejects)
	fmt.Printf("elapsed      : %s\n", elapsed)
	fmt.Printf("orders/sec   : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
