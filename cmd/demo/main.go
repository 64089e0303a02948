// Command demo exercises the matching engine directly, in-process, with
// no gRPC involved.
package main

import (
	"fmt"
	"time"

	"github.com/altilar-labs/microlob/pkg/core"
	"github.com/altilar-labs/microlob/pkg/fixedpoint"
)

func main() {
	engine, err := core.NewMatchingEngine(64, func() int64 { return time.Now().UnixNano() })
	if err != nil {
		panic(err)
	}

	sellID := core.OrderID(1)
	buyID := core.OrderID(2)

	sellEvents := engine.New(sellID, core.Ask, core.Limit, fixedpoint.FromTicks(1000), fixedpoint.FromLots(10))
	fmt.Printf("sell order %d: %+v\n", sellID, sellEvents)

	buyEvents := engine.New(buyID, core.Bid, core.Limit, fixedpoint.FromTicks(1000), fixedpoint.FromLots(5))
	fmt.Printf("buy order %d: %+v\n", buyID, buyEvents)

	fmt.Println("\nbid depth:")
	for _, lvl := range engine.BidDepth(5) {
		fmt.Printf("  %d ticks x %d lots (%d orders)\n", lvl.Price.Ticks(), lvl.Quantity.Lots(), lvl.OrderCount)
	}

	fmt.Println("ask depth:")
	for _, lvl := range engine.AskDepth(5) {
		fmt.Printf("  %d ticks x %d lots (%d orders)\n", lvl.Price.Ticks(), lvl.Quantity.Lots(), lvl.OrderCount)
	}

	if avg, filled, ok := engine.MarketPriceForQuantity(core.Bid, fixedpoint.FromLots(5)); ok {
		fmt.Printf("\na 5-lot market buy would fill %d lots at an average of %d ticks\n", filled.Lots(), avg.Ticks())
	}

	cancelEvents := engine.Cancel(sellID)
	fmt.Printf("\ncancel order %d: %+v\n", sellID, cancelEvents)
}
