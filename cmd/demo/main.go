package main

import (
	"context"
	"fmt"
	"log"

	"price-engine/internal/engine"
	"price-engine/internal/market"
	"price-engine/internal/model"
	"price-engine/internal/store"
)

// Offline demonstration: seeds a small catalog into the in-memory store
// and runs a few pricing cycles, printing how each price moves and why.
// No network access: the reference price uses the fallback constant.
func main() {
	ctx := context.Background()
	st := store.NewMemory()

	seed := []model.Product{
		{Name: "Bitcoin Hardware Wallet", ShopID: "demo-shop", Price: 150000, StockCount: 12},
		{Name: "Lightning Node Kit", ShopID: "demo-shop", Price: 420000, StockCount: 3},
		{Name: "Satoshi Hoodie", ShopID: "demo-shop", Price: 65000, StockCount: 40},
		{Name: "Block Clock", ShopID: "demo-shop", Price: 980000, StockCount: 1},
		{Name: "Seed Plate", ShopID: "demo-shop", Price: 25000, StockCount: 75},
	}
	for i, p := range seed {
		created, err := st.CreateProduct(ctx, p)
		if err != nil {
			log.Fatalf("Failed to seed product: %v", err)
		}
		seed[i] = created
	}

	factors := market.NewProvider(nil) // offline: fallback reference price
	eng := engine.New(st, st, factors, 4)

	const cycles = 5
	for cycle := 1; cycle <= cycles; cycle++ {
		result, err := eng.UpdateAllPrices(ctx)
		if err != nil {
			log.Fatalf("Cycle %d failed: %v", cycle, err)
		}
		fmt.Printf("\n=== Cycle %d: updated %d/%d products ===\n", cycle, result.UpdatedCount, result.TotalProducts)
		fmt.Printf("Factors: demand=%.2f sentiment=%+.2f seasonal=%.2f promo=%v BTC=$%.0f\n",
			result.Factors.NetworkDemand, result.Factors.MarketSentiment,
			result.Factors.SeasonalFactor, result.Factors.PromotionActive, result.Factors.BitcoinPrice)

		products, err := st.ListProducts(ctx)
		if err != nil {
			log.Fatalf("List products: %v", err)
		}
		for _, p := range products {
			last, err := st.LatestEntry(ctx, p.ID)
			if err != nil {
				log.Fatalf("Latest entry for %s: %v", p.Name, err)
			}
			fmt.Printf("  %-24s %8d sats  %s\n", p.Name, p.Price, last.Explanation)
		}
	}

	fmt.Println("\n=== Full ledger for", seed[0].Name, "===")
	history, err := st.ListHistory(ctx, seed[0].ID)
	if err != nil {
		log.Fatalf("List history: %v", err)
	}
	for _, e := range history {
		fmt.Printf("  %s  %8d sats  %s\n", e.Timestamp.Format("15:04:05.000"), e.Price, e.Explanation)
	}
}
