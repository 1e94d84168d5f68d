// Package engine orchestrates pricing cycles: fetch one factor bundle,
// price every product against it, and persist each result as a price
// write plus a history append.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"price-engine/internal/model"
	"price-engine/internal/pricing"
	"price-engine/internal/store"
)

// FactorSource provides the market factors for one cycle. It must be safe
// for concurrent use and must never fail (it falls back internally).
type FactorSource interface {
	GetMarketFactors(ctx context.Context) model.MarketFactors
}

// Failure stages. A "price" failure left the product untouched; a
// "history" failure means the price changed but the ledger is behind and
// needs reconciling.
const (
	StagePrice   = "price"
	StageHistory = "history"
)

// Failure records one product that did not complete its cycle cleanly.
type Failure struct {
	ProductID string `json:"product_id"`
	Stage     string `json:"stage"`
	Err       string `json:"error"`
}

// BatchResult summarizes one UpdateAllPrices cycle. UpdatedCount counts
// products whose price write and history append both succeeded; it is
// distinguished from TotalProducts, since a batch is best-effort.
type BatchResult struct {
	TotalProducts int                 `json:"total_products"`
	UpdatedCount  int                 `json:"updated_count"`
	Failures      []Failure           `json:"failures,omitempty"`
	Factors       model.MarketFactors `json:"market_factors"`
	Timestamp     time.Time           `json:"timestamp"`
}

// UpdateResult is the outcome of pricing a single product on demand.
type UpdateResult struct {
	ProductID   string              `json:"product_id"`
	ProductName string              `json:"product_name"`
	OldPrice    int64               `json:"old_price"`
	NewPrice    int64               `json:"new_price"`
	Explanation string              `json:"explanation"`
	Components  pricing.Components  `json:"components"`
	Factors     model.MarketFactors `json:"market_factors"`
	Timestamp   time.Time           `json:"timestamp"`
}

// Engine runs pricing cycles against the product and history stores.
// It is stateless across cycles; every invocation is self-contained.
type Engine struct {
	products store.ProductStore
	history  store.HistoryStore
	factors  FactorSource

	now     func() time.Time
	workers int
}

// DefaultWorkers bounds per-cycle concurrency. Per-product computations
// share nothing, so the ceiling only protects the backing store.
const DefaultWorkers = 8

// New creates an Engine. workers <= 0 selects DefaultWorkers.
func New(products store.ProductStore, history store.HistoryStore, factors FactorSource, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		products: products,
		history:  history,
		factors:  factors,
		now:      time.Now,
		workers:  workers,
	}
}

// UpdateAllPrices runs one best-effort cycle over the whole catalog. The
// factor bundle is fetched exactly once and shared; per-product failures
// are collected, never fatal for the rest of the batch. Cancelling ctx
// stops scheduling further products but lets in-flight ones complete.
func (e *Engine) UpdateAllPrices(ctx context.Context) (*BatchResult, error) {
	factors := e.factors.GetMarketFactors(ctx)

	products, err := e.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ts := e.now().UTC()
	result := &BatchResult{
		TotalProducts: len(products),
		Factors:       factors,
		Timestamp:     ts,
	}

	// In-flight writes survive a caller cancellation: a product is
	// either fully processed or not started.
	writeCtx := context.WithoutCancel(ctx)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, e.workers)

scheduling:
	for _, p := range products {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break scheduling
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(p model.Product) {
			defer wg.Done()
			defer func() { <-sem }()

			fail := e.updateOne(writeCtx, p, factors, ts)
			mu.Lock()
			if fail == nil {
				result.UpdatedCount++
			} else {
				result.Failures = append(result.Failures, *fail)
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].ProductID < result.Failures[j].ProductID
	})

	log.Printf("[Engine] Cycle complete: %d/%d products updated, %d failures (BTC: $%.2f)",
		result.UpdatedCount, result.TotalProducts, len(result.Failures), factors.BitcoinPrice)
	return result, nil
}

// UpdateProductPrice runs one cycle for a single product.
func (e *Engine) UpdateProductPrice(ctx context.Context, productID string) (*UpdateResult, error) {
	factors := e.factors.GetMarketFactors(ctx)

	p, err := e.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	if err := validateProduct(p); err != nil {
		return nil, fmt.Errorf("product %s: %w", p.ID, err)
	}

	ts := e.now().UTC()
	quote := pricing.ComputePrice(p, factors, e.daysInInventory(ctx, p.ID, ts))

	if err := e.products.SetProductPrice(ctx, p.ID, quote.NewPrice, ts); err != nil {
		return nil, fmt.Errorf("set price for %s: %w", p.ID, err)
	}
	err = e.history.AppendHistory(ctx, model.PriceHistoryEntry{
		ProductID:   p.ID,
		Price:       quote.NewPrice,
		Explanation: quote.Explanation,
		Timestamp:   ts,
	})
	if err != nil {
		// The price write already landed; the ledger is now behind.
		log.Printf("[Engine] History append failed for %s after price write, ledger out of sync: %v", p.ID, err)
		return nil, fmt.Errorf("append history for %s: %w", p.ID, err)
	}

	return &UpdateResult{
		ProductID:   p.ID,
		ProductName: p.Name,
		OldPrice:    p.Price,
		NewPrice:    quote.NewPrice,
		Explanation: quote.Explanation,
		Components:  quote.Components,
		Factors:     factors,
		Timestamp:   ts,
	}, nil
}

// updateOne prices and persists one product within a batch. Returns nil
// on success or the Failure to report.
func (e *Engine) updateOne(ctx context.Context, p model.Product, factors model.MarketFactors, ts time.Time) *Failure {
	if err := validateProduct(p); err != nil {
		log.Printf("[Engine] Rejecting %s: %v", p.ID, err)
		return &Failure{ProductID: p.ID, Stage: StagePrice, Err: err.Error()}
	}

	quote := pricing.ComputePrice(p, factors, e.daysInInventory(ctx, p.ID, ts))

	if err := e.products.SetProductPrice(ctx, p.ID, quote.NewPrice, ts); err != nil {
		log.Printf("[Engine] Price write failed for %s: %v", p.ID, err)
		return &Failure{ProductID: p.ID, Stage: StagePrice, Err: err.Error()}
	}

	err := e.history.AppendHistory(ctx, model.PriceHistoryEntry{
		ProductID:   p.ID,
		Price:       quote.NewPrice,
		Explanation: quote.Explanation,
		Timestamp:   ts,
	})
	if err != nil {
		log.Printf("[Engine] History append failed for %s after price write, ledger out of sync: %v", p.ID, err)
		return &Failure{ProductID: p.ID, Stage: StageHistory, Err: err.Error()}
	}
	return nil
}

// validateProduct screens store integrity problems out of the cycle.
// These are collaborator contract violations, not calculator inputs.
func validateProduct(p model.Product) error {
	if p.Price <= 0 {
		return fmt.Errorf("invalid product state: non-positive price %d", p.Price)
	}
	if p.StockCount < 0 {
		return fmt.Errorf("invalid product state: negative stock %d", p.StockCount)
	}
	return nil
}

// daysInInventory measures elapsed time since the product's last price
// change (its newest ledger entry), capped at the decay horizon. A
// product with no history, or an unreadable ledger, reads as fresh.
func (e *Engine) daysInInventory(ctx context.Context, productID string, now time.Time) float64 {
	last, err := e.history.LatestEntry(ctx, productID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[Engine] Latest history lookup failed for %s: %v", productID, err)
		}
		return 0
	}
	days := now.Sub(last.Timestamp).Hours() / 24
	if days < 0 {
		return 0
	}
	if days > pricing.MaxInventoryDays {
		return pricing.MaxInventoryDays
	}
	return days
}
