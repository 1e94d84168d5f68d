// Package refresh keeps clients current: on an interval it triggers a
// pricing cycle over the API, then refetches the catalog so the caller's
// view reflects the cycle that just ran.
package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"price-engine/internal/model"
)

// Coordinator periodically invokes the remote price-update trigger and
// refetches product data. Overlapping runs are suppressed: a trigger that
// arrives while a refresh is in flight is dropped, not queued.
type Coordinator struct {
	baseURL  string
	interval time.Duration
	client   *http.Client

	// onRefreshed receives the fresh catalog after each successful cycle.
	onRefreshed func([]model.Product)

	inProgress atomic.Bool
}

// triggerResponse is the subset of the update endpoint's response the
// coordinator cares about.
type triggerResponse struct {
	Success         bool `json:"success"`
	UpdatedProducts int  `json:"updated_products"`
	TotalProducts   int  `json:"total_products"`
}

type productsResponse struct {
	Products []model.Product `json:"products"`
}

// New creates a Coordinator. onRefreshed may be nil; interval <= 0
// defaults to one minute.
func New(baseURL string, interval time.Duration, onRefreshed func([]model.Product)) *Coordinator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Coordinator{
		baseURL:     strings.TrimRight(baseURL, "/"),
		interval:    interval,
		client:      &http.Client{Timeout: 30 * time.Second},
		onRefreshed: onRefreshed,
	}
}

// Start runs the refresh loop until ctx is cancelled. The first refresh
// happens immediately, then once per interval.
func (c *Coordinator) Start(ctx context.Context) {
	log.Printf("[Refresh] Coordinator started (interval: %v)", c.interval)
	c.refresh(ctx)

	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Refresh] Coordinator stopped: %v", ctx.Err())
			return
		case <-t.C:
			c.refresh(ctx)
		}
	}
}

// ForceRefresh triggers a refresh outside the timer, e.g. after a manual
// action. Returns false if a refresh was already in progress.
func (c *Coordinator) ForceRefresh(ctx context.Context) bool {
	return c.refresh(ctx)
}

// refresh runs one trigger-then-refetch pass. Returns false when skipped
// because another pass holds the flag.
func (c *Coordinator) refresh(ctx context.Context) bool {
	if !c.inProgress.CompareAndSwap(false, true) {
		log.Printf("[Refresh] Skipping: refresh already in progress")
		return false
	}
	defer c.inProgress.Store(false)

	trig, err := c.trigger(ctx)
	if err != nil {
		log.Printf("[Refresh] Price update trigger failed: %v", err)
		return false
	}
	log.Printf("[Refresh] Prices updated: %d/%d products", trig.UpdatedProducts, trig.TotalProducts)

	products, err := c.fetchProducts(ctx)
	if err != nil {
		log.Printf("[Refresh] Product refetch failed: %v", err)
		return false
	}
	if c.onRefreshed != nil {
		c.onRefreshed(products)
	}
	return true
}

func (c *Coordinator) trigger(ctx context.Context) (*triggerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/prices/update", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trigger returned status %d", resp.StatusCode)
	}
	var out triggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *Coordinator) fetchProducts(ctx context.Context) ([]model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/products", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("products endpoint returned status %d", resp.StatusCode)
	}
	var out productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Products, nil
}
