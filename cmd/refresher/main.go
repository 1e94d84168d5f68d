package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-engine/internal/config"
	"price-engine/internal/model"
	"price-engine/internal/refresh"
)

// The refresher is the client-side coordinator as a standalone daemon:
// it triggers a pricing cycle on an interval and refetches the catalog,
// which is what the storefront's refresh hook does in the browser.
func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	apiURL := flag.String("api-url", "", "base URL of the price engine API (overrides config)")
	interval := flag.Duration("interval", 0, "refresh interval, e.g. 60s (overrides config)")
	once := flag.Bool("once", false, "run a single forced refresh and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	url := cfg.Refresh.APIURL
	if *apiURL != "" {
		url = *apiURL
	}
	every := cfg.RefreshInterval()
	if *interval > 0 {
		every = *interval
	}

	coord := refresh.New(url, every, func(products []model.Product) {
		log.Printf("Catalog refreshed: %d products", len(products))
		for _, p := range products {
			log.Printf("  %s: %d sats (stock %d)", p.Name, p.Price, p.StockCount)
		}
	})

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if !coord.ForceRefresh(ctx) {
			log.Fatalf("Refresh failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	coord.Start(ctx)
}
