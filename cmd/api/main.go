package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"price-engine/internal/api/handlers"
	"price-engine/internal/api/middleware"
	"price-engine/internal/config"
	"price-engine/internal/engine"
	"price-engine/internal/market"
	"price-engine/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Environment overrides for containerized deploys.
	if port := os.Getenv("API_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if u := os.Getenv("SUPABASE_URL"); u != "" {
		cfg.Supabase.ProjectURL = u
	}
	if key := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); key != "" {
		cfg.Supabase.APIKey = key
	}

	// Pick the backing store: Supabase when configured, in-memory for
	// local development.
	var st store.Store
	if cfg.Supabase.ProjectURL != "" {
		sb, err := store.NewSupabase(cfg.Supabase.ProjectURL, cfg.Supabase.APIKey, cfg.SupabaseTimeout())
		if err != nil {
			log.Fatalf("Failed to create Supabase store: %v", err)
		}
		st = sb
		log.Printf("Using Supabase store at %s", cfg.Supabase.ProjectURL)
	} else {
		st = store.NewMemory()
		log.Printf("No Supabase project configured, using in-memory store (data is not persisted)")
	}

	factors := market.NewProvider(market.NewCoinGeckoClient(cfg.Pricing.ReferenceURL, cfg.ReferenceTimeout()))
	eng := engine.New(st, st, factors, cfg.Pricing.Workers)

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	pricesHandler := handlers.NewPricesHandler(eng, factors)
	productsHandler := handlers.NewProductsHandler(st)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/prices/update", pricesHandler.UpdateAllPrices)
		api.POST("/prices/update-product", pricesHandler.UpdateProductPrice)
		api.GET("/market/factors", pricesHandler.GetMarketFactors)

		api.GET("/products", productsHandler.ListProducts)
		api.GET("/products/:id/history", productsHandler.GetHistory)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting price engine API on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
