package model

// MarketFactors is the bundle of macro signals that drives one pricing
// cycle. A bundle is fetched once per cycle and shared across every
// product in that cycle; it is never persisted on its own.
type MarketFactors struct {
	// BitcoinPrice is the external BTC/USD reference price.
	BitcoinPrice float64 `json:"bitcoin_price"`

	// BitcoinVolatility is recent price volatility, in [0.2, 0.7].
	BitcoinVolatility float64 `json:"bitcoin_volatility"`

	// NetworkDemand is the Lightning Network activity factor, in [0.3, 0.9].
	// Higher during weekday business hours.
	NetworkDemand float64 `json:"network_demand"`

	// MarketSentiment is overall market mood, in [-1, 1].
	MarketSentiment float64 `json:"market_sentiment"`

	// SeasonalFactor adjusts for time of year, in [0.8, 1.2].
	// Elevated during Q4.
	SeasonalFactor float64 `json:"seasonal_factor"`

	// InventoryLevel is a simulated catalog-wide inventory signal, in [0, 100).
	InventoryLevel int `json:"inventory_level"`

	// PromotionActive flags a storefront-wide promotion for this cycle.
	PromotionActive bool `json:"promotion_active"`
}
