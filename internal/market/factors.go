// Package market obtains the exogenous signals that drive a pricing
// cycle: a real BTC reference price plus synthesized market noise.
//
// The synthesized factors deliberately stand in for a real market-data
// feed. Anything replacing them must keep the documented value ranges,
// because the calculator's weights are tuned against them.
package market

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"price-engine/internal/model"
)

// Provider produces one MarketFactors bundle per call. It fails open: if
// the reference-price lookup errors out, the fallback constant is used and
// the bundle is still returned. Safe for concurrent use.
type Provider struct {
	ref *CoinGeckoClient
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a factor provider backed by the given
// reference-price client. A nil client disables the external lookup and
// always uses the fallback price (useful for offline runs).
func NewProvider(ref *CoinGeckoClient) *Provider {
	return &Provider{
		ref: ref,
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewProviderAt pins the clock and the random seed. Intended for tests
// that need reproducible demand and seasonality.
func NewProviderAt(ref *CoinGeckoClient, now func() time.Time, seed int64) *Provider {
	return &Provider{
		ref: ref,
		now: now,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GetMarketFactors builds the factor bundle for one cycle. It has no side
// effects and never fails; a batch update calls it exactly once and shares
// the result across every product in the cycle.
func (p *Provider) GetMarketFactors(ctx context.Context) model.MarketFactors {
	btcPrice := FallbackBitcoinPrice
	if p.ref != nil {
		price, err := p.ref.BitcoinPrice(ctx)
		if err != nil {
			log.Printf("[Market] Reference price lookup failed, using fallback $%.0f: %v", FallbackBitcoinPrice, err)
		} else {
			btcPrice = price
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().UTC()

	// Volatility: random but weighted toward realistic BTC behavior.
	volatility := 0.2 + p.rng.Float64()*0.5 // 0.2 to 0.7

	// Network demand tracks time of day and day of week: higher during
	// business hours (13:00-21:00 UTC, 9 AM to 5 PM EST) on weekdays.
	hour := now.Hour()
	day := now.Weekday()
	isBusinessHours := hour >= 13 && hour <= 21
	isWeekday := day >= time.Monday && day <= time.Friday
	var demand float64
	if isBusinessHours && isWeekday {
		demand = 0.6 + p.rng.Float64()*0.3
	} else {
		demand = 0.3 + p.rng.Float64()*0.3
	}

	// Sentiment would come from price momentum in a real feed.
	sentiment := p.rng.Float64()*2 - 1 // -1 to 1

	// Seasonal factor: elevated through Q4 (holiday season).
	var seasonal float64
	if now.Month() >= time.October {
		seasonal = 1.0 + p.rng.Float64()*0.2
	} else {
		seasonal = 0.8 + p.rng.Float64()*0.3
	}

	return model.MarketFactors{
		BitcoinPrice:      btcPrice,
		BitcoinVolatility: volatility,
		NetworkDemand:     demand,
		MarketSentiment:   sentiment,
		SeasonalFactor:    seasonal,
		InventoryLevel:    p.rng.Intn(100),
		PromotionActive:   p.rng.Float64() > 0.8,
	}
}

// DefaultFactors is the safe bundle used when no signal at all is
// available: neutral sentiment, mid-range demand, no promotion.
func DefaultFactors() model.MarketFactors {
	return model.MarketFactors{
		BitcoinPrice:      FallbackBitcoinPrice,
		BitcoinVolatility: 0.3,
		NetworkDemand:     0.5,
		MarketSentiment:   0,
		SeasonalFactor:    1.0,
		InventoryLevel:    50,
		PromotionActive:   false,
	}
}
