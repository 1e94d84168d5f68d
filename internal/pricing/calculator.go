package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"price-engine/internal/model"
)

// Pricing constants. The weights are calibrated against the factor ranges
// documented on model.MarketFactors; changing one side without the other
// invalidates the clamp behavior.
const (
	// MinPrice is the hard floor in satoshis. A price never drops below it.
	MinPrice int64 = 1000

	// MaxChange caps the per-cycle price swing at ±10%.
	MaxChange = 0.10

	// MaxInventoryDays is the horizon over which the inventory
	// adjustment decays to zero.
	MaxInventoryDays = 30.0

	demandWeight    = 0.35
	inventoryWeight = 0.25
	sentimentWeight = 0.15
	seasonalWeight  = 0.05
	promotionCut    = 0.05
)

// Components are the individual weighted terms that produced a quote.
// The UI renders these as the "price formula" breakdown.
type Components struct {
	Popularity       float64 `json:"popularity"`
	DaysInInventory  float64 `json:"days_in_inventory"`
	DemandFactor     float64 `json:"demand_factor"`
	InventoryFactor  float64 `json:"inventory_factor"`
	SentimentFactor  float64 `json:"sentiment_factor"`
	SeasonalFactor   float64 `json:"seasonal_factor"`
	PromotionFactor  float64 `json:"promotion_factor"`
	RawChange        float64 `json:"raw_change"`
	ClampedChange    float64 `json:"clamped_change"`
}

// Quote is the outcome of pricing one product for one cycle.
type Quote struct {
	OldPrice    int64      `json:"old_price"`
	NewPrice    int64      `json:"new_price"`
	Explanation string     `json:"explanation"`
	Components  Components `json:"components"`
}

// ComputePrice prices one product against one factor bundle. It is a pure
// function: all randomness lives in the factor provider, and the
// days-in-inventory signal is supplied by the caller (derived from the
// product's price history), so the same inputs always produce the same
// quote.
//
// daysInInventory outside [0, MaxInventoryDays] is clamped.
func ComputePrice(p model.Product, f model.MarketFactors, daysInInventory float64) Quote {
	if daysInInventory < 0 {
		daysInInventory = 0
	}
	if daysInInventory > MaxInventoryDays {
		daysInInventory = MaxInventoryDays
	}

	c := Components{
		Popularity:      p.Popularity(),
		DaysInInventory: daysInInventory,
		DemandFactor:    f.NetworkDemand * demandWeight,
		InventoryFactor: (1 - daysInInventory/MaxInventoryDays) * inventoryWeight,
		SentimentFactor: f.MarketSentiment * sentimentWeight,
		SeasonalFactor:  (f.SeasonalFactor - 1) * seasonalWeight,
	}
	if f.PromotionActive {
		c.PromotionFactor = promotionCut
	}

	c.RawChange = c.DemandFactor + c.InventoryFactor + c.SentimentFactor + c.SeasonalFactor - c.PromotionFactor
	c.ClampedChange = clamp(c.RawChange, -MaxChange, MaxChange)

	// The clamped fraction compounds on the live price each cycle; there
	// is no long-run anchor to the reference price.
	newPrice := int64(math.Round(float64(p.Price) * (1 + c.ClampedChange)))
	if newPrice < MinPrice {
		newPrice = MinPrice
	}

	return Quote{
		OldPrice:    p.Price,
		NewPrice:    newPrice,
		Explanation: buildExplanation(p.Price, newPrice, f, c),
		Components:  c,
	}
}

// buildExplanation states direction and magnitude of the change, adds
// qualitative clauses for the terms that crossed their significance
// thresholds, and always ends with the BTC reference price used this
// cycle so every history entry is traceable to its inputs.
func buildExplanation(oldPrice, newPrice int64, f model.MarketFactors, c Components) string {
	var b strings.Builder

	switch {
	case newPrice > oldPrice:
		pct := float64(newPrice-oldPrice) / float64(oldPrice) * 100
		fmt.Fprintf(&b, "Price increased by %.1f%%. ", pct)
		if c.DemandFactor > 0.1 {
			b.WriteString("High Lightning Network demand. ")
		}
		if c.InventoryFactor > 0.05 {
			b.WriteString("Low inventory levels. ")
		}
		if c.SentimentFactor > 0 {
			b.WriteString("Positive market sentiment. ")
		}
		if c.SeasonalFactor > 0 {
			b.WriteString("Seasonal demand increase. ")
		}
	case newPrice < oldPrice:
		pct := float64(oldPrice-newPrice) / float64(oldPrice) * 100
		fmt.Fprintf(&b, "Price decreased by %.1f%%. ", pct)
		if c.DemandFactor < -0.05 {
			b.WriteString("Reduced Lightning Network activity. ")
		}
		if c.InventoryFactor < -0.05 {
			b.WriteString("High inventory levels. ")
		}
		if c.SentimentFactor < 0 {
			b.WriteString("Negative market sentiment. ")
		}
		if f.PromotionActive {
			b.WriteString("Promotional discount applied. ")
		}
	default:
		b.WriteString("Price remained stable. Market conditions balanced. ")
	}

	fmt.Fprintf(&b, "BTC: $%s", strconv.FormatFloat(f.BitcoinPrice, 'f', -1, 64))
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
