package pricing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-engine/internal/model"
)

func TestComputePrice_ClampsLargePositiveSwing(t *testing.T) {
	// Scenario: every factor pushes up and stock is scarce.
	// Raw change = 0.35*0.9 + 0.25*1 + 0.15*1 + 0.05*0.2 = 0.725,
	// clamped to +0.10: 100,000 -> 110,000.
	p := model.Product{ID: "p1", Name: "Node Kit", Price: 100000, StockCount: 1}
	f := model.MarketFactors{
		BitcoinPrice:    65000,
		NetworkDemand:   0.9,
		MarketSentiment: 1,
		SeasonalFactor:  1.2,
		PromotionActive: false,
	}

	q := ComputePrice(p, f, 0)

	assert.Equal(t, int64(110000), q.NewPrice)
	assert.InDelta(t, 0.725, q.Components.RawChange, 1e-9)
	assert.InDelta(t, MaxChange, q.Components.ClampedChange, 1e-9)
	assert.Equal(t, 1.0, q.Components.Popularity, "stock of 1 is max popularity")
	assert.Contains(t, q.Explanation, "Price increased by 10.0%.")
	assert.Contains(t, q.Explanation, "High Lightning Network demand.")
	assert.Contains(t, q.Explanation, "Positive market sentiment.")
}

func TestComputePrice_FloorOverridesClampedDecrease(t *testing.T) {
	// Scenario: most negative inputs. Clamped change is -10%, so
	// 1,050 * 0.9 = 945, which is below the floor: result is 1000.
	p := model.Product{ID: "p1", Price: 1050, StockCount: 20}
	f := model.MarketFactors{
		BitcoinPrice:    30000,
		NetworkDemand:   0.3,
		MarketSentiment: -1,
		SeasonalFactor:  0.8,
		PromotionActive: true,
	}

	q := ComputePrice(p, f, MaxInventoryDays)

	// Raw: 0.105 + 0 - 0.15 - 0.01 - 0.05 = -0.105, clamped to -0.10.
	assert.InDelta(t, -0.105, q.Components.RawChange, 1e-9)
	assert.InDelta(t, -MaxChange, q.Components.ClampedChange, 1e-9)
	assert.Equal(t, MinPrice, q.NewPrice, "floor wins over the clamped 945")
}

func TestComputePrice_AdversarialDecreaseStaysWithinClamp(t *testing.T) {
	p := model.Product{ID: "p1", Price: 100000, StockCount: 50}
	f := model.MarketFactors{
		BitcoinPrice:    30000,
		NetworkDemand:   0.3,
		MarketSentiment: -1,
		SeasonalFactor:  0.8,
		PromotionActive: true,
	}

	q := ComputePrice(p, f, MaxInventoryDays)

	assert.Equal(t, int64(90000), q.NewPrice)
	assert.GreaterOrEqual(t, q.NewPrice, MinPrice)
	assert.Contains(t, q.Explanation, "Price decreased by 10.0%.")
	assert.Contains(t, q.Explanation, "Negative market sentiment.")
	assert.Contains(t, q.Explanation, "Promotional discount applied.")
}

func TestComputePrice_ClampInvariantAcrossFactorGrid(t *testing.T) {
	// For any factor bundle and any price comfortably above the floor,
	// |new - old| / old <= 0.10.
	prices := []int64{1200, 5000, 100000, 98765432}
	stocks := []int{0, 1, 5, 50, 1000}
	demands := []float64{0.3, 0.6, 0.9}
	sentiments := []float64{-1, -0.5, 0, 0.5, 1}
	seasonals := []float64{0.8, 1.0, 1.2}
	days := []float64{0, 15, 30}

	for _, price := range prices {
		for _, stock := range stocks {
			for _, d := range demands {
				for _, s := range sentiments {
					for _, sf := range seasonals {
						for _, promo := range []bool{false, true} {
							for _, day := range days {
								p := model.Product{ID: "p", Price: price, StockCount: stock}
								f := model.MarketFactors{
									BitcoinPrice:    30000,
									NetworkDemand:   d,
									MarketSentiment: s,
									SeasonalFactor:  sf,
									PromotionActive: promo,
								}
								q := ComputePrice(p, f, day)

								change := float64(q.NewPrice-price) / float64(price)
								// Rounding to whole satoshis can nudge the ratio past
								// the cap by less than one satoshi's worth.
								assert.LessOrEqual(t, change, MaxChange+1.0/float64(price),
									"price %d factors %+v day %v", price, f, day)
								assert.GreaterOrEqual(t, change, -MaxChange-1.0/float64(price))
								assert.GreaterOrEqual(t, q.NewPrice, MinPrice)
							}
						}
					}
				}
			}
		}
	}
}

func TestComputePrice_Deterministic(t *testing.T) {
	p := model.Product{ID: "p1", Price: 123456, StockCount: 7}
	f := model.MarketFactors{
		BitcoinPrice:    61234.56,
		NetworkDemand:   0.71,
		MarketSentiment: 0.33,
		SeasonalFactor:  1.05,
		PromotionActive: true,
	}

	first := ComputePrice(p, f, 12.5)
	for i := 0; i < 10; i++ {
		again := ComputePrice(p, f, 12.5)
		require.Equal(t, first, again, "same inputs must produce the same quote")
	}
}

func TestComputePrice_ExplanationContainsReferencePrice(t *testing.T) {
	p := model.Product{ID: "p1", Price: 50000, StockCount: 10}

	for _, ref := range []float64{30000, 65432.1, 102345.75} {
		f := model.MarketFactors{
			BitcoinPrice:    ref,
			NetworkDemand:   0.5,
			MarketSentiment: 0.2,
			SeasonalFactor:  1.0,
		}
		q := ComputePrice(p, f, 10)
		assert.Contains(t, q.Explanation, fmt.Sprintf("%v", ref))
	}
}

func TestComputePrice_StablePrice(t *testing.T) {
	// Terms cancel exactly: demand 0.105, inventory 0, sentiment -0.105.
	p := model.Product{ID: "p1", Price: 80000, StockCount: 10}
	f := model.MarketFactors{
		BitcoinPrice:    30000,
		NetworkDemand:   0.3,
		MarketSentiment: -0.7,
		SeasonalFactor:  1.0,
	}

	q := ComputePrice(p, f, MaxInventoryDays)

	assert.Equal(t, p.Price, q.NewPrice)
	assert.True(t, strings.HasPrefix(q.Explanation, "Price remained stable."), q.Explanation)
}

func TestComputePrice_DaysInInventoryClamped(t *testing.T) {
	p := model.Product{ID: "p1", Price: 80000, StockCount: 10}
	f := model.MarketFactors{BitcoinPrice: 30000, NetworkDemand: 0.5, SeasonalFactor: 1.0}

	beyond := ComputePrice(p, f, 45)
	atMax := ComputePrice(p, f, MaxInventoryDays)
	assert.Equal(t, atMax.NewPrice, beyond.NewPrice)

	negative := ComputePrice(p, f, -3)
	fresh := ComputePrice(p, f, 0)
	assert.Equal(t, fresh.NewPrice, negative.NewPrice)
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, 0.1, model.Product{StockCount: 0}.Popularity(), "out of stock")
	assert.Equal(t, 1.0, model.Product{StockCount: 1}.Popularity(), "scarce")
	assert.Equal(t, 0.5, model.Product{StockCount: 10}.Popularity())
	assert.Equal(t, 0.1, model.Product{StockCount: 500}.Popularity(), "clamped low")
}
