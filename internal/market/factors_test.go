package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetMarketFactors_RangesHold(t *testing.T) {
	p := NewProviderAt(nil, time.Now, 42)

	for i := 0; i < 500; i++ {
		f := p.GetMarketFactors(context.Background())

		assert.GreaterOrEqual(t, f.BitcoinVolatility, 0.2)
		assert.LessOrEqual(t, f.BitcoinVolatility, 0.7)
		assert.GreaterOrEqual(t, f.NetworkDemand, 0.3)
		assert.LessOrEqual(t, f.NetworkDemand, 0.9)
		assert.GreaterOrEqual(t, f.MarketSentiment, -1.0)
		assert.LessOrEqual(t, f.MarketSentiment, 1.0)
		assert.GreaterOrEqual(t, f.SeasonalFactor, 0.8)
		assert.LessOrEqual(t, f.SeasonalFactor, 1.2)
		assert.GreaterOrEqual(t, f.InventoryLevel, 0)
		assert.Less(t, f.InventoryLevel, 100)
	}
}

func TestGetMarketFactors_BusinessHoursDemand(t *testing.T) {
	// Tuesday 2025-06-03 15:00 UTC: weekday business hours.
	busy := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)
	p := NewProviderAt(nil, fixedTime(busy), 1)
	for i := 0; i < 100; i++ {
		f := p.GetMarketFactors(context.Background())
		assert.GreaterOrEqual(t, f.NetworkDemand, 0.6, "weekday business hours draw from the high band")
		assert.LessOrEqual(t, f.NetworkDemand, 0.9)
	}

	// Sunday 2025-06-01 03:00 UTC: off hours.
	quiet := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	p = NewProviderAt(nil, fixedTime(quiet), 1)
	for i := 0; i < 100; i++ {
		f := p.GetMarketFactors(context.Background())
		assert.GreaterOrEqual(t, f.NetworkDemand, 0.3)
		assert.LessOrEqual(t, f.NetworkDemand, 0.6, "off hours draw from the low band")
	}
}

func TestGetMarketFactors_SeasonalQ4Elevated(t *testing.T) {
	q4 := time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)
	p := NewProviderAt(nil, fixedTime(q4), 7)
	for i := 0; i < 100; i++ {
		f := p.GetMarketFactors(context.Background())
		assert.GreaterOrEqual(t, f.SeasonalFactor, 1.0, "Q4 draws from the elevated band")
		assert.LessOrEqual(t, f.SeasonalFactor, 1.2)
	}

	spring := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	p = NewProviderAt(nil, fixedTime(spring), 7)
	for i := 0; i < 100; i++ {
		f := p.GetMarketFactors(context.Background())
		assert.GreaterOrEqual(t, f.SeasonalFactor, 0.8)
		assert.LessOrEqual(t, f.SeasonalFactor, 1.1)
	}
}

func TestGetMarketFactors_UsesLiveReferencePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":64250.5}}`))
	}))
	defer srv.Close()

	p := NewProvider(NewCoinGeckoClient(srv.URL, time.Second))
	f := p.GetMarketFactors(context.Background())
	assert.Equal(t, 64250.5, f.BitcoinPrice)
}

func TestGetMarketFactors_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(NewCoinGeckoClient(srv.URL, time.Second))
	f := p.GetMarketFactors(context.Background())
	assert.Equal(t, FallbackBitcoinPrice, f.BitcoinPrice, "engine must still produce a bundle")
}

func TestGetMarketFactors_FallsBackOnMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{}}`))
	}))
	defer srv.Close()

	p := NewProvider(NewCoinGeckoClient(srv.URL, time.Second))
	f := p.GetMarketFactors(context.Background())
	assert.Equal(t, FallbackBitcoinPrice, f.BitcoinPrice)
}

func TestBitcoinPrice_RateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, time.Second)
	_, err := c.BitcoinPrice(context.Background())
	require.Error(t, err)

	var apiErr *CoinGeckoError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", apiErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestDefaultFactors(t *testing.T) {
	f := DefaultFactors()
	assert.Equal(t, FallbackBitcoinPrice, f.BitcoinPrice)
	assert.Equal(t, 0.5, f.NetworkDemand)
	assert.Equal(t, 0.0, f.MarketSentiment)
	assert.Equal(t, 1.0, f.SeasonalFactor)
	assert.False(t, f.PromotionActive)
}
