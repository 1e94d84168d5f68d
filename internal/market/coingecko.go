package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// FallbackBitcoinPrice is used whenever the live lookup fails. The engine
// must always produce some price, so reference-price errors never
// propagate past the factor provider.
const FallbackBitcoinPrice = 30000.0

// CoinGeckoClient fetches the real-world BTC/USD reference price from the
// CoinGecko simple-price API. The endpoint needs no API key.
type CoinGeckoClient struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGeckoClient creates a reference-price client.
// If baseURL is empty, defaults to "https://api.coingecko.com".
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// CoinGeckoError represents an error response from the CoinGecko API.
type CoinGeckoError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *CoinGeckoError) Error() string {
	return e.Message
}

// simplePriceResponse matches the CoinGecko simple-price JSON shape:
//
//	{ "bitcoin": { "usd": 30123.45 } }
type simplePriceResponse struct {
	Bitcoin struct {
		USD float64 `json:"usd"`
	} `json:"bitcoin"`
}

// BitcoinPrice fetches the current BTC/USD price. Callers are expected to
// fall back to FallbackBitcoinPrice on any error.
func (c *CoinGeckoClient) BitcoinPrice(ctx context.Context) (float64, error) {
	u := c.BaseURL + "/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("[CoinGecko] Request failed: %v (duration: %v)", err, duration)
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[CoinGecko] Response: %d %s (duration: %v)", resp.StatusCode, resp.Status, duration)

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, continue
	case http.StatusTooManyRequests:
		return 0, &CoinGeckoError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", resp.Header.Get("Retry-After")),
		}
	default:
		return 0, &CoinGeckoError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var result simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Bitcoin.USD <= 0 {
		return 0, &CoinGeckoError{
			StatusCode: resp.StatusCode,
			Code:       "MALFORMED_RESPONSE",
			Message:    "response missing bitcoin.usd price",
		}
	}

	return result.Bitcoin.USD, nil
}
