package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"price-engine/internal/model"
)

// Supabase is a Store backed by a Supabase project's PostgREST surface
// (the products and price_history tables). It talks plain REST: no SQL
// connection is involved.
type Supabase struct {
	ProjectURL string
	APIKey     string
	Client     *http.Client

	prefix string
}

// NewSupabase creates a Supabase-backed store. projectURL is the project
// base URL (e.g. "https://abc.supabase.co"); apiKey is the service-role
// key, since this subsystem writes prices.
func NewSupabase(projectURL, apiKey string, timeout time.Duration) (*Supabase, error) {
	if projectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	trimmed := strings.TrimRight(projectURL, "/")
	return &Supabase{
		ProjectURL: trimmed,
		APIKey:     apiKey,
		Client:     &http.Client{Timeout: timeout},
		prefix:     trimmed + "/rest/v1",
	}, nil
}

// SupabaseError represents a non-2xx response from PostgREST.
type SupabaseError struct {
	StatusCode int
	Message    string
}

func (e *SupabaseError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.StatusCode, e.Message)
}

func (s *Supabase) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := s.do(ctx, http.MethodGet, "products", "select=*", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Supabase) GetProduct(ctx context.Context, id string) (model.Product, error) {
	var products []model.Product
	query := "select=*&id=eq." + url.QueryEscape(id)
	if err := s.do(ctx, http.MethodGet, "products", query, nil, &products); err != nil {
		return model.Product{}, err
	}
	if len(products) == 0 {
		return model.Product{}, ErrNotFound
	}
	return products[0], nil
}

func (s *Supabase) SetProductPrice(ctx context.Context, id string, price int64, updatedAt time.Time) error {
	body := map[string]any{
		"price":      price,
		"updated_at": updatedAt.UTC().Format(time.RFC3339),
	}
	var updated []model.Product
	query := "id=eq." + url.QueryEscape(id)
	if err := s.do(ctx, http.MethodPatch, "products", query, body, &updated); err != nil {
		return err
	}
	// PostgREST answers 200 with an empty array when the filter matched
	// nothing; surface that as a missing product.
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Supabase) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var created []model.Product
	if err := s.do(ctx, http.MethodPost, "products", "", p, &created); err != nil {
		return model.Product{}, err
	}
	if len(created) == 0 {
		return model.Product{}, fmt.Errorf("supabase: insert returned no representation")
	}
	out := created[0]

	err := s.AppendHistory(ctx, model.PriceHistoryEntry{
		ProductID:   out.ID,
		Price:       out.Price,
		Explanation: InitialExplanation,
		Timestamp:   out.CreatedAt,
	})
	if err != nil {
		return out, fmt.Errorf("product created but initial history entry failed: %w", err)
	}
	return out, nil
}

func (s *Supabase) AppendHistory(ctx context.Context, e model.PriceHistoryEntry) error {
	// The id column is generated server-side.
	body := map[string]any{
		"product_id":  e.ProductID,
		"price":       e.Price,
		"explanation": e.Explanation,
		"timestamp":   e.Timestamp.UTC().Format(time.RFC3339),
	}
	return s.do(ctx, http.MethodPost, "price_history", "", body, nil)
}

func (s *Supabase) ListHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error) {
	var entries []model.PriceHistoryEntry
	query := "select=*&product_id=eq." + url.QueryEscape(productID) + "&order=timestamp.asc"
	if err := s.do(ctx, http.MethodGet, "price_history", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Supabase) LatestEntry(ctx context.Context, productID string) (model.PriceHistoryEntry, error) {
	var entries []model.PriceHistoryEntry
	query := "select=*&product_id=eq." + url.QueryEscape(productID) + "&order=timestamp.desc&limit=1"
	if err := s.do(ctx, http.MethodGet, "price_history", query, nil, &entries); err != nil {
		return model.PriceHistoryEntry{}, err
	}
	if len(entries) == 0 {
		return model.PriceHistoryEntry{}, ErrNotFound
	}
	return entries[0], nil
}

// do performs one PostgREST request against a table. A non-nil out is
// decoded from the response body; writes ask for the representation back
// so callers can tell a no-op filter from a real update.
func (s *Supabase) do(ctx context.Context, method, table, query string, body, out any) error {
	path := s.prefix + "/" + url.PathEscape(table)
	if query != "" {
		path += "?" + query
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		log.Printf("[Supabase] %s %s failed: %v", method, table, err)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[Supabase] %s %s: %d %s", method, table, resp.StatusCode, strings.TrimSpace(string(msg)))
		return &SupabaseError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
