package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"price-engine/internal/model"
)

// InitialExplanation is the ledger entry written when a product is
// created, before any pricing cycle has touched it.
const InitialExplanation = "Initial product price"

// Memory is an in-memory Store. It backs tests and cmd/demo and doubles
// as a local-development fallback when no Supabase project is configured.
type Memory struct {
	mu       sync.RWMutex
	products map[string]model.Product
	history  map[string][]model.PriceHistoryEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]model.Product),
		history:  make(map[string][]model.PriceHistoryEntry),
	}
}

// CreateProduct stores a product and seeds its initial history entry.
// A missing ID is generated.
func (m *Memory) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = p

	m.history[p.ID] = append(m.history[p.ID], model.PriceHistoryEntry{
		ID:          uuid.NewString(),
		ProductID:   p.ID,
		Price:       p.Price,
		Explanation: InitialExplanation,
		Timestamp:   p.CreatedAt,
	})
	return p, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	// Stable order keeps batch results and demo output reproducible.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SetProductPrice(ctx context.Context, id string, price int64, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Price = price
	p.UpdatedAt = updatedAt
	m.products[id] = p
	return nil
}

func (m *Memory) AppendHistory(ctx context.Context, e model.PriceHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[e.ProductID]; !ok {
		return ErrNotFound
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.history[e.ProductID] = append(m.history[e.ProductID], e)
	return nil
}

func (m *Memory) ListHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.history[productID]
	out := make([]model.PriceHistoryEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) LatestEntry(ctx context.Context, productID string) (model.PriceHistoryEntry, error) {
	entries, err := m.ListHistory(ctx, productID)
	if err != nil {
		return model.PriceHistoryEntry{}, err
	}
	if len(entries) == 0 {
		return model.PriceHistoryEntry{}, ErrNotFound
	}
	return entries[len(entries)-1], nil
}
