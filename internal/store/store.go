// Package store defines the persistence contracts the pricing engine
// consumes. The product catalog and the price-history ledger live in
// Supabase in production; an in-memory implementation backs tests and the
// demo binary.
package store

import (
	"context"
	"errors"
	"time"

	"price-engine/internal/model"
)

// ErrNotFound is returned when a product or history entry does not exist.
var ErrNotFound = errors.New("not found")

// ProductStore reads and mutates the product catalog. Only the price
// field (and its updated_at) is mutated by this subsystem.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	SetProductPrice(ctx context.Context, id string, price int64, updatedAt time.Time) error
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
}

// HistoryStore is the append-only price ledger. Entries are immutable;
// ListHistory returns them in ascending timestamp order.
type HistoryStore interface {
	AppendHistory(ctx context.Context, e model.PriceHistoryEntry) error
	ListHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error)
	LatestEntry(ctx context.Context, productID string) (model.PriceHistoryEntry, error)
}

// Store combines both contracts; the Supabase and memory implementations
// satisfy it.
type Store interface {
	ProductStore
	HistoryStore
}
