package model

import "time"

// Product is one storefront listing. Prices are in satoshis (integer,
// smallest currency unit); the UI is responsible for display conversion.
//
// JSON tags match the Supabase column names of the products table.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ShopID      string    `json:"shop_id"`
	Price       int64     `json:"price"`
	StockCount  int       `json:"stock_count"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Popularity is the product-specific demand signal derived from scarcity:
// scarce stock reads as popular. Clamped to [0.1, 1].
func (p Product) Popularity() float64 {
	if p.StockCount <= 0 {
		return 0.1
	}
	pop := 5.0 / float64(p.StockCount)
	if pop > 1 {
		return 1
	}
	if pop < 0.1 {
		return 0.1
	}
	return pop
}
