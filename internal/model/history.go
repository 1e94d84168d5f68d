package model

import "time"

// PriceHistoryEntry is one immutable audit record: the price a product
// held after an update and the human-readable reason it changed.
// Entries are never mutated or deleted; Timestamp is the ordering key.
//
// Invariant: the newest entry's Price equals the product's current price.
//
// JSON tags match the Supabase column names of the price_history table.
type PriceHistoryEntry struct {
	ID          string    `json:"id,omitempty"`
	ProductID   string    `json:"product_id"`
	Price       int64     `json:"price"`
	Explanation string    `json:"explanation"`
	Timestamp   time.Time `json:"timestamp"`
}
