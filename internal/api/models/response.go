package models

import (
	"time"

	"price-engine/internal/engine"
	"price-engine/internal/model"
	"price-engine/internal/pricing"
)

// UpdateAllPricesResponse reports one catalog-wide pricing cycle.
// UpdatedProducts counts products actually updated, which can be less
// than TotalProducts on partial failure.
type UpdateAllPricesResponse struct {
	Success         bool                `json:"success"`
	UpdatedProducts int                 `json:"updated_products"`
	TotalProducts   int                 `json:"total_products"`
	Failures        []engine.Failure    `json:"failures,omitempty"`
	MarketFactors   model.MarketFactors `json:"market_factors"`
	Timestamp       time.Time           `json:"timestamp"`
}

// UpdateProductPriceResponse reports a single-product pricing cycle,
// including the component breakdown the price-formula view renders.
type UpdateProductPriceResponse struct {
	Success       bool                `json:"success"`
	Product       string              `json:"product"`
	OldPrice      int64               `json:"old_price"`
	NewPrice      int64               `json:"new_price"`
	Explanation   string              `json:"explanation"`
	Components    pricing.Components  `json:"components"`
	MarketFactors model.MarketFactors `json:"market_factors"`
	Timestamp     time.Time           `json:"timestamp"`
}

// ProductsResponse lists the catalog for read-through consumers.
type ProductsResponse struct {
	Products []model.Product `json:"products"`
}

// HistoryResponse lists a product's ledger, ascending by timestamp.
type HistoryResponse struct {
	ProductID string                    `json:"product_id"`
	History   []model.PriceHistoryEntry `json:"history"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
