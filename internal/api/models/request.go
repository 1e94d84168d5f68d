package models

// UpdateProductPriceRequest triggers a pricing cycle for one product.
type UpdateProductPriceRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}
