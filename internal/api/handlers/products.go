package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"price-engine/internal/api/models"
	"price-engine/internal/store"
)

// ProductsHandler serves the read-through endpoints the storefront and the
// refresher use: the catalog and per-product price history for charting.
type ProductsHandler struct {
	store store.Store
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(st store.Store) *ProductsHandler {
	return &ProductsHandler{store: st}
}

// ListProducts handles GET /api/v1/products
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.ProductsResponse{Products: products})
}

// GetHistory handles GET /api/v1/products/:id/history
func (h *ProductsHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")

	// A product with no history at all is indistinguishable from an
	// unknown id in the ledger, so check the product first.
	if _, err := h.store.GetProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "PRODUCT_NOT_FOUND",
					Message: "product not found",
					Details: map[string]interface{}{"product_id": id},
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	history, err := h.store.ListHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{ProductID: id, History: history})
}
