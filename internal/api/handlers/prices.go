package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"price-engine/internal/api/models"
	"price-engine/internal/engine"
	"price-engine/internal/store"
)

// PricesHandler exposes the pricing engine: the batch trigger, the
// per-product trigger, and the current factor bundle.
type PricesHandler struct {
	engine  *engine.Engine
	factors engine.FactorSource
}

// NewPricesHandler creates a new prices handler
func NewPricesHandler(eng *engine.Engine, factors engine.FactorSource) *PricesHandler {
	return &PricesHandler{engine: eng, factors: factors}
}

// UpdateAllPrices handles POST /api/v1/prices/update
func (h *PricesHandler) UpdateAllPrices(c *gin.Context) {
	result, err := h.engine.UpdateAllPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UPDATE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.UpdateAllPricesResponse{
		Success:         true,
		UpdatedProducts: result.UpdatedCount,
		TotalProducts:   result.TotalProducts,
		Failures:        result.Failures,
		MarketFactors:   result.Factors,
		Timestamp:       result.Timestamp,
	})
}

// UpdateProductPrice handles POST /api/v1/prices/update-product
func (h *PricesHandler) UpdateProductPrice(c *gin.Context) {
	var req models.UpdateProductPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	result, err := h.engine.UpdateProductPrice(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "PRODUCT_NOT_FOUND",
					Message: "product not found",
					Details: map[string]interface{}{"product_id": req.ProductID},
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UPDATE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.UpdateProductPriceResponse{
		Success:       true,
		Product:       result.ProductName,
		OldPrice:      result.OldPrice,
		NewPrice:      result.NewPrice,
		Explanation:   result.Explanation,
		Components:    result.Components,
		MarketFactors: result.Factors,
		Timestamp:     result.Timestamp,
	})
}

// GetMarketFactors handles GET /api/v1/market/factors
func (h *PricesHandler) GetMarketFactors(c *gin.Context) {
	c.JSON(http.StatusOK, h.factors.GetMarketFactors(c.Request.Context()))
}
