package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/shopspring/decimal"
)

// CostingService is the costing surface the handler depends on, implemented
// by service.CostingService.
type CostingService interface {
	CostCalculation(ctx context.Context, productID string, asOf time.Time) (*engine.CostBreakdown, error)
	MaterialsByGroup(ctx context.Context, group string) ([]entity.Product, error)
	PriceHistoryOf(ctx context.Context, materialID string) ([]entity.MaterialPriceHistory, error)
	AddQuote(ctx context.Context, materialID string, price decimal.Decimal, quotedDate time.Time) (*entity.MaterialPriceHistory, error)
}

// CascadeService is implemented by service.CascadeService.
type CascadeService interface {
	RecalculateCosts(ctx context.Context, materialID string, asOf time.Time) (*engine.CascadeResult, error)
}

// CostingHandler serves cost calculation, material pricing and cost
// recalculation.
type CostingHandler struct {
	costing CostingService
	cascade CascadeService
}

func NewCostingHandler(costing CostingService, cascade CascadeService) *CostingHandler {
	return &CostingHandler{costing: costing, cascade: cascade}
}

// CostCalculation returns the unit cost breakdown of a product.
// GET /api/v1/products/:id/cost-calculation?pricing_date=yyyy-mm-dd
func (h *CostingHandler) CostCalculation(c *gin.Context) {
	productID := c.Param("id")
	if productID == "" {
		BadRequest(c, "Product ID is required")
		return
	}
	asOf, err := parseDate(c.Query("pricing_date"))
	if err != nil {
		BadRequest(c, "Invalid pricing_date, expected yyyy-mm-dd")
		return
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	breakdown, err := h.costing.CostCalculation(c.Request.Context(), productID, asOf)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrProductNotFound), errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Product not found: "+productID)
		case engine.IsCycle(err):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, breakdown)
}

// ListMaterials lists catalog products of one group, raw materials by
// default.
// GET /api/v1/materials?group=NVL
func (h *CostingHandler) ListMaterials(c *gin.Context) {
	group := c.DefaultQuery("group", entity.GroupRawMaterial)
	switch group {
	case entity.GroupRawMaterial, entity.GroupSemiProduct, entity.GroupFinishedGood, entity.GroupAuxiliary:
	default:
		BadRequest(c, "Unknown product group: "+group)
		return
	}

	products, err := h.costing.MaterialsByGroup(c.Request.Context(), group)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, products)
}

// PriceHistory returns the quote history of a material, newest first.
// GET /api/v1/materials/:id/prices
func (h *CostingHandler) PriceHistory(c *gin.Context) {
	materialID := c.Param("id")
	if materialID == "" {
		BadRequest(c, "Material ID is required")
		return
	}

	quotes, err := h.costing.PriceHistoryOf(c.Request.Context(), materialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Material not found: "+materialID)
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, quotes)
}

type addPriceRequest struct {
	Price      decimal.Decimal `json:"price" binding:"required"`
	QuotedDate string          `json:"quoted_date"`
}

// AddPrice records a new price quote for a material.
// POST /api/v1/materials/:id/prices
func (h *CostingHandler) AddPrice(c *gin.Context) {
	materialID := c.Param("id")
	if materialID == "" {
		BadRequest(c, "Material ID is required")
		return
	}

	var req addPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !req.Price.IsPositive() {
		BadRequest(c, "price must be positive")
		return
	}
	quotedDate, err := parseDate(req.QuotedDate)
	if err != nil {
		BadRequest(c, "Invalid quoted_date, expected yyyy-mm-dd")
		return
	}
	if quotedDate.IsZero() {
		quotedDate = time.Now()
	}

	quote, err := h.costing.AddQuote(c.Request.Context(), materialID, req.Price, quotedDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Material not found: "+materialID)
			return
		}
		InternalError(c, err.Error())
		return
	}
	Created(c, quote)
}

type recalculateRequest struct {
	PricingDate string `json:"pricing_date"`
}

// RecalculateCosts cascades a material price change through its consumers.
// POST /api/v1/materials/:id/recalculate-costs
func (h *CostingHandler) RecalculateCosts(c *gin.Context) {
	materialID := c.Param("id")
	if materialID == "" {
		BadRequest(c, "Material ID is required")
		return
	}

	var req recalculateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	asOf, err := parseDate(req.PricingDate)
	if err != nil {
		BadRequest(c, "Invalid pricing_date, expected yyyy-mm-dd")
		return
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	result, err := h.cascade.RecalculateCosts(c.Request.Context(), materialID, asOf)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Material not found: "+materialID)
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, result)
}
