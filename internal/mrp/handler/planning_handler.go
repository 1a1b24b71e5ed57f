package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/service"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PlanningService is the planning surface the handler depends on, implemented
// by service.PlanningService.
type PlanningService interface {
	MaterialRequirementPlan(ctx context.Context, from, to time.Time, deductStock bool) (*service.MaterialPlan, error)
	ExportMaterialRequirementPlan(ctx context.Context, from, to time.Time, deductStock bool) (*excelize.File, string, error)
	SemiProductDemand(ctx context.Context, productID string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error)
	SemiProductDemandByCode(ctx context.Context, code string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error)
	Summary(ctx context.Context, from, to time.Time) (*service.PlanningSummary, error)
	DailyPivot(ctx context.Context, date time.Time) (*service.MaterialPlan, error)
	GenerateProductionOrders(ctx context.Context, from, to time.Time, autoDeductStock, regenerate bool) (*service.GenerateResult, error)
	OrderRequirements(ctx context.Context, orderID string) (*service.MaterialPlan, error)
	SalesOrder(ctx context.Context, orderID string) (*entity.SalesOrder, error)
	PlanDays(ctx context.Context, from, to time.Time) ([]entity.ProductionPlanDay, error)
	SetCapacityLimit(ctx context.Context, productID string, date time.Time, maxQty decimal.Decimal) error
}

// PlanningHandler serves the planning endpoints.
type PlanningHandler struct {
	svc PlanningService
}

func NewPlanningHandler(svc PlanningService) *PlanningHandler {
	return &PlanningHandler{svc: svc}
}

type planRangeRequest struct {
	StartDate   string `json:"start_date" form:"start_date"`
	EndDate     string `json:"end_date" form:"end_date"`
	DeductStock bool   `json:"deduct_stock" form:"deduct_stock"`
}

func (r *planRangeRequest) dates() (time.Time, time.Time, error) {
	from, err := parseDate(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date, expected yyyy-mm-dd")
	}
	to, err := parseDate(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date, expected yyyy-mm-dd")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date")
	}
	return from, to, nil
}

func bindPlanRange(c *gin.Context) (*planRangeRequest, error) {
	var req planRangeRequest
	if c.Request.Method == "GET" {
		if err := c.ShouldBindQuery(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// MaterialRequirement computes the requirement plan over production orders.
// GET|POST /api/v1/planning/material-requirement
func (h *PlanningHandler) MaterialRequirement(c *gin.Context) {
	req, err := bindPlanRange(c)
	if err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	from, to, err := req.dates()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	plan, err := h.svc.MaterialRequirementPlan(c.Request.Context(), from, to, req.DeductStock)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, plan)
}

// Export streams the requirement plan as an xlsx workbook.
// GET /api/v1/planning/material-requirement/export
func (h *PlanningHandler) Export(c *gin.Context) {
	req, err := bindPlanRange(c)
	if err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	from, to, err := req.dates()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	file, filename, err := h.svc.ExportMaterialRequirementPlan(c.Request.Context(), from, to, req.DeductStock)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := file.Write(c.Writer); err != nil {
		InternalError(c, "Failed to write workbook: "+err.Error())
	}
}

type btpDemandRequest struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
}

// BTPDemand returns the recursive semi-product demand of a product, resolved
// by ID or by business code.
// POST /api/v1/planning/btp-demand
func (h *PlanningHandler) BTPDemand(c *gin.Context) {
	var req btpDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.ProductID == "" && req.ProductCode == "" {
		BadRequest(c, "product_id or product_code is required")
		return
	}
	if !req.PlannedQty.IsPositive() {
		BadRequest(c, "planned_qty must be positive")
		return
	}

	var (
		lines []engine.SemiRequirement
		err   error
	)
	if req.ProductID != "" {
		lines, err = h.svc.SemiProductDemand(c.Request.Context(), req.ProductID, req.PlannedQty)
	} else {
		lines, err = h.svc.SemiProductDemandByCode(c.Request.Context(), req.ProductCode, req.PlannedQty)
	}
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrProductNotFound), errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Product not found")
		case engine.IsCycle(err):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, gin.H{"product_id": req.ProductID, "product_code": req.ProductCode, "planned_qty": req.PlannedQty, "semi_products": lines})
}

// Summary rolls a date range up into planning totals.
// GET /api/v1/planning/summary?start_date=&end_date=
func (h *PlanningHandler) Summary(c *gin.Context) {
	req, err := bindPlanRange(c)
	if err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	from, to, err := req.dates()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), from, to)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, summary)
}

// Pivot returns single-date material totals.
// GET /api/v1/planning/material-plan/pivot?date=
func (h *PlanningHandler) Pivot(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		BadRequest(c, "Invalid date, expected yyyy-mm-dd")
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	plan, err := h.svc.DailyPivot(c.Request.Context(), date)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, plan)
}

// PlanDays returns the daily plan rows of a date range.
// GET /api/v1/planning/plan-days?start_date=&end_date=
func (h *PlanningHandler) PlanDays(c *gin.Context) {
	req, err := bindPlanRange(c)
	if err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	from, to, err := req.dates()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	days, err := h.svc.PlanDays(c.Request.Context(), from, to)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, days)
}

type capacityLimitRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Date      string          `json:"date" binding:"required"`
	MaxQty    decimal.Decimal `json:"max_qty"`
}

// SetCapacityLimit overrides the daily capacity ceiling of a product.
// POST /api/v1/planning/capacity-limits
func (h *PlanningHandler) SetCapacityLimit(c *gin.Context) {
	var req capacityLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !req.MaxQty.IsPositive() {
		BadRequest(c, "max_qty must be positive")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil || date.IsZero() {
		BadRequest(c, "Invalid date, expected yyyy-mm-dd")
		return
	}

	if err := h.svc.SetCapacityLimit(c.Request.Context(), req.ProductID, date, req.MaxQty); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Product not found: "+req.ProductID)
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"product_id": req.ProductID, "date": req.Date, "max_qty": req.MaxQty})
}

type generateOrdersRequest struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	AutoDeductStock bool   `json:"auto_deduct_stock"`
	Regenerate      bool   `json:"regenerate"`
}

// GenerateOrders creates production orders from open sales-order demand.
// POST /api/v1/production/orders/generate
func (h *PlanningHandler) GenerateOrders(c *gin.Context) {
	var req generateOrdersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	ranged := planRangeRequest{StartDate: req.StartDate, EndDate: req.EndDate}
	from, to, err := ranged.dates()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.GenerateProductionOrders(c.Request.Context(), from, to, req.AutoDeductStock, req.Regenerate)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, result)
}

// OrderRequirements returns the material needs of one production order.
// GET /api/v1/production/orders/:id/material-requirements
func (h *PlanningHandler) OrderRequirements(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		BadRequest(c, "Order ID is required")
		return
	}

	plan, err := h.svc.OrderRequirements(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, engine.ErrProductNotFound):
			NotFound(c, "Production order not found: "+orderID)
		case engine.IsCycle(err):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, plan)
}

// SalesOrder returns one sales order with its demand lines.
// GET /api/v1/sales-orders/:id
func (h *PlanningHandler) SalesOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		BadRequest(c, "Order ID is required")
		return
	}

	order, err := h.svc.SalesOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Sales order not found: "+orderID)
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, order)
}
