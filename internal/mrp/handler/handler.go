package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/service"
)

// Handlers is the HTTP layer of the planning module.
type Handlers struct {
	Costing  *CostingHandler
	Planning *PlanningHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Costing:  NewCostingHandler(svc.Costing, svc.Cascade),
		Planning: NewPlanningHandler(svc.Planning),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success responds 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created responds 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error responds with a business code whose leading digits are the HTTP
// status.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict flags inconsistent data, e.g. a BOM cycle.
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// parseDate reads a yyyy-mm-dd query/body value. An empty string yields the
// zero time so callers can apply their defaults.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}
