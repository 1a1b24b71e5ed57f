package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linhcentrio/16Food-QLSX/internal/middleware"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/service"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const testJWTSecret = "qlsx-test-jwt-secret"

// fakeCosting implements CostingService, returning canned results and
// recording the arguments of the last call.
type fakeCosting struct {
	breakdown *engine.CostBreakdown
	products  []entity.Product
	quotes    []entity.MaterialPriceHistory
	err       error

	productID  string
	asOf       time.Time
	group      string
	price      decimal.Decimal
	quotedDate time.Time
}

func (f *fakeCosting) CostCalculation(_ context.Context, productID string, asOf time.Time) (*engine.CostBreakdown, error) {
	f.productID, f.asOf = productID, asOf
	return f.breakdown, f.err
}

func (f *fakeCosting) MaterialsByGroup(_ context.Context, group string) ([]entity.Product, error) {
	f.group = group
	return f.products, f.err
}

func (f *fakeCosting) PriceHistoryOf(_ context.Context, materialID string) ([]entity.MaterialPriceHistory, error) {
	f.productID = materialID
	return f.quotes, f.err
}

func (f *fakeCosting) AddQuote(_ context.Context, materialID string, price decimal.Decimal, quotedDate time.Time) (*entity.MaterialPriceHistory, error) {
	f.productID, f.price, f.quotedDate = materialID, price, quotedDate
	if f.err != nil {
		return nil, f.err
	}
	return &entity.MaterialPriceHistory{ID: "quote-1", MaterialID: materialID, Price: price, QuotedDate: quotedDate}, nil
}

// fakeCascade implements CascadeService.
type fakeCascade struct {
	result *engine.CascadeResult
	err    error

	materialID string
	asOf       time.Time
}

func (f *fakeCascade) RecalculateCosts(_ context.Context, materialID string, asOf time.Time) (*engine.CascadeResult, error) {
	f.materialID, f.asOf = materialID, asOf
	return f.result, f.err
}

// fakePlanning implements PlanningService.
type fakePlanning struct {
	plan       *service.MaterialPlan
	summary    *service.PlanningSummary
	semis      []engine.SemiRequirement
	generated  *service.GenerateResult
	planDays   []entity.ProductionPlanDay
	salesOrder *entity.SalesOrder
	err        error

	from, to     time.Time
	deductStock  bool
	autoDeduct   bool
	regenerate   bool
	productID    string
	productCode  string
	plannedQty   decimal.Decimal
	orderID      string
	capacityID   string
	capacityDate time.Time
	capacityQty  decimal.Decimal
}

func (f *fakePlanning) MaterialRequirementPlan(_ context.Context, from, to time.Time, deductStock bool) (*service.MaterialPlan, error) {
	f.from, f.to, f.deductStock = from, to, deductStock
	return f.plan, f.err
}

func (f *fakePlanning) ExportMaterialRequirementPlan(_ context.Context, from, to time.Time, deductStock bool) (*excelize.File, string, error) {
	f.from, f.to, f.deductStock = from, to, deductStock
	if f.err != nil {
		return nil, "", f.err
	}
	return excelize.NewFile(), "ke-hoach-nvl_test.xlsx", nil
}

func (f *fakePlanning) SemiProductDemand(_ context.Context, productID string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error) {
	f.productID, f.plannedQty = productID, plannedQty
	return f.semis, f.err
}

func (f *fakePlanning) SemiProductDemandByCode(_ context.Context, code string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error) {
	f.productCode, f.plannedQty = code, plannedQty
	return f.semis, f.err
}

func (f *fakePlanning) Summary(_ context.Context, from, to time.Time) (*service.PlanningSummary, error) {
	f.from, f.to = from, to
	return f.summary, f.err
}

func (f *fakePlanning) DailyPivot(_ context.Context, date time.Time) (*service.MaterialPlan, error) {
	f.from = date
	return f.plan, f.err
}

func (f *fakePlanning) GenerateProductionOrders(_ context.Context, from, to time.Time, autoDeductStock, regenerate bool) (*service.GenerateResult, error) {
	f.from, f.to, f.autoDeduct, f.regenerate = from, to, autoDeductStock, regenerate
	return f.generated, f.err
}

func (f *fakePlanning) OrderRequirements(_ context.Context, orderID string) (*service.MaterialPlan, error) {
	f.orderID = orderID
	return f.plan, f.err
}

func (f *fakePlanning) SalesOrder(_ context.Context, orderID string) (*entity.SalesOrder, error) {
	f.orderID = orderID
	return f.salesOrder, f.err
}

func (f *fakePlanning) PlanDays(_ context.Context, from, to time.Time) ([]entity.ProductionPlanDay, error) {
	f.from, f.to = from, to
	return f.planDays, f.err
}

func (f *fakePlanning) SetCapacityLimit(_ context.Context, productID string, date time.Time, maxQty decimal.Decimal) error {
	f.capacityID, f.capacityDate, f.capacityQty = productID, date, maxQty
	return f.err
}

// newTestRouter wires the handlers behind the same routes and JWT middleware
// the server registers.
func newTestRouter(costing CostingService, cascade CascadeService, planning PlanningService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	ch := NewCostingHandler(costing, cascade)
	ph := NewPlanningHandler(planning)

	v1 := r.Group("/api/v1", middleware.JWTAuth(testJWTSecret))
	{
		v1.GET("/products/:id/cost-calculation", ch.CostCalculation)
		v1.GET("/materials", ch.ListMaterials)
		v1.GET("/materials/:id/prices", ch.PriceHistory)
		v1.POST("/materials/:id/prices", ch.AddPrice)
		v1.POST("/materials/:id/recalculate-costs", ch.RecalculateCosts)
		v1.GET("/sales-orders/:id", ph.SalesOrder)
		v1.GET("/production/orders/:id/material-requirements", ph.OrderRequirements)
		v1.POST("/production/orders/generate", ph.GenerateOrders)
		v1.GET("/planning/material-requirement", ph.MaterialRequirement)
		v1.POST("/planning/material-requirement", ph.MaterialRequirement)
		v1.GET("/planning/material-requirement/export", ph.Export)
		v1.POST("/planning/btp-demand", ph.BTPDemand)
		v1.GET("/planning/summary", ph.Summary)
		v1.GET("/planning/material-plan/pivot", ph.Pivot)
		v1.GET("/planning/plan-days", ph.PlanDays)
		v1.POST("/planning/capacity-limits", ph.SetCapacityLimit)
	}
	return r
}

func testToken(t *testing.T) string {
	t.Helper()
	claims := &middleware.JWTClaims{
		UserID: "test-user-001",
		Name:   "Test Planner",
		Roles:  []string{"planner"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response %q: %v", w.Body.String(), err)
	}
	return resp
}

func requireCode(t *testing.T, w *httptest.ResponseRecorder, status int, code float64) map[string]interface{} {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	resp := parseResponse(t, w)
	if resp["code"] != code {
		t.Fatalf("business code = %v, want %v: %s", resp["code"], code, w.Body.String())
	}
	return resp
}

func hd(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return v
}
