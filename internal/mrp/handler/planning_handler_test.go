package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/service"
)

func TestMaterialRequirementPassesRange(t *testing.T) {
	planning := &fakePlanning{plan: &service.MaterialPlan{
		From:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		OrderCount: 2,
		Materials: []service.MaterialPlanLine{
			{MaterialID: "mat-1", MaterialCode: "NVL-M", GrossQty: hd(t, "240"), NetQty: hd(t, "180"), UOM: "kg"},
		},
	}}
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, planning)

	w := doRequest(t, router, "GET",
		"/api/v1/planning/material-requirement?start_date=2025-02-01&end_date=2025-02-28&deduct_stock=true", nil, testToken(t))
	resp := requireCode(t, w, http.StatusOK, 0)

	if !planning.from.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) || !planning.to.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("service called with range %v..%v", planning.from, planning.to)
	}
	if !planning.deductStock {
		t.Error("deduct_stock=true was not passed through")
	}
	data := resp["data"].(map[string]interface{})
	materials := data["material_requirements"].([]interface{})
	if len(materials) != 1 {
		t.Fatalf("material_requirements = %v", materials)
	}
}

func TestMaterialRequirementRejectsInvertedRange(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{})

	w := doRequest(t, router, "GET",
		"/api/v1/planning/material-requirement?start_date=2025-02-28&end_date=2025-02-01", nil, testToken(t))
	requireCode(t, w, http.StatusBadRequest, 40000)
}

func TestExportSetsAttachmentHeaders(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{})

	w := doRequest(t, router, "GET", "/api/v1/planning/material-requirement/export", nil, testToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "ke-hoach-nvl_test.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestBTPDemandRequiresProductReference(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{})

	w := doRequest(t, router, "POST", "/api/v1/planning/btp-demand",
		map[string]string{"planned_qty": "100"}, testToken(t))
	requireCode(t, w, http.StatusBadRequest, 40000)
}

func TestBTPDemandRejectsNonPositiveQty(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{})

	w := doRequest(t, router, "POST", "/api/v1/planning/btp-demand",
		map[string]string{"product_id": "tp-1", "planned_qty": "0"}, testToken(t))
	requireCode(t, w, http.StatusBadRequest, 40000)
}

func TestBTPDemandResolvesByCode(t *testing.T) {
	planning := &fakePlanning{semis: []engine.SemiRequirement{
		{ProductID: "btp-1", ProductCode: "BTP-S", ProductName: "Giò sống", Quantity: hd(t, "150"), BatchCount: hd(t, "8"), UOM: "kg"},
	}}
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, planning)

	w := doRequest(t, router, "POST", "/api/v1/planning/btp-demand",
		map[string]string{"product_code": "TP-F", "planned_qty": "100"}, testToken(t))
	resp := requireCode(t, w, http.StatusOK, 0)

	if planning.productCode != "TP-F" {
		t.Errorf("service called with code %q", planning.productCode)
	}
	if !planning.plannedQty.Equal(hd(t, "100")) {
		t.Errorf("service called with qty %s", planning.plannedQty)
	}
	data := resp["data"].(map[string]interface{})
	semis := data["semi_products"].([]interface{})
	if len(semis) != 1 {
		t.Fatalf("semi_products = %v", semis)
	}
}

func TestBTPDemandUnknownProduct(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{err: engine.ErrProductNotFound})

	w := doRequest(t, router, "POST", "/api/v1/planning/btp-demand",
		map[string]string{"product_id": "ghost", "planned_qty": "100"}, testToken(t))
	requireCode(t, w, http.StatusNotFound, 40400)
}

func TestGenerateOrdersPassesFlags(t *testing.T) {
	planning := &fakePlanning{generated: &service.GenerateResult{
		From:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		Created: []entity.ProductionOrder{{BusinessID: "LSX-20250209-001", ProductID: "tp-1", PlannedQty: hd(t, "50")}},
	}}
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, planning)

	w := doRequest(t, router, "POST", "/api/v1/production/orders/generate",
		map[string]interface{}{
			"start_date":        "2025-02-01",
			"end_date":          "2025-02-28",
			"auto_deduct_stock": true,
			"regenerate":        true,
		}, testToken(t))
	resp := requireCode(t, w, http.StatusCreated, 0)

	if !planning.autoDeduct || !planning.regenerate {
		t.Errorf("flags not passed: autoDeduct=%v regenerate=%v", planning.autoDeduct, planning.regenerate)
	}
	data := resp["data"].(map[string]interface{})
	created := data["created_orders"].([]interface{})
	if len(created) != 1 {
		t.Fatalf("created_orders = %v", created)
	}
	order := created[0].(map[string]interface{})
	if order["business_id"] != "LSX-20250209-001" {
		t.Errorf("business_id = %v", order["business_id"])
	}
}

func TestSetCapacityLimit(t *testing.T) {
	planning := &fakePlanning{}
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, planning)

	w := doRequest(t, router, "POST", "/api/v1/planning/capacity-limits",
		map[string]string{"product_id": "tp-1", "date": "2025-02-10", "max_qty": "80"}, testToken(t))
	requireCode(t, w, http.StatusOK, 0)

	if planning.capacityID != "tp-1" {
		t.Errorf("service called with product %q", planning.capacityID)
	}
	if !planning.capacityDate.Equal(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("service called with date %v", planning.capacityDate)
	}
	if !planning.capacityQty.Equal(hd(t, "80")) {
		t.Errorf("service called with max_qty %s", planning.capacityQty)
	}
}

func TestSetCapacityLimitRejectsNonPositiveQty(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{})

	w := doRequest(t, router, "POST", "/api/v1/planning/capacity-limits",
		map[string]string{"product_id": "tp-1", "date": "2025-02-10", "max_qty": "0"}, testToken(t))
	requireCode(t, w, http.StatusBadRequest, 40000)
}

func TestSalesOrderNotFound(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{err: repository.ErrNotFound})

	w := doRequest(t, router, "GET", "/api/v1/sales-orders/ghost", nil, testToken(t))
	requireCode(t, w, http.StatusNotFound, 40400)
}

func TestOrderRequirementsNotFound(t *testing.T) {
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, &fakePlanning{err: repository.ErrNotFound})

	w := doRequest(t, router, "GET", "/api/v1/production/orders/ghost/material-requirements", nil, testToken(t))
	requireCode(t, w, http.StatusNotFound, 40400)
}

func TestPlanDaysReturnsRows(t *testing.T) {
	planning := &fakePlanning{planDays: []entity.ProductionPlanDay{
		{ID: "day-1", ProductID: "tp-1", ProductionDate: time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), PlannedQty: hd(t, "50"), CapacityMax: hd(t, "50")},
	}}
	router := newTestRouter(&fakeCosting{}, &fakeCascade{}, planning)

	w := doRequest(t, router, "GET",
		"/api/v1/planning/plan-days?start_date=2025-02-01&end_date=2025-02-28", nil, testToken(t))
	resp := requireCode(t, w, http.StatusOK, 0)

	data := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("data = %v", data)
	}
	row := data[0].(map[string]interface{})
	if row["planned_qty"] != "50" {
		t.Errorf("planned_qty = %v", row["planned_qty"])
	}
}
