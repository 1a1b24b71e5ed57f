package engine

import (
	"context"
	"testing"
)

func TestCostOfSimpleMaterial(t *testing.T) {
	// 2 kg of NVL-M per unit, M quoted at 10000/kg on 2025-01-01
	cat := newMemCatalog()
	cat.addProduct(Product{ID: "f", Code: "TP-F", Name: "Chả cá", Group: "TP"})
	cat.addProduct(Product{ID: "m", Code: "NVL-M", Name: "Thịt heo", Group: "NVL"})
	cat.materials["f"] = []MaterialEdge{{MaterialID: "m", Quantity: d(t, "2"), UOM: "kg"}}

	prices := memPriceBook{"m": {{QuotedDate: day(t, "2025-01-01"), Price: d(t, "10000")}}}

	g, err := LoadGraph(context.Background(), cat, "f")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	cost, err := CostOf(context.Background(), g, prices, "f", day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}

	requireEqual(t, cost.MaterialCost, "20000", "material cost")
	requireEqual(t, cost.LaborCost, "0", "labor cost")
	requireEqual(t, cost.TotalCost, "20000", "total cost")
	if !cost.Materials[0].Priced {
		t.Fatal("line should be flagged as priced")
	}
}

func TestCostOfPrefersEdgeCachedCost(t *testing.T) {
	cat := newMemCatalog()
	cat.addProduct(Product{ID: "f", Code: "TP-F", Group: "TP"})
	cat.addProduct(Product{ID: "m", Code: "NVL-M", Group: "NVL"})
	cat.materials["f"] = []MaterialEdge{{MaterialID: "m", Quantity: d(t, "1"), UOM: "kg", Cost: dp(t, "8000")}}

	// the price book disagrees; the cached edge cost wins
	prices := memPriceBook{"m": {{QuotedDate: day(t, "2025-01-01"), Price: d(t, "10000")}}}

	g, _ := LoadGraph(context.Background(), cat, "f")
	cost, err := CostOf(context.Background(), g, prices, "f", day(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	requireEqual(t, cost.TotalCost, "8000", "total cost")
}

func TestCostOfUnpricedLineIsZeroAndFlagged(t *testing.T) {
	cat := newMemCatalog()
	cat.addProduct(Product{ID: "f", Code: "TP-F", Group: "TP"})
	cat.addProduct(Product{ID: "m", Code: "NVL-M", Group: "NVL"})
	cat.materials["f"] = []MaterialEdge{{MaterialID: "m", Quantity: d(t, "3"), UOM: "kg"}}

	g, _ := LoadGraph(context.Background(), cat, "f")
	cost, err := CostOf(context.Background(), g, memPriceBook{}, "f", day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	requireEqual(t, cost.TotalCost, "0", "total cost")
	if cost.Materials[0].Priced {
		t.Fatal("line without any price source must be flagged priced=false")
	}
}

func TestCostOfLaborLines(t *testing.T) {
	cat := newMemCatalog()
	cat.addProduct(Product{ID: "f", Code: "TP-F", Group: "TP"})
	thirty := 30
	cat.labor["f"] = []LaborLine{
		// 30 minutes at 60000/hour = 30000
		{Equipment: "Máy xay", LaborType: "vận hành", DurationMinutes: &thirty, UnitCost: dp(t, "60000")},
		// 2 person-shifts at 150000 each = 300000
		{LaborType: "đóng gói", Quantity: dp(t, "2"), UnitCost: dp(t, "150000")},
		// no unit cost: contributes nothing
		{LaborType: "kiểm tra", Quantity: dp(t, "1")},
	}

	g, _ := LoadGraph(context.Background(), cat, "f")
	cost, err := CostOf(context.Background(), g, memPriceBook{}, "f", day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	requireEqual(t, cost.LaborCost, "330000", "labor cost")
	requireEqual(t, cost.TotalCost, "330000", "total cost")
	if len(cost.Labor) != 3 {
		t.Fatalf("labor breakdown has %d lines, want 3", len(cost.Labor))
	}
}

func TestCostAdditivityAndIdempotence(t *testing.T) {
	cat := demoCatalog(t)
	sixty := 60
	cat.labor["f"] = []LaborLine{{LaborType: "vận hành", DurationMinutes: &sixty, UnitCost: dp(t, "45000")}}
	prices := memPriceBook{"m": {{QuotedDate: day(t, "2024-12-01"), Price: d(t, "10000")}}}

	g, err := LoadGraph(context.Background(), cat, "f")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	first, err := CostOf(context.Background(), g, prices, "f", day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	if !first.TotalCost.Equal(first.MaterialCost.Add(first.LaborCost)) {
		t.Fatalf("total %s != material %s + labor %s", first.TotalCost, first.MaterialCost, first.LaborCost)
	}

	second, err := CostOf(context.Background(), g, prices, "f", day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	if !first.TotalCost.Equal(second.TotalCost) {
		t.Fatalf("repeated calculation diverged: %s then %s", first.TotalCost, second.TotalCost)
	}
}

func TestPriceOfPicksLatestQuoteBeforeDate(t *testing.T) {
	prices := memPriceBook{"m": {
		{QuotedDate: day(t, "2025-03-01"), Price: d(t, "12000")},
		{QuotedDate: day(t, "2025-01-01"), Price: d(t, "10000")},
		{QuotedDate: day(t, "2025-06-01"), Price: d(t, "15000")},
	}}

	price, ok, err := PriceOf(context.Background(), prices, "m", day(t, "2025-04-15"))
	if err != nil || !ok {
		t.Fatalf("PriceOf: ok=%v err=%v", ok, err)
	}
	requireEqual(t, price, "12000", "price as of April")

	_, ok, err = PriceOf(context.Background(), prices, "m", day(t, "2024-01-01"))
	if err != nil {
		t.Fatalf("PriceOf: %v", err)
	}
	if ok {
		t.Fatal("no quote exists before 2024-01-01, lookup must report absent")
	}
}
