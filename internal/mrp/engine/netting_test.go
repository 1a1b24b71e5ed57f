package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNetRequirementSubtractsStock(t *testing.T) {
	// two orders totalling 300 on 2025-02-10, 120 on hand
	product := &Product{ID: "p", Code: "TP-P", Group: "TP"}
	entries := []DemandEntry{
		{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "180")},
		{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "120")},
	}
	inv := memInventory{"p": {"TP": d(t, "120")}}

	res, err := NetRequirement(context.Background(), inv, product, entries, day(t, "2025-02-10"), day(t, "2025-02-10"))
	if err != nil {
		t.Fatalf("NetRequirement: %v", err)
	}
	requireEqual(t, res.Gross, "300", "gross")
	requireEqual(t, res.OnHand, "120", "on hand")
	requireEqual(t, res.Net, "180", "net")
}

func TestNetRequirementFlooredAtZero(t *testing.T) {
	product := &Product{ID: "p", Code: "TP-P", Group: "TP"}
	entries := []DemandEntry{{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "50")}}
	inv := memInventory{"p": {"TP": d(t, "9999")}}

	res, err := NetRequirement(context.Background(), inv, product, entries, day(t, "2025-02-01"), day(t, "2025-02-28"))
	if err != nil {
		t.Fatalf("NetRequirement: %v", err)
	}
	if !res.Net.Equal(decimal.Zero) {
		t.Fatalf("net = %s, want 0 regardless of surplus stock", res.Net)
	}
}

func TestNetRequirementMatchesWarehouseType(t *testing.T) {
	product := &Product{ID: "s", Code: "BTP-S", Group: "BTP"}
	entries := []DemandEntry{{ProductID: "s", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "100")}}
	// stock exists only in a finished-goods warehouse: must not offset BTP demand
	inv := memInventory{"s": {"TP": d(t, "100"), "BTP": d(t, "30")}}

	res, err := NetRequirement(context.Background(), inv, product, entries, day(t, "2025-02-01"), day(t, "2025-02-28"))
	if err != nil {
		t.Fatalf("NetRequirement: %v", err)
	}
	requireEqual(t, res.Net, "70", "net against BTP warehouses only")
}

func TestAggregateDemandFiltersRangeAndJunk(t *testing.T) {
	entries := []DemandEntry{
		{ProductID: "p", RequiredDate: day(t, "2025-02-05"), Quantity: d(t, "10")},
		{ProductID: "p", RequiredDate: day(t, "2025-02-20"), Quantity: d(t, "40")},
		{ProductID: "p", RequiredDate: day(t, "2025-03-05"), Quantity: d(t, "99")},   // outside range
		{ProductID: "p", RequiredDate: day(t, "2025-02-06"), Quantity: decimal.Zero}, // dropped
		{ProductID: "p", RequiredDate: day(t, "2025-02-07"), Quantity: d(t, "-5")},   // dropped
		{ProductID: "q", RequiredDate: day(t, "2025-02-07"), Quantity: d(t, "7")},
	}

	totals := AggregateDemand(entries, day(t, "2025-02-01"), day(t, "2025-02-28"))
	requireEqual(t, totals["p"], "50", "aggregated demand for p")
	requireEqual(t, totals["q"], "7", "aggregated demand for q")
}
