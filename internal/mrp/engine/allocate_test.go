package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocateSpillsToNextDay(t *testing.T) {
	// net demand 180 due 2025-02-10, capacity 100/day, one day lead time:
	// production starts on 02-09 and the remainder lands on 02-10
	entries := []DemandEntry{{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "300")}}

	res, err := Allocate(context.Background(), memCapacity{}, "p", d(t, "180"), entries,
		day(t, "2025-02-01"), day(t, "2025-02-28"), 1, d(t, "100"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if len(res.Allocations) != 2 {
		t.Fatalf("got %d allocations, want 2: %+v", len(res.Allocations), res.Allocations)
	}
	if !res.Allocations[0].Date.Equal(day(t, "2025-02-09")) {
		t.Fatalf("first allocation on %s, want 2025-02-09", res.Allocations[0].Date)
	}
	requireEqual(t, res.Allocations[0].Quantity, "100", "first day")
	if !res.Allocations[1].Date.Equal(day(t, "2025-02-10")) {
		t.Fatalf("second allocation on %s, want 2025-02-10", res.Allocations[1].Date)
	}
	requireEqual(t, res.Allocations[1].Quantity, "80", "second day")
	requireEqual(t, res.Backlog, "0", "backlog")
}

func TestAllocateReportsBacklogWhenRangeExhausted(t *testing.T) {
	entries := []DemandEntry{{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "180")}}

	// only 02-09 and 02-10 are inside the range, 100/day
	res, err := Allocate(context.Background(), memCapacity{}, "p", d(t, "180"), entries,
		day(t, "2025-02-09"), day(t, "2025-02-09"), 1, d(t, "100"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	requireEqual(t, res.Backlog, "80", "backlog beyond range")

	total := decimal.Zero
	for _, a := range res.Allocations {
		total = total.Add(a.Quantity)
	}
	if !total.Add(res.Backlog).Equal(d(t, "180")) {
		t.Fatalf("allocated %s + backlog %s != net demand 180", total, res.Backlog)
	}
}

func TestAllocateRespectsCapacityRows(t *testing.T) {
	entries := []DemandEntry{
		{ProductID: "p", RequiredDate: day(t, "2025-02-10"), Quantity: d(t, "90")},
		{ProductID: "p", RequiredDate: day(t, "2025-02-11"), Quantity: d(t, "90")},
	}
	capBook := memCapacity{"p": {
		"2025-02-09": d(t, "40"),
		"2025-02-10": d(t, "40"),
	}}

	res, err := Allocate(context.Background(), capBook, "p", d(t, "180"), entries,
		day(t, "2025-02-01"), day(t, "2025-02-28"), 1, d(t, "1000"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	for _, a := range res.Allocations {
		limit, _ := capBook.DailyLimit(context.Background(), "p", a.Date)
		if limit != nil && a.Quantity.GreaterThan(*limit) {
			t.Fatalf("allocation %s on %s exceeds capacity %s", a.Quantity, a.Date, limit)
		}
	}

	total := decimal.Zero
	for _, a := range res.Allocations {
		total = total.Add(a.Quantity)
	}
	if !total.Add(res.Backlog).Equal(d(t, "180")) {
		t.Fatalf("conservation violated: allocated %s, backlog %s", total, res.Backlog)
	}
}

func TestAllocateServesEarliestDeadlineFirst(t *testing.T) {
	entries := []DemandEntry{
		{ProductID: "p", RequiredDate: day(t, "2025-02-20"), Quantity: d(t, "100")},
		{ProductID: "p", RequiredDate: day(t, "2025-02-05"), Quantity: d(t, "100")},
	}

	// stock covered 100 of the 200 gross: only the earliest entry gets produced
	res, err := Allocate(context.Background(), memCapacity{}, "p", d(t, "100"), entries,
		day(t, "2025-02-01"), day(t, "2025-02-28"), 1, d(t, "1000"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(res.Allocations) != 1 {
		t.Fatalf("got %d allocations, want 1", len(res.Allocations))
	}
	if !res.Allocations[0].Date.Equal(day(t, "2025-02-04")) {
		t.Fatalf("allocation on %s, want 2025-02-04 (earliest deadline minus lead)", res.Allocations[0].Date)
	}
}

func TestAllocateZeroNetDemand(t *testing.T) {
	res, err := Allocate(context.Background(), memCapacity{}, "p", decimal.Zero, nil,
		day(t, "2025-02-01"), day(t, "2025-02-28"), 1, d(t, "100"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(res.Allocations) != 0 || !res.Backlog.Equal(decimal.Zero) {
		t.Fatalf("zero demand produced %+v", res)
	}
}

func TestAllocateClipsLeadTimeToRangeStart(t *testing.T) {
	entries := []DemandEntry{{ProductID: "p", RequiredDate: day(t, "2025-02-01"), Quantity: d(t, "50")}}

	res, err := Allocate(context.Background(), memCapacity{}, "p", d(t, "50"), entries,
		day(t, "2025-02-01"), day(t, "2025-02-28"), 3, d(t, "100"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if !res.Allocations[0].Date.Equal(day(t, "2025-02-01")) {
		t.Fatalf("allocation on %s, want clipped to range start 2025-02-01", res.Allocations[0].Date)
	}
}
