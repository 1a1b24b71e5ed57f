package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// NetResult is the netted demand of one product over a date range.
type NetResult struct {
	ProductID string          `json:"product_id"`
	Gross     decimal.Decimal `json:"gross_qty"`
	OnHand    decimal.Decimal `json:"available_stock"`
	Net       decimal.Decimal `json:"net_qty"`
}

// AggregateDemand sums demand entries per product within [from, to],
// dropping zero and negative lines. Entries outside the range are ignored;
// a zero from/to bound disables that side of the filter.
func AggregateDemand(entries []DemandEntry, from, to time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if !e.Quantity.IsPositive() {
			continue
		}
		day := Day(e.RequiredDate)
		if !from.IsZero() && day.Before(Day(from)) {
			continue
		}
		if !to.IsZero() && day.After(Day(to)) {
			continue
		}
		totals[e.ProductID] = totals[e.ProductID].Add(e.Quantity)
	}
	return totals
}

// NetRequirement nets gross demand for a product against on-hand stock in
// warehouses matching the product group (BTP demand against BTP warehouses,
// everything else against finished-goods warehouses). The result is floored
// at zero: surplus stock never produces negative demand.
func NetRequirement(ctx context.Context, inv Inventory, product *Product, entries []DemandEntry, from, to time.Time) (*NetResult, error) {
	gross := decimal.Zero
	for pid, qty := range AggregateDemand(entries, from, to) {
		if pid == product.ID {
			gross = qty
		}
	}

	onHand, err := inv.OnHand(ctx, product.ID, WarehouseTypeFor(product.Group))
	if err != nil {
		return nil, err
	}

	net := gross.Sub(onHand)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return &NetResult{ProductID: product.ID, Gross: gross, OnHand: onHand, Net: net}, nil
}

// SortByRequiredDate orders demand entries by ascending required date,
// keeping the input slice untouched.
func SortByRequiredDate(entries []DemandEntry) []DemandEntry {
	out := make([]DemandEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequiredDate.Before(out[j].RequiredDate)
	})
	return out
}
