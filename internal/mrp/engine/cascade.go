package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CostUpdate records one product whose cost was recomputed during a cascade.
type CostUpdate struct {
	ProductID   string           `json:"product_id"`
	ProductCode string           `json:"product_code"`
	ProductName string           `json:"product_name"`
	OldCost     *decimal.Decimal `json:"old_cost_price"`
	NewCost     decimal.Decimal  `json:"new_cost_price"`
	TriggeredBy string           `json:"triggered_by,omitempty"` // code of the component that propagated the change
}

// SkippedProduct records a product whose recomputation failed; the cascade
// continues past it.
type SkippedProduct struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// CascadeResult is the outcome of a price-change cascade. Updated holds the
// direct consumers of the changed material, CascadeUpdated every transitive
// consumer reached beyond that.
type CascadeResult struct {
	MaterialID     string           `json:"material_id"`
	Updated        []CostUpdate     `json:"updated_products"`
	CascadeUpdated []CostUpdate     `json:"cascade_updated"`
	Skipped        []SkippedProduct `json:"skipped,omitempty"`
}

// Recalculate recomputes product costs after a material price change,
// propagating breadth-first through reverse BOM edges to a fixed point: a
// product whose recomputed cost is unchanged stops the propagation through
// it, and no product is recomputed twice in one cascade. Per-product failures
// are recorded and skipped rather than aborting the run.
func Recalculate(ctx context.Context, cat Catalog, book PriceBook, materialID string, asOf time.Time) (*CascadeResult, error) {
	result := &CascadeResult{
		MaterialID:     materialID,
		Updated:        []CostUpdate{},
		CascadeUpdated: []CostUpdate{},
	}

	type work struct {
		productID string
		trigger   string // product code that propagated the change, empty on tier one
	}

	firstTier, err := cat.MaterialConsumers(ctx, materialID)
	if err != nil {
		return nil, err
	}

	queue := make([]work, 0, len(firstTier))
	visited := make(map[string]bool)
	for _, id := range firstTier {
		queue = append(queue, work{productID: id})
		visited[id] = true
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		g, err := LoadGraph(ctx, cat, item.productID)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedProduct{ProductID: item.productID, Reason: err.Error()})
			continue
		}
		breakdown, err := CostOf(ctx, g, book, item.productID, asOf)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedProduct{ProductID: item.productID, Reason: err.Error()})
			continue
		}

		product, _ := g.Product(item.productID)
		update := CostUpdate{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			OldCost:     product.CostPrice,
			NewCost:     breakdown.TotalCost,
			TriggeredBy: item.trigger,
		}
		if item.trigger == "" {
			result.Updated = append(result.Updated, update)
		} else {
			result.CascadeUpdated = append(result.CascadeUpdated, update)
		}

		if product.CostPrice != nil && product.CostPrice.Equal(breakdown.TotalCost) {
			// cost unchanged, nothing further up can change either
			continue
		}

		consumers, err := consumersOf(ctx, cat, item.productID)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedProduct{ProductID: item.productID, Reason: err.Error()})
			continue
		}
		for _, id := range consumers {
			if visited[id] {
				continue
			}
			visited[id] = true
			queue = append(queue, work{productID: id, trigger: product.Code})
		}
	}

	return result, nil
}

func consumersOf(ctx context.Context, cat Catalog, productID string) ([]string, error) {
	byComponent, err := cat.ComponentConsumers(ctx, productID)
	if err != nil {
		return nil, err
	}
	byMaterial, err := cat.MaterialConsumers(ctx, productID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(byComponent)+len(byMaterial))
	out := make([]string, 0, len(byComponent)+len(byMaterial))
	for _, id := range append(byComponent, byMaterial...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
