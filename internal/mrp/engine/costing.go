package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaterialCostLine is one priced material line of a cost breakdown. Priced is
// false when neither a cached edge cost nor a price-history entry existed and
// the line fell back to zero.
type MaterialCostLine struct {
	MaterialID   string          `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UOM          string          `json:"uom"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineCost     decimal.Decimal `json:"line_cost"`
	Priced       bool            `json:"priced"`
}

// LaborCostLine is one labor line of a cost breakdown.
type LaborCostLine struct {
	Equipment       string           `json:"equipment"`
	LaborType       string           `json:"labor_type"`
	DurationMinutes *int             `json:"duration_minutes"`
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	LineCost        decimal.Decimal  `json:"line_cost"`
}

// CostBreakdown is the result of a product cost calculation.
type CostBreakdown struct {
	ProductID    string             `json:"product_id"`
	ProductCode  string             `json:"product_code"`
	ProductName  string             `json:"product_name"`
	PricingDate  time.Time          `json:"pricing_date"`
	MaterialCost decimal.Decimal    `json:"total_material_cost"`
	LaborCost    decimal.Decimal    `json:"total_labor_cost"`
	TotalCost    decimal.Decimal    `json:"total_cost"`
	Materials    []MaterialCostLine `json:"material_details"`
	Labor        []LaborCostLine    `json:"labor_details"`
}

// CostOf computes the cost of one unit of a product as of a date: the BOM is
// exploded for quantity 1, each material line is priced (cached edge cost
// first, then price history, then zero), and the product's labor lines are
// added on top. Pure: no state is mutated.
func CostOf(ctx context.Context, g *Graph, book PriceBook, productID string, asOf time.Time) (*CostBreakdown, error) {
	product, ok := g.Product(productID)
	if !ok {
		return nil, ErrProductNotFound
	}

	requirements, err := Explode(g, productID, decimal.NewFromInt(1), asOf)
	if err != nil {
		return nil, err
	}

	out := &CostBreakdown{
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		PricingDate: asOf,
		Materials:   make([]MaterialCostLine, 0, len(requirements)),
		Labor:       []LaborCostLine{},
	}

	for _, req := range requirements {
		line := MaterialCostLine{
			MaterialID:   req.MaterialID,
			MaterialCode: req.MaterialCode,
			MaterialName: req.MaterialName,
			Quantity:     req.Quantity,
			UOM:          req.UOM,
		}
		switch {
		case req.EdgeCost != nil:
			line.UnitCost = *req.EdgeCost
			line.Priced = true
		default:
			price, ok, perr := PriceOf(ctx, book, req.MaterialID, asOf)
			if perr != nil {
				return nil, perr
			}
			if ok {
				line.UnitCost = price
				line.Priced = true
			}
		}
		line.LineCost = line.Quantity.Mul(line.UnitCost)
		out.MaterialCost = out.MaterialCost.Add(line.LineCost)
		out.Materials = append(out.Materials, line)
	}

	if idx, ok := g.index[productID]; ok {
		for _, labor := range g.nodes[idx].labor {
			line := LaborCostLine{
				Equipment:       labor.Equipment,
				LaborType:       labor.LaborType,
				DurationMinutes: labor.DurationMinutes,
				Quantity:        labor.Quantity,
				UnitCost:        labor.UnitCost,
			}
			line.LineCost = laborLineCost(labor)
			out.LaborCost = out.LaborCost.Add(line.LineCost)
			out.Labor = append(out.Labor, line)
		}
	}

	out.TotalCost = out.MaterialCost.Add(out.LaborCost)
	return out, nil
}

// laborLineCost prefers duration-based costing: minutes/60 × unit cost, else
// quantity × unit cost, else zero.
func laborLineCost(l LaborLine) decimal.Decimal {
	if l.UnitCost == nil {
		return decimal.Zero
	}
	if l.DurationMinutes != nil && *l.DurationMinutes > 0 {
		minutes := decimal.NewFromInt(int64(*l.DurationMinutes))
		return minutes.Div(decimal.NewFromInt(60)).Mul(*l.UnitCost)
	}
	if l.Quantity != nil {
		return l.Quantity.Mul(*l.UnitCost)
	}
	return decimal.Zero
}
