// Package engine implements the BOM explosion, costing and
// material-requirements-planning core. It operates on an in-memory graph
// loaded through narrow collaborator interfaces and performs no persistence
// of its own, so every computation here is testable against plain fixtures.
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the engine's view of a catalog product.
type Product struct {
	ID        string
	Code      string
	Name      string
	Group     string // NVL, BTP, TP, Phu_lieu
	UOM       string
	BatchSize *decimal.Decimal // units per batch, nil when unspecified
	CostPrice *decimal.Decimal
}

// MaterialEdge is a direct material requirement of a product. For semi-product
// parents the quantity is per batch, otherwise per unit.
type MaterialEdge struct {
	MaterialID    string
	Quantity      decimal.Decimal
	UOM           string
	Cost          *decimal.Decimal // cached unit cost on the BOM row
	EffectiveDate *time.Time       // nil = always effective
}

// ComponentEdge links a product to a semi-product component.
type ComponentEdge struct {
	ComponentID       string
	Quantity          decimal.Decimal
	UOM               string
	OperationSequence int
}

// LaborLine is a labor/equipment cost line of a product.
type LaborLine struct {
	Equipment       string
	LaborType       string
	Quantity        *decimal.Decimal
	DurationMinutes *int
	UnitCost        *decimal.Decimal
}

// PricePoint is one quoted price of a material.
type PricePoint struct {
	QuotedDate time.Time
	Price      decimal.Decimal
}

// DemandEntry is gross demand for a product on a required date.
type DemandEntry struct {
	ProductID    string
	RequiredDate time.Time
	Quantity     decimal.Decimal
}

// Catalog reads product master data and BOM edges.
type Catalog interface {
	Product(ctx context.Context, id string) (*Product, error)
	MaterialEdges(ctx context.Context, productID string) ([]MaterialEdge, error)
	ComponentEdges(ctx context.Context, productID string) ([]ComponentEdge, error)
	// MaterialConsumers returns the IDs of products with a material edge to
	// the given material; ComponentConsumers the IDs of products assembled
	// from the given component.
	MaterialConsumers(ctx context.Context, materialID string) ([]string, error)
	ComponentConsumers(ctx context.Context, componentID string) ([]string, error)
	LaborLines(ctx context.Context, productID string) ([]LaborLine, error)
}

// PriceBook reads material price history.
type PriceBook interface {
	PriceHistory(ctx context.Context, materialID string) ([]PricePoint, error)
}

// Inventory reads on-hand stock per warehouse type.
type Inventory interface {
	OnHand(ctx context.Context, productID, warehouseType string) (decimal.Decimal, error)
}

// CapacityBook reads per-day capacity ceilings. A nil limit means no explicit
// row exists for the (product, day) pair.
type CapacityBook interface {
	DailyLimit(ctx context.Context, productID string, day time.Time) (*decimal.Decimal, error)
}

// WarehouseTypeFor maps a product group to the warehouse type its demand nets
// against: semi-products against BTP warehouses, everything else against
// finished-goods warehouses. Raw-material netting uses NVL directly.
func WarehouseTypeFor(group string) string {
	if group == "BTP" {
		return "BTP"
	}
	return "TP"
}

// Day truncates a timestamp to a UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
