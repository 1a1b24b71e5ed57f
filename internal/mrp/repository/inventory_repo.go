package repository

import (
	"context"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryRepository reads live stock. It satisfies engine.Inventory by
// summing snapshot rows across every warehouse of the requested type.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) OnHand(ctx context.Context, productID, warehouseType string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&entity.InventorySnapshot{}).
		Select("SUM(inventory_snapshots.current_qty)").
		Joins("JOIN warehouses ON warehouses.id = inventory_snapshots.warehouse_id").
		Where("inventory_snapshots.product_id = ? AND warehouses.type = ?", productID, warehouseType).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// OnHandByType returns current stock per product across every warehouse of
// one type, for bulk netting in a planning run.
func (r *InventoryRepository) OnHandByType(ctx context.Context, warehouseType string) (map[string]decimal.Decimal, error) {
	type row struct {
		ProductID string
		Qty       decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.InventorySnapshot{}).
		Select("inventory_snapshots.product_id AS product_id, SUM(inventory_snapshots.current_qty) AS qty").
		Joins("JOIN warehouses ON warehouses.id = inventory_snapshots.warehouse_id").
		Where("warehouses.type = ?", warehouseType).
		Group("inventory_snapshots.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stock := make(map[string]decimal.Decimal, len(rows))
	for _, item := range rows {
		stock[item.ProductID] = item.Qty
	}
	return stock, nil
}
