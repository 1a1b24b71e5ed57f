package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse (`dm_kho`). Type matches the product groups it stores: NVL, BTP,
// TP or Khac.
type Warehouse struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Code     string `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:255;not null"`
	Type     string `json:"type" gorm:"size:20;not null;index"`
	Location string `json:"location" gorm:"size:255"`
	Note     string `json:"note" gorm:"type:text"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// InventorySnapshot (`ton_kho_song`): live stock per product per warehouse,
// maintained by the inventory module. Read-only input to demand netting.
type InventorySnapshot struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	ProductID      string          `json:"product_id" gorm:"size:36;not null;index"`
	WarehouseID    string          `json:"warehouse_id" gorm:"size:36;not null;index"`
	TotalIn        decimal.Decimal `json:"total_in" gorm:"type:decimal(18,3);not null;default:0"`
	TotalOut       decimal.Decimal `json:"total_out" gorm:"type:decimal(18,3);not null;default:0"`
	CurrentQty     decimal.Decimal `json:"current_qty" gorm:"type:decimal(18,3);not null;default:0"`
	InventoryValue decimal.Decimal `json:"inventory_value" gorm:"type:decimal(18,2);not null;default:0"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (InventorySnapshot) TableName() string {
	return "inventory_snapshots"
}
