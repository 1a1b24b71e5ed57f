package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production order types: SP produces a finished good, BTP produces a
// semi-product batch.
const (
	OrderTypeProduct     = "SP"
	OrderTypeSemiProduct = "BTP"
)

const (
	ProductionOrderStatusNew        = "new"
	ProductionOrderStatusInProgress = "in_progress"
	ProductionOrderStatusDone       = "done"
	ProductionOrderStatusCancelled  = "cancelled"
)

// ProductionOrder (`lenh_sx`). BusinessID follows LSX-yyyyMMdd-NNN.
type ProductionOrder struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	BusinessID      string          `json:"business_id" gorm:"size:50;uniqueIndex;not null"`
	ProductionDate  time.Time       `json:"production_date" gorm:"type:date;not null;index"`
	OrderType       string          `json:"order_type" gorm:"size:20;not null"`
	ProductID       string          `json:"product_id" gorm:"size:36;not null;index"`
	ProductName     string          `json:"product_name" gorm:"size:255;not null"`
	PlannedQty      decimal.Decimal `json:"planned_qty" gorm:"type:decimal(18,3);not null"`
	CompletedQty    decimal.Decimal `json:"completed_qty" gorm:"type:decimal(18,3);not null;default:0"`
	ExpectedDiffQty decimal.Decimal `json:"expected_diff_qty" gorm:"type:decimal(18,3);not null;default:0"`
	Status          string          `json:"status" gorm:"size:20;not null;default:new"`
	Note            string          `json:"note" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Product *Product              `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Lines   []ProductionOrderLine `json:"lines,omitempty" gorm:"foreignKey:ProductionOrderID"`
}

func (ProductionOrder) TableName() string {
	return "production_orders"
}

// ProductionOrderLine (`lenh_sx_ct`): the batch breakdown of an order.
type ProductionOrderLine struct {
	ID                string           `json:"id" gorm:"primaryKey;size:36"`
	ProductionOrderID string           `json:"production_order_id" gorm:"size:36;not null;index"`
	ProductID         string           `json:"product_id" gorm:"size:36;not null;index"`
	ProductName       string           `json:"product_name" gorm:"size:255;not null"`
	BatchSpec         string           `json:"batch_spec" gorm:"size:100"`
	BatchCount        *decimal.Decimal `json:"batch_count" gorm:"type:decimal(18,3)"`
	UOM               string           `json:"uom" gorm:"size:20;not null"`
	PlannedQty        decimal.Decimal  `json:"planned_qty" gorm:"type:decimal(18,3);not null"`
	ActualQty         decimal.Decimal  `json:"actual_qty" gorm:"type:decimal(18,3);not null;default:0"`
	ExpectedLoss      *decimal.Decimal `json:"expected_loss" gorm:"type:decimal(18,3)"`
	ActualLoss        *decimal.Decimal `json:"actual_loss" gorm:"type:decimal(18,3)"`
	Note              string           `json:"note" gorm:"type:text"`

	ProductionOrder *ProductionOrder `json:"production_order,omitempty" gorm:"foreignKey:ProductionOrderID"`
	Product         *Product         `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductionOrderLine) TableName() string {
	return "production_order_lines"
}

// ProductionPlanDay (`khsx_ngay`): one row per product per production date,
// tracking planned quantity against the daily capacity ceiling.
type ProductionPlanDay struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	ProductionDate time.Time       `json:"production_date" gorm:"type:date;not null;index:idx_plan_product_date,unique"`
	ProductID      string          `json:"product_id" gorm:"size:36;not null;index:idx_plan_product_date,unique"`
	PlannedQty     decimal.Decimal `json:"planned_qty" gorm:"type:decimal(18,3);not null"`
	OrderedQty     decimal.Decimal `json:"ordered_qty" gorm:"type:decimal(18,3);not null;default:0"`
	RemainingQty   decimal.Decimal `json:"remaining_qty" gorm:"type:decimal(18,3);not null;default:0"`
	CapacityMax    decimal.Decimal `json:"capacity_max" gorm:"type:decimal(18,3);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductionPlanDay) TableName() string {
	return "production_plan_days"
}

// CapacityLimit overrides the configured default daily capacity for a
// (product, date) pair.
type CapacityLimit struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	ProductID string          `json:"product_id" gorm:"size:36;not null;index:idx_capacity_product_date,unique"`
	Date      time.Time       `json:"date" gorm:"type:date;not null;index:idx_capacity_product_date,unique"`
	MaxQty    decimal.Decimal `json:"max_qty" gorm:"type:decimal(18,3);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (CapacityLimit) TableName() string {
	return "capacity_limits"
}
