package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sales order statuses that still generate production demand.
const (
	SalesOrderStatusNew          = "new"
	SalesOrderStatusInProduction = "in_production"
	SalesOrderStatusDone         = "done"
	SalesOrderStatusCancelled    = "cancelled"
)

// SalesOrder (`don_hang`).
type SalesOrder struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	BusinessID   string    `json:"business_id" gorm:"size:50;uniqueIndex;not null"`
	CustomerID   string    `json:"customer_id" gorm:"size:36;index"`
	OrderDate    time.Time `json:"order_date" gorm:"type:date;not null"`
	DeliveryDate time.Time `json:"delivery_date" gorm:"type:date;not null;index"`
	Status       string    `json:"status" gorm:"size:20;not null;default:new"`
	Note         string    `json:"note" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Lines []SalesOrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

// SalesOrderLine (`don_hang_ct`).
type SalesOrderLine struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string           `json:"order_id" gorm:"size:36;not null;index"`
	ProductID string           `json:"product_id" gorm:"size:36;not null;index"`
	Quantity  decimal.Decimal  `json:"quantity" gorm:"type:decimal(18,3);not null"`
	UOM       string           `json:"uom" gorm:"size:20;not null"`
	UnitPrice *decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,4)"`

	Order   *SalesOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Product *Product    `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (SalesOrderLine) TableName() string {
	return "sales_order_lines"
}
