package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BomMaterial is a material edge (`bom_sp`): the parent product consumes
// Quantity of the raw material per unit, or per batch when the parent is a
// semi-product. Multiple rows per (product, material) pair represent BOM
// versions distinguished by EffectiveDate.
type BomMaterial struct {
	ID            string           `json:"id" gorm:"primaryKey;size:36"`
	ProductID     string           `json:"product_id" gorm:"size:36;not null;index"`
	MaterialID    string           `json:"material_id" gorm:"size:36;not null;index"`
	Quantity      decimal.Decimal  `json:"quantity" gorm:"type:decimal(18,6);not null"`
	UOM           string           `json:"uom" gorm:"size:20;not null"`
	Cost          *decimal.Decimal `json:"cost" gorm:"type:decimal(18,4)"`
	EffectiveDate *time.Time       `json:"effective_date" gorm:"type:date"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Product  *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Material *Product `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (BomMaterial) TableName() string {
	return "bom_materials"
}

// BomSemiProduct is a component edge (`bom_btp`): the parent product is
// assembled from a semi-product component, ordered by OperationSequence.
type BomSemiProduct struct {
	ID                string          `json:"id" gorm:"primaryKey;size:36"`
	ProductID         string          `json:"product_id" gorm:"size:36;not null;index"`
	ComponentID       string          `json:"component_id" gorm:"size:36;not null;index"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(18,6);not null"`
	UOM               string          `json:"uom" gorm:"size:20;not null"`
	OperationSequence *int            `json:"operation_sequence"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Component *Product `json:"component,omitempty" gorm:"foreignKey:ComponentID"`
}

func (BomSemiProduct) TableName() string {
	return "bom_semi_products"
}

// BomLabor (`bom_nhan_cong`): labor/equipment cost lines attached to a product.
// Line cost is duration_minutes/60 × unit_cost when a duration is present,
// otherwise quantity × unit_cost.
type BomLabor struct {
	ID              string           `json:"id" gorm:"primaryKey;size:36"`
	ProductID       string           `json:"product_id" gorm:"size:36;not null;index"`
	Equipment       string           `json:"equipment" gorm:"size:100"`
	LaborType       string           `json:"labor_type" gorm:"size:100"`
	Quantity        *decimal.Decimal `json:"quantity" gorm:"type:decimal(18,3)"`
	DurationMinutes *int             `json:"duration_minutes"`
	UnitCost        *decimal.Decimal `json:"unit_cost" gorm:"type:decimal(18,4)"`
	CreatedAt       time.Time        `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (BomLabor) TableName() string {
	return "bom_labors"
}
