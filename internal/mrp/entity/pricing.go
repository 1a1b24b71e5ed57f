package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialPriceHistory (`lich_su_gia_nvl`): one quote per material per supplier
// per date. Pricing lookups take the latest quote with quoted_date <= the
// pricing date.
type MaterialPriceHistory struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	MaterialID string          `json:"material_id" gorm:"size:36;not null;index"`
	SupplierID string          `json:"supplier_id" gorm:"size:36;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(18,4);not null"`
	QuotedDate time.Time       `json:"quoted_date" gorm:"type:date;not null;index"`
	Note       string          `json:"note" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`

	Material *Product `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (MaterialPriceHistory) TableName() string {
	return "material_price_histories"
}
