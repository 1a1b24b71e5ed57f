package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product groups, mirroring the `san_pham` master data.
const (
	GroupRawMaterial  = "NVL"      // nguyên vật liệu
	GroupSemiProduct  = "BTP"      // bán thành phẩm
	GroupFinishedGood = "TP"       // thành phẩm
	GroupAuxiliary    = "Phu_lieu" // phụ liệu
)

// Product covers raw materials, semi-products, finished goods and auxiliaries.
type Product struct {
	ID             string           `json:"id" gorm:"primaryKey;size:36"`
	Code           string           `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name           string           `json:"name" gorm:"size:255;not null"`
	Group          string           `json:"group" gorm:"size:30;not null;index"`
	Specification  string           `json:"specification" gorm:"size:255"`
	MainUOM        string           `json:"main_uom" gorm:"size:20;not null"`
	SecondaryUOM   string           `json:"secondary_uom" gorm:"size:20"`
	ConversionRate *decimal.Decimal `json:"conversion_rate" gorm:"type:decimal(18,6)"`
	BatchSpec      string           `json:"batch_spec" gorm:"size:100"`
	ShelfLifeDays  *int             `json:"shelf_life_days"`
	CostPrice      *decimal.Decimal `json:"cost_price" gorm:"type:decimal(18,4)"`
	Status         string           `json:"status" gorm:"size:20;not null;default:active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// BatchSize is the structured production lot size of a semi-product.
type BatchSize struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// batchSpecRe picks the first numeric token out of free text such as
// "20kg/mẻ" or "100cái/mẻ". Legacy rows carry arbitrary formatting, so the
// parser stays lenient here at the ingestion boundary; the planning engine
// only ever sees the structured BatchSize.
var batchSpecRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([^\s/]*)`)

// ParseBatchSpec parses a free-text batch spec. Returns nil when no positive
// quantity can be extracted.
func ParseBatchSpec(spec string) *BatchSize {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}

	if qty, err := decimal.NewFromString(spec); err == nil {
		if qty.IsPositive() {
			return &BatchSize{Quantity: qty}
		}
		return nil
	}

	m := batchSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return nil
	}
	qty, err := decimal.NewFromString(m[1])
	if err != nil || !qty.IsPositive() {
		return nil
	}
	return &BatchSize{Quantity: qty, Unit: m[2]}
}

// BatchSize returns the parsed batch spec of the product, nil when absent or
// unparseable.
func (p *Product) BatchSize() *BatchSize {
	return ParseBatchSpec(p.BatchSpec)
}
