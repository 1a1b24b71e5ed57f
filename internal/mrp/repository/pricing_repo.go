package repository

import (
	"context"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"gorm.io/gorm"
)

// PricingRepository reads material price quotes. It satisfies engine.PriceBook.
type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) PriceHistory(ctx context.Context, materialID string) ([]engine.PricePoint, error) {
	var rows []entity.MaterialPriceHistory
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("quoted_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	points := make([]engine.PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, engine.PricePoint{QuotedDate: row.QuotedDate, Price: row.Price})
	}
	return points, nil
}

// AddQuote records a new price quote for a material.
func (r *PricingRepository) AddQuote(ctx context.Context, quote *entity.MaterialPriceHistory) error {
	if quote.ID == "" {
		quote.ID = generateID()
	}
	if quote.QuotedDate.IsZero() {
		quote.QuotedDate = engine.Day(time.Now())
	}
	return r.db.WithContext(ctx).Create(quote).Error
}

// ListQuotes returns the quote history of a material, newest first.
func (r *PricingRepository) ListQuotes(ctx context.Context, materialID string) ([]entity.MaterialPriceHistory, error) {
	var rows []entity.MaterialPriceHistory
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("quoted_date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}
