package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostingService computes product cost breakdowns and BOM explosions.
type CostingService struct {
	repos  *repository.Repositories
	cache  *costCache
	logger *zap.Logger
}

func NewCostingService(repos *repository.Repositories, cache *costCache, logger *zap.Logger) *CostingService {
	return &CostingService{repos: repos, cache: cache, logger: logger}
}

// CostCalculation returns the full cost breakdown of one unit of a product as
// of the pricing date. Results are cached per (product, date) until the cost
// cache TTL expires or a recalculation invalidates them.
func (s *CostingService) CostCalculation(ctx context.Context, productID string, asOf time.Time) (*engine.CostBreakdown, error) {
	asOf = engine.Day(asOf)
	if cached, ok := s.cache.Get(ctx, productID, asOf); ok {
		return cached, nil
	}

	g, err := engine.LoadGraph(ctx, s.repos.Catalog, productID)
	if err != nil {
		return nil, err
	}
	breakdown, err := engine.CostOf(ctx, g, s.repos.Pricing, productID, asOf)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, breakdown)
	return breakdown, nil
}

// MaterialsByGroup lists the active products of one group for the pricing
// screens.
func (s *CostingService) MaterialsByGroup(ctx context.Context, group string) ([]entity.Product, error) {
	return s.repos.Catalog.ListByGroup(ctx, group)
}

// PriceHistoryOf returns the quote history of a material, newest first.
func (s *CostingService) PriceHistoryOf(ctx context.Context, materialID string) ([]entity.MaterialPriceHistory, error) {
	if _, err := s.repos.Catalog.FindByID(ctx, materialID); err != nil {
		return nil, err
	}
	return s.repos.Pricing.ListQuotes(ctx, materialID)
}

// AddQuote records a price quote for a material and drops the material's
// cached breakdowns. Consumer costs stay as they are until a recalculation
// cascades the change.
func (s *CostingService) AddQuote(ctx context.Context, materialID string, price decimal.Decimal, quotedDate time.Time) (*entity.MaterialPriceHistory, error) {
	if _, err := s.repos.Catalog.FindByID(ctx, materialID); err != nil {
		return nil, err
	}
	quote := &entity.MaterialPriceHistory{
		MaterialID: materialID,
		Price:      price,
		QuotedDate: engine.Day(quotedDate),
	}
	if err := s.repos.Pricing.AddQuote(ctx, quote); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, materialID)

	s.logger.Info("material quote added",
		zap.String("material_id", materialID),
		zap.String("price", price.String()),
		zap.Time("quoted_date", quote.QuotedDate),
	)
	return quote, nil
}

// Explosion returns the flat leaf-material requirements for producing qty
// units of the product as of a date.
func (s *CostingService) Explosion(ctx context.Context, productID string, qty decimal.Decimal, asOf time.Time) ([]engine.Requirement, error) {
	g, err := engine.LoadGraph(ctx, s.repos.Catalog, productID)
	if err != nil {
		return nil, fmt.Errorf("load BOM graph: %w", err)
	}
	return engine.Explode(g, productID, qty, engine.Day(asOf))
}
