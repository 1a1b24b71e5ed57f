package service

import (
	"context"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cascadeCatalog is the slice of the catalog a cascade needs: the engine's
// read side plus the row lookup and the compare-and-set cost write.
type cascadeCatalog interface {
	engine.Catalog
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	UpdateCostPrice(ctx context.Context, productID string, oldCost, newCost *decimal.Decimal) (bool, error)
}

// CascadeService recomputes and persists product costs after a material price
// change.
type CascadeService struct {
	catalog cascadeCatalog
	pricing engine.PriceBook
	cache   *costCache
	logger  *zap.Logger
}

func NewCascadeService(repos *repository.Repositories, cache *costCache, logger *zap.Logger) *CascadeService {
	return &CascadeService{catalog: repos.Catalog, pricing: repos.Pricing, cache: cache, logger: logger}
}

// RecalculateCosts cascades a price change of the material through every
// product that consumes it, directly or transitively, persisting each new
// cost price. Persistence is compare-and-set against the cost the cascade
// read: a product whose stored cost moved concurrently is reported as skipped
// instead of being overwritten with a stale value.
func (s *CascadeService) RecalculateCosts(ctx context.Context, materialID string, asOf time.Time) (*engine.CascadeResult, error) {
	// surface a clean not-found before walking consumers
	if _, err := s.catalog.FindByID(ctx, materialID); err != nil {
		return nil, err
	}

	asOf = engine.Day(asOf)
	result, err := engine.Recalculate(ctx, s.catalog, s.pricing, materialID, asOf)
	if err != nil {
		return nil, err
	}

	persisted := make([]string, 0, len(result.Updated)+len(result.CascadeUpdated))
	persist := func(updates []engine.CostUpdate) []engine.CostUpdate {
		kept := updates[:0]
		for _, u := range updates {
			ok, err := s.catalog.UpdateCostPrice(ctx, u.ProductID, u.OldCost, &u.NewCost)
			if err != nil {
				result.Skipped = append(result.Skipped, engine.SkippedProduct{ProductID: u.ProductID, Reason: err.Error()})
				continue
			}
			if !ok {
				result.Skipped = append(result.Skipped, engine.SkippedProduct{ProductID: u.ProductID, Reason: "cost price changed concurrently"})
				continue
			}
			persisted = append(persisted, u.ProductID)
			kept = append(kept, u)
		}
		return kept
	}
	result.Updated = persist(result.Updated)
	result.CascadeUpdated = persist(result.CascadeUpdated)

	s.cache.Invalidate(ctx, persisted...)

	s.logger.Info("cost recalculation finished",
		zap.String("material_id", materialID),
		zap.Int("updated", len(result.Updated)),
		zap.Int("cascade_updated", len(result.CascadeUpdated)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
