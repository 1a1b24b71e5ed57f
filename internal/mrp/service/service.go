package service

import (
	"github.com/linhcentrio/16Food-QLSX/internal/config"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services is the planning module's business layer.
type Services struct {
	Costing  *CostingService
	Cascade  *CascadeService
	Planning *PlanningService
}

func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	cache := newCostCache(rdb, cfg.Planning.CostCacheTTL)
	costing := NewCostingService(repos, cache, logger)
	return &Services{
		Costing:  costing,
		Cascade:  NewCascadeService(repos, cache, logger),
		Planning: NewPlanningService(repos, costing, cfg.Planning, logger),
	}
}
