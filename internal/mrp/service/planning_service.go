package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/config"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlanningService runs material-requirement planning and production-order
// generation on top of the engine.
type PlanningService struct {
	repos   *repository.Repositories
	costing *CostingService
	cfg     config.PlanningConfig
	logger  *zap.Logger
}

func NewPlanningService(repos *repository.Repositories, costing *CostingService, cfg config.PlanningConfig, logger *zap.Logger) *PlanningService {
	return &PlanningService{repos: repos, costing: costing, cfg: cfg, logger: logger}
}

// DefaultRange applies the configured horizon when the caller omits an end
// date: [today, today + horizon).
func (s *PlanningService) DefaultRange(from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() {
		from = time.Now()
	}
	from = engine.Day(from)
	if to.IsZero() {
		to = from.AddDate(0, 0, s.cfg.HorizonDays-1)
	}
	return from, engine.Day(to)
}

// MaterialPlanLine is one material row of a requirement plan, with stock
// deduction applied when requested.
type MaterialPlanLine struct {
	MaterialID   string          `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	GrossQty     decimal.Decimal `json:"gross_quantity"`
	OnHand       decimal.Decimal `json:"on_hand"`
	NetQty       decimal.Decimal `json:"net_quantity"`
	UOM          string          `json:"uom"`
}

// MaterialPlan is the material-requirement view over the production orders
// scheduled in a date range.
type MaterialPlan struct {
	From         time.Time                `json:"start_date"`
	To           time.Time                `json:"end_date"`
	OrderCount   int                      `json:"order_count"`
	DeductStock  bool                     `json:"deduct_stock"`
	Materials    []MaterialPlanLine       `json:"material_requirements"`
	SemiProducts []engine.SemiRequirement `json:"semi_product_requirements"`
	Skipped      []engine.SkippedProduct  `json:"skipped,omitempty"`
}

// MaterialRequirementPlan explodes every production order scheduled in
// [from, to] and merges the results into per-material totals. With
// deductStock the totals are netted against raw-material warehouse stock,
// floored at zero.
func (s *PlanningService) MaterialRequirementPlan(ctx context.Context, from, to time.Time, deductStock bool) (*MaterialPlan, error) {
	from, to = s.DefaultRange(from, to)
	orders, err := s.repos.Plan.OrdersInRange(ctx, from, to, "")
	if err != nil {
		return nil, fmt.Errorf("load production orders: %w", err)
	}

	plan := &MaterialPlan{
		From:         from,
		To:           to,
		OrderCount:   len(orders),
		DeductStock:  deductStock,
		Materials:    []MaterialPlanLine{},
		SemiProducts: []engine.SemiRequirement{},
	}

	gross := make(map[string]*MaterialPlanLine)
	var materialOrder []string
	semis := make(map[string]*engine.SemiRequirement)
	var semiOrder []string

	for _, order := range orders {
		g, err := engine.LoadGraph(ctx, s.repos.Catalog, order.ProductID)
		if err != nil {
			plan.Skipped = append(plan.Skipped, engine.SkippedProduct{ProductID: order.ProductID, Reason: err.Error()})
			continue
		}
		requirements, err := engine.Explode(g, order.ProductID, order.PlannedQty, order.ProductionDate)
		if err != nil {
			plan.Skipped = append(plan.Skipped, engine.SkippedProduct{ProductID: order.ProductID, Reason: err.Error()})
			continue
		}
		for _, r := range requirements {
			line, ok := gross[r.MaterialID]
			if !ok {
				line = &MaterialPlanLine{
					MaterialID:   r.MaterialID,
					MaterialCode: r.MaterialCode,
					MaterialName: r.MaterialName,
					UOM:          r.UOM,
				}
				gross[r.MaterialID] = line
				materialOrder = append(materialOrder, r.MaterialID)
			}
			line.GrossQty = line.GrossQty.Add(r.Quantity)
		}

		semiLines, err := engine.SemiProductDemand(g, order.ProductID, order.PlannedQty)
		if err != nil {
			plan.Skipped = append(plan.Skipped, engine.SkippedProduct{ProductID: order.ProductID, Reason: err.Error()})
			continue
		}
		for _, line := range semiLines {
			acc, ok := semis[line.ProductID]
			if !ok {
				copied := line
				semis[line.ProductID] = &copied
				semiOrder = append(semiOrder, line.ProductID)
				continue
			}
			acc.Quantity = acc.Quantity.Add(line.Quantity)
			acc.BatchCount = acc.BatchCount.Add(line.BatchCount)
		}
	}

	var stock map[string]decimal.Decimal
	if deductStock {
		stock, err = s.repos.Inventory.OnHandByType(ctx, entity.GroupRawMaterial)
		if err != nil {
			return nil, fmt.Errorf("load raw-material stock: %w", err)
		}
	}

	for _, id := range materialOrder {
		line := gross[id]
		line.NetQty = line.GrossQty
		if deductStock {
			line.OnHand = stock[id]
			line.NetQty = decimal.Max(decimal.Zero, line.GrossQty.Sub(line.OnHand))
		}
		plan.Materials = append(plan.Materials, *line)
	}
	for _, id := range semiOrder {
		plan.SemiProducts = append(plan.SemiProducts, *semis[id])
	}
	return plan, nil
}

// OrderRequirements returns the leaf-material and semi-product requirements
// of one production order, exploded at its production date.
func (s *PlanningService) OrderRequirements(ctx context.Context, orderID string) (*MaterialPlan, error) {
	order, err := s.repos.Plan.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	g, err := engine.LoadGraph(ctx, s.repos.Catalog, order.ProductID)
	if err != nil {
		return nil, err
	}
	requirements, err := engine.Explode(g, order.ProductID, order.PlannedQty, order.ProductionDate)
	if err != nil {
		return nil, err
	}
	semiLines, err := engine.SemiProductDemand(g, order.ProductID, order.PlannedQty)
	if err != nil {
		return nil, err
	}

	plan := &MaterialPlan{
		From:         engine.Day(order.ProductionDate),
		To:           engine.Day(order.ProductionDate),
		OrderCount:   1,
		Materials:    make([]MaterialPlanLine, 0, len(requirements)),
		SemiProducts: semiLines,
	}
	for _, r := range requirements {
		plan.Materials = append(plan.Materials, MaterialPlanLine{
			MaterialID:   r.MaterialID,
			MaterialCode: r.MaterialCode,
			MaterialName: r.MaterialName,
			GrossQty:     r.Quantity,
			NetQty:       r.Quantity,
			UOM:          r.UOM,
		})
	}
	return plan, nil
}

// SemiProductDemand returns the recursive semi-product demand, with batch
// counts, for producing plannedQty units of the product.
func (s *PlanningService) SemiProductDemand(ctx context.Context, productID string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error) {
	g, err := engine.LoadGraph(ctx, s.repos.Catalog, productID)
	if err != nil {
		return nil, err
	}
	return engine.SemiProductDemand(g, productID, plannedQty)
}

// SemiProductDemandByCode resolves a product by its business code and returns
// its semi-product demand.
func (s *PlanningService) SemiProductDemandByCode(ctx context.Context, code string, plannedQty decimal.Decimal) ([]engine.SemiRequirement, error) {
	product, err := s.repos.Catalog.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.SemiProductDemand(ctx, product.ID, plannedQty)
}

// SalesOrder returns one sales order with its lines.
func (s *PlanningService) SalesOrder(ctx context.Context, orderID string) (*entity.SalesOrder, error) {
	return s.repos.Orders.FindByID(ctx, orderID)
}

// PlanDays returns the daily plan rows of a date range.
func (s *PlanningService) PlanDays(ctx context.Context, from, to time.Time) ([]entity.ProductionPlanDay, error) {
	from, to = s.DefaultRange(from, to)
	return s.repos.Plan.PlanDaysInRange(ctx, from, to)
}

// SetCapacityLimit upserts the capacity ceiling of a (product, date) pair,
// overriding the configured default for that day.
func (s *PlanningService) SetCapacityLimit(ctx context.Context, productID string, date time.Time, maxQty decimal.Decimal) error {
	if _, err := s.repos.Catalog.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.repos.Plan.SetCapacityLimit(ctx, productID, engine.Day(date), maxQty)
}

// GenerateResult reports one production-order generation run.
type GenerateResult struct {
	From    time.Time                `json:"start_date"`
	To      time.Time                `json:"end_date"`
	Created []entity.ProductionOrder `json:"created_orders"`
	Backlog []engine.ProductBacklog  `json:"backlog,omitempty"`
	Skipped []engine.SkippedProduct  `json:"skipped,omitempty"`
}

// GenerateProductionOrders turns open sales-order demand in [from, to] into
// production orders: demand is netted (optionally against stock), allocated
// under daily capacity ceilings, and each (product, date) allocation becomes
// an LSX order with its batch breakdown plus a daily plan row. The whole run
// executes in one transaction so planning sees a consistent snapshot and a
// failure rolls back every order it created. With regenerate the plan rows of
// the range are cleared first instead of accumulating onto the previous run.
func (s *PlanningService) GenerateProductionOrders(ctx context.Context, from, to time.Time, autoDeductStock, regenerate bool) (*GenerateResult, error) {
	from, to = s.DefaultRange(from, to)
	result := &GenerateResult{From: from, To: to, Created: []entity.ProductionOrder{}}

	err := s.repos.DB().Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)

		if regenerate {
			if err := txRepos.Plan.ClearPlanDays(ctx, from, to); err != nil {
				return fmt.Errorf("clear plan days: %w", err)
			}
		}

		entries, err := txRepos.Orders.DemandEntries(ctx, from, to)
		if err != nil {
			return fmt.Errorf("load sales demand: %w", err)
		}

		plan, err := engine.PlanRequirements(ctx, txRepos.Catalog, txRepos.Inventory, txRepos.Plan, entries, engine.PlanConfig{
			From:            from,
			To:              to,
			LeadTimeDays:    s.cfg.LeadTimeDays,
			DefaultCapacity: decimal.NewFromFloat(s.cfg.DefaultDailyCapacity),
			DeductStock:     autoDeductStock,
		})
		if err != nil {
			return err
		}
		result.Backlog = plan.Backlog
		result.Skipped = plan.Skipped

		for _, proposed := range plan.Orders {
			order, err := s.buildOrder(ctx, txRepos, proposed)
			if err != nil {
				result.Skipped = append(result.Skipped, engine.SkippedProduct{ProductID: proposed.ProductID, Reason: err.Error()})
				continue
			}
			if err := txRepos.Plan.CreateOrder(ctx, order); err != nil {
				return fmt.Errorf("create order %s: %w", order.BusinessID, err)
			}
			if err := s.recordPlanDay(ctx, txRepos, proposed); err != nil {
				return fmt.Errorf("record plan day for %s: %w", order.BusinessID, err)
			}
			result.Created = append(result.Created, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("production orders generated",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("created", len(result.Created)),
		zap.Int("backlog_products", len(result.Backlog)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *PlanningService) buildOrder(ctx context.Context, repos *repository.Repositories, proposed engine.ProposedOrder) (*entity.ProductionOrder, error) {
	product, err := repos.Catalog.FindByID(ctx, proposed.ProductID)
	if err != nil {
		return nil, err
	}
	businessID, err := repos.Plan.NextBusinessID(ctx, proposed.ProductionDate)
	if err != nil {
		return nil, err
	}

	line := entity.ProductionOrderLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		BatchSpec:   product.BatchSpec,
		UOM:         proposed.UOM,
		PlannedQty:  proposed.Quantity,
	}
	if bs := product.BatchSize(); bs != nil && bs.Quantity.IsPositive() {
		count := proposed.Quantity.Div(bs.Quantity).Ceil()
		line.BatchCount = &count
	}

	return &entity.ProductionOrder{
		BusinessID:     businessID,
		ProductionDate: proposed.ProductionDate,
		OrderType:      proposed.OrderType,
		ProductID:      product.ID,
		ProductName:    product.Name,
		PlannedQty:     proposed.Quantity,
		Status:         entity.ProductionOrderStatusNew,
		Lines:          []entity.ProductionOrderLine{line},
	}, nil
}

func (s *PlanningService) recordPlanDay(ctx context.Context, repos *repository.Repositories, proposed engine.ProposedOrder) error {
	capacity := decimal.NewFromFloat(s.cfg.DefaultDailyCapacity)
	if limit, err := repos.Plan.DailyLimit(ctx, proposed.ProductID, proposed.ProductionDate); err != nil {
		return err
	} else if limit != nil {
		capacity = *limit
	}
	return repos.Plan.UpsertPlanDay(ctx, &entity.ProductionPlanDay{
		ProductionDate: proposed.ProductionDate,
		ProductID:      proposed.ProductID,
		PlannedQty:     proposed.Quantity,
		CapacityMax:    capacity,
	})
}

// PlanningSummary rolls a date range up into counts and requirement totals.
type PlanningSummary struct {
	From             time.Time                `json:"start_date"`
	To               time.Time                `json:"end_date"`
	OrderCount       int                      `json:"order_count"`
	ProductCount     int                      `json:"product_count"`
	MaterialCount    int                      `json:"material_count"`
	SemiProductCount int                      `json:"semi_product_count"`
	Materials        []MaterialPlanLine       `json:"material_requirements"`
	SemiProducts     []engine.SemiRequirement `json:"semi_product_requirements"`
	Skipped          []engine.SkippedProduct  `json:"skipped,omitempty"`
}

// Summary aggregates the production orders in range into one planning
// overview.
func (s *PlanningService) Summary(ctx context.Context, from, to time.Time) (*PlanningSummary, error) {
	from, to = s.DefaultRange(from, to)
	plan, err := s.MaterialRequirementPlan(ctx, from, to, false)
	if err != nil {
		return nil, err
	}

	orders, err := s.repos.Plan.OrdersInRange(ctx, from, to, "")
	if err != nil {
		return nil, err
	}
	products := make(map[string]bool)
	for _, order := range orders {
		products[order.ProductID] = true
	}

	return &PlanningSummary{
		From:             from,
		To:               to,
		OrderCount:       len(orders),
		ProductCount:     len(products),
		MaterialCount:    len(plan.Materials),
		SemiProductCount: len(plan.SemiProducts),
		Materials:        plan.Materials,
		SemiProducts:     plan.SemiProducts,
		Skipped:          plan.Skipped,
	}, nil
}

// DailyPivot returns the material totals for the orders of a single
// production date.
func (s *PlanningService) DailyPivot(ctx context.Context, date time.Time) (*MaterialPlan, error) {
	day := engine.Day(date)
	return s.MaterialRequirementPlan(ctx, day, day, false)
}
