package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanRepository persists production orders, daily plan rows and capacity
// limits. It satisfies engine.CapacityBook.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) DailyLimit(ctx context.Context, productID string, day time.Time) (*decimal.Decimal, error) {
	var limit entity.CapacityLimit
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND date = ?", productID, engine.Day(day)).
		First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &limit.MaxQty, nil
}

// SetCapacityLimit upserts the capacity ceiling of a (product, date) pair.
func (r *PlanRepository) SetCapacityLimit(ctx context.Context, productID string, date time.Time, maxQty decimal.Decimal) error {
	limit := entity.CapacityLimit{
		ID:        generateID(),
		ProductID: productID,
		Date:      engine.Day(date),
		MaxQty:    maxQty,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_qty"}),
	}).Create(&limit).Error
}

// NextBusinessID issues the next LSX-yyyyMMdd-NNN code for the production
// date. Call inside the transaction that creates the order so the sequence
// cannot race.
func (r *PlanRepository) NextBusinessID(ctx context.Context, productionDate time.Time) (string, error) {
	prefix := "LSX-" + productionDate.Format("20060102")
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductionOrder{}).
		Where("business_id LIKE ?", prefix+"-%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

// CreateOrder inserts a production order together with its batch lines.
func (r *PlanRepository) CreateOrder(ctx context.Context, order *entity.ProductionOrder) error {
	if order.ID == "" {
		order.ID = generateID()
	}
	for i := range order.Lines {
		if order.Lines[i].ID == "" {
			order.Lines[i].ID = generateID()
		}
		order.Lines[i].ProductionOrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *PlanRepository) FindOrderByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	var order entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Product").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// OrdersInRange returns production orders scheduled inside [from, to],
// optionally filtered by order type (SP or BTP).
func (r *PlanRepository) OrdersInRange(ctx context.Context, from, to time.Time, orderType string) ([]entity.ProductionOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Product").
		Where("production_date >= ? AND production_date <= ?", engine.Day(from), engine.Day(to)).
		Where("status <> ?", entity.ProductionOrderStatusCancelled)
	if orderType != "" {
		query = query.Where("order_type = ?", orderType)
	}
	var orders []entity.ProductionOrder
	err := query.Order("production_date ASC, business_id ASC").Find(&orders).Error
	return orders, err
}

// UpsertPlanDay accumulates planned quantity onto the (product, date) plan
// row, creating it on first touch.
func (r *PlanRepository) UpsertPlanDay(ctx context.Context, day *entity.ProductionPlanDay) error {
	if day.ID == "" {
		day.ID = generateID()
	}
	day.ProductionDate = engine.Day(day.ProductionDate)
	day.RemainingQty = day.PlannedQty.Sub(day.OrderedQty)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "production_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"planned_qty":   gorm.Expr("production_plan_days.planned_qty + ?", day.PlannedQty),
			"remaining_qty": gorm.Expr("production_plan_days.planned_qty + ? - production_plan_days.ordered_qty", day.PlannedQty),
			"capacity_max":  day.CapacityMax,
		}),
	}).Create(day).Error
}

// PlanDaysInRange returns plan rows in the range, product preloaded, ordered
// by date then product code.
func (r *PlanRepository) PlanDaysInRange(ctx context.Context, from, to time.Time) ([]entity.ProductionPlanDay, error) {
	var days []entity.ProductionPlanDay
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("production_date >= ? AND production_date <= ?", engine.Day(from), engine.Day(to)).
		Order("production_date ASC").
		Find(&days).Error
	return days, err
}

// ClearPlanDays deletes plan rows in the range so a re-run starts clean.
func (r *PlanRepository) ClearPlanDays(ctx context.Context, from, to time.Time) error {
	return r.db.WithContext(ctx).
		Where("production_date >= ? AND production_date <= ?", engine.Day(from), engine.Day(to)).
		Delete(&entity.ProductionPlanDay{}).Error
}
