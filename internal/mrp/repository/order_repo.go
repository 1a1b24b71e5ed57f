package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"gorm.io/gorm"
)

// OrderRepository reads sales orders, the demand side of planning.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var order entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
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

// OpenOrdersInRange returns orders still generating demand (new or in
// production) with a delivery date inside [from, to].
func (r *OrderRepository) OpenOrdersInRange(ctx context.Context, from, to time.Time) ([]entity.SalesOrder, error) {
	var orders []entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Where("status IN ? AND delivery_date >= ? AND delivery_date <= ?",
			[]string{entity.SalesOrderStatusNew, entity.SalesOrderStatusInProduction},
			engine.Day(from), engine.Day(to)).
		Order("delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

// DemandEntries flattens open order lines in the range into gross demand
// entries keyed by delivery date.
func (r *OrderRepository) DemandEntries(ctx context.Context, from, to time.Time) ([]engine.DemandEntry, error) {
	orders, err := r.OpenOrdersInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var entries []engine.DemandEntry
	for _, order := range orders {
		for _, line := range order.Lines {
			entries = append(entries, engine.DemandEntry{
				ProductID:    line.ProductID,
				RequiredDate: engine.Day(order.DeliveryDate),
				Quantity:     line.Quantity,
			})
		}
	}
	return entries, nil
}
