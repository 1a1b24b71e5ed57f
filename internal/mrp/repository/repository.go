package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// generateID generates a 32-char ID.
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// Repositories is the persistence layer of the planning module.
type Repositories struct {
	Catalog   *CatalogRepository
	Pricing   *PricingRepository
	Inventory *InventoryRepository
	Orders    *OrderRepository
	Plan      *PlanRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Catalog:   NewCatalogRepository(db),
		Pricing:   NewPricingRepository(db),
		Inventory: NewInventoryRepository(db),
		Orders:    NewOrderRepository(db),
		Plan:      NewPlanRepository(db),
	}
}

// WithTx rebinds every repository to the given transaction handle.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

// DB exposes the underlying handle for transaction scoping in services.
func (r *Repositories) DB() *gorm.DB {
	return r.Catalog.db
}
