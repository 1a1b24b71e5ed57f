package repository

import (
	"context"
	"errors"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/linhcentrio/16Food-QLSX/internal/mrp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogRepository reads product master data and BOM edges. It satisfies
// engine.Catalog, translating rows into the engine's flat edge types.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindByID returns the full product row.
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode returns the product with the given business code.
func (r *CatalogRepository) FindByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListByGroup returns active products of one group, ordered by code.
func (r *CatalogRepository) ListByGroup(ctx context.Context, group string) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("\"group\" = ? AND status = ?", group, "active").
		Order("code ASC").
		Find(&products).Error
	return products, err
}

// Product satisfies engine.Catalog.
func (r *CatalogRepository) Product(ctx context.Context, id string) (*engine.Product, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, engine.ErrProductNotFound
		}
		return nil, err
	}
	return toEngineProduct(row), nil
}

func toEngineProduct(row *entity.Product) *engine.Product {
	p := &engine.Product{
		ID:        row.ID,
		Code:      row.Code,
		Name:      row.Name,
		Group:     row.Group,
		UOM:       row.MainUOM,
		CostPrice: row.CostPrice,
	}
	if bs := row.BatchSize(); bs != nil {
		qty := bs.Quantity
		p.BatchSize = &qty
	}
	return p
}

// MaterialEdges returns every material row of the product, all BOM versions
// included; the engine selects the effective one per pricing date.
func (r *CatalogRepository) MaterialEdges(ctx context.Context, productID string) ([]engine.MaterialEdge, error) {
	var rows []entity.BomMaterial
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("effective_date ASC NULLS FIRST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	edges := make([]engine.MaterialEdge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, engine.MaterialEdge{
			MaterialID:    row.MaterialID,
			Quantity:      row.Quantity,
			UOM:           row.UOM,
			Cost:          row.Cost,
			EffectiveDate: row.EffectiveDate,
		})
	}
	return edges, nil
}

func (r *CatalogRepository) ComponentEdges(ctx context.Context, productID string) ([]engine.ComponentEdge, error) {
	var rows []entity.BomSemiProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("operation_sequence ASC NULLS LAST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	edges := make([]engine.ComponentEdge, 0, len(rows))
	for _, row := range rows {
		edge := engine.ComponentEdge{
			ComponentID: row.ComponentID,
			Quantity:    row.Quantity,
			UOM:         row.UOM,
		}
		if row.OperationSequence != nil {
			edge.OperationSequence = *row.OperationSequence
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// MaterialConsumers returns the products that consume the material directly.
func (r *CatalogRepository) MaterialConsumers(ctx context.Context, materialID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.BomMaterial{}).
		Distinct("product_id").
		Where("material_id = ?", materialID).
		Pluck("product_id", &ids).Error
	return ids, err
}

// ComponentConsumers returns the products assembled from the component.
func (r *CatalogRepository) ComponentConsumers(ctx context.Context, componentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.BomSemiProduct{}).
		Distinct("product_id").
		Where("component_id = ?", componentID).
		Pluck("product_id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) LaborLines(ctx context.Context, productID string) ([]engine.LaborLine, error) {
	var rows []entity.BomLabor
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]engine.LaborLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, engine.LaborLine{
			Equipment:       row.Equipment,
			LaborType:       row.LaborType,
			Quantity:        row.Quantity,
			DurationMinutes: row.DurationMinutes,
			UnitCost:        row.UnitCost,
		})
	}
	return lines, nil
}

// UpdateCostPrice writes the recalculated cost only when the stored value
// still matches oldCost, so concurrent recalculations cannot overwrite each
// other with stale results. Returns false when the row moved underneath us.
func (r *CatalogRepository) UpdateCostPrice(ctx context.Context, productID string, oldCost, newCost *decimal.Decimal) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", productID)
	if oldCost == nil {
		query = query.Where("cost_price IS NULL")
	} else {
		query = query.Where("cost_price = ?", *oldCost)
	}
	res := query.Update("cost_price", newCost)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
