package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// In-memory collaborators for engine tests.

type memCatalog struct {
	products   map[string]Product
	materials  map[string][]MaterialEdge
	components map[string][]ComponentEdge
	labor      map[string][]LaborLine
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		products:   make(map[string]Product),
		materials:  make(map[string][]MaterialEdge),
		components: make(map[string][]ComponentEdge),
		labor:      make(map[string][]LaborLine),
	}
}

func (c *memCatalog) addProduct(p Product) {
	c.products[p.ID] = p
}

func (c *memCatalog) Product(_ context.Context, id string) (*Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (c *memCatalog) MaterialEdges(_ context.Context, productID string) ([]MaterialEdge, error) {
	return c.materials[productID], nil
}

func (c *memCatalog) ComponentEdges(_ context.Context, productID string) ([]ComponentEdge, error) {
	return c.components[productID], nil
}

func (c *memCatalog) MaterialConsumers(_ context.Context, materialID string) ([]string, error) {
	var out []string
	for pid, edges := range c.materials {
		for _, e := range edges {
			if e.MaterialID == materialID {
				out = append(out, pid)
				break
			}
		}
	}
	return out, nil
}

func (c *memCatalog) ComponentConsumers(_ context.Context, componentID string) ([]string, error) {
	var out []string
	for pid, edges := range c.components {
		for _, e := range edges {
			if e.ComponentID == componentID {
				out = append(out, pid)
				break
			}
		}
	}
	return out, nil
}

func (c *memCatalog) LaborLines(_ context.Context, productID string) ([]LaborLine, error) {
	return c.labor[productID], nil
}

type memPriceBook map[string][]PricePoint

func (b memPriceBook) PriceHistory(_ context.Context, materialID string) ([]PricePoint, error) {
	return b[materialID], nil
}

// memInventory maps productID -> warehouse type -> on-hand quantity.
type memInventory map[string]map[string]decimal.Decimal

func (i memInventory) OnHand(_ context.Context, productID, warehouseType string) (decimal.Decimal, error) {
	return i[productID][warehouseType], nil
}

// memCapacity maps productID -> date key -> limit.
type memCapacity map[string]map[string]decimal.Decimal

func (c memCapacity) DailyLimit(_ context.Context, productID string, day time.Time) (*decimal.Decimal, error) {
	limit, ok := c[productID][day.Format("2006-01-02")]
	if !ok {
		return nil, nil
	}
	return &limit, nil
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return v
}

func dp(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	v := d(t, s)
	return &v
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad date literal %q: %v", s, err)
	}
	return v
}

func requireEqual(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(d(t, want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}
