package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SemiRequirement is the demand for one semi-product reached while walking
// component edges, expressed both in units and whole production batches.
type SemiRequirement struct {
	ProductID   string           `json:"product_id"`
	ProductCode string           `json:"product_code"`
	ProductName string           `json:"product_name"`
	Quantity    decimal.Decimal  `json:"required_quantity"`
	BatchSize   *decimal.Decimal `json:"batch_size,omitempty"`
	BatchCount  decimal.Decimal  `json:"batch_count"`
	UOM         string           `json:"uom"`
}

// SemiProductDemand walks component edges from the product and returns the
// transitive semi-product demand for producing qty units, batch counts
// included. Component demand is rounded up to whole batches and the recursion
// carries the batch count, mirroring Explode.
func SemiProductDemand(g *Graph, productID string, qty decimal.Decimal) ([]SemiRequirement, error) {
	idx, ok := g.index[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	if !qty.IsPositive() {
		return []SemiRequirement{}, nil
	}
	acc := &semiAcc{byID: make(map[string]int)}
	if err := g.semiNode(idx, qty, acc, make(map[int32]bool)); err != nil {
		return nil, err
	}
	return acc.lines, nil
}

type semiAcc struct {
	lines []SemiRequirement
	byID  map[string]int
}

func (a *semiAcc) add(r SemiRequirement) {
	if i, ok := a.byID[r.ProductID]; ok {
		a.lines[i].Quantity = a.lines[i].Quantity.Add(r.Quantity)
		a.lines[i].BatchCount = a.lines[i].BatchCount.Add(r.BatchCount)
		return
	}
	a.byID[r.ProductID] = len(a.lines)
	a.lines = append(a.lines, r)
}

func (g *Graph) semiNode(idx int32, qty decimal.Decimal, acc *semiAcc, onPath map[int32]bool) error {
	if onPath[idx] {
		return &CycleError{Chain: []string{g.nodes[idx].product.Code, g.nodes[idx].product.Code}}
	}
	onPath[idx] = true
	defer delete(onPath, idx)

	for _, arc := range g.nodes[idx].components {
		child := &g.nodes[arc.child].product
		demand := qty.Mul(arc.qty)
		if !demand.IsPositive() || child.Group != "BTP" {
			continue
		}
		batches := decimal.NewFromInt(1)
		if child.BatchSize != nil && child.BatchSize.IsPositive() {
			batches = demand.Div(*child.BatchSize).Ceil()
		}
		acc.add(SemiRequirement{
			ProductID:   child.ID,
			ProductCode: child.Code,
			ProductName: child.Name,
			Quantity:    demand,
			BatchSize:   child.BatchSize,
			BatchCount:  batches,
			UOM:         arc.uom,
		})
		if err := g.semiNode(arc.child, batches, acc, onPath); err != nil {
			return err
		}
	}
	return nil
}

// PlanConfig are the tunables of one planning run.
type PlanConfig struct {
	From            time.Time
	To              time.Time
	LeadTimeDays    int
	DefaultCapacity decimal.Decimal
	// DeductStock nets demand against on-hand stock before allocation.
	DeductStock bool
}

// ProposedOrder is one (product, production date) grouping of allocated
// demand, ready to become a production order.
type ProposedOrder struct {
	ProductID      string          `json:"product_id"`
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	OrderType      string          `json:"order_type"` // SP or BTP
	ProductionDate time.Time       `json:"production_date"`
	Quantity       decimal.Decimal `json:"quantity"`
	UOM            string          `json:"uom"`
}

// ProductBacklog is demand for one product that found no capacity in range.
type ProductBacklog struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Plan is the outcome of one planning run over a date range.
type Plan struct {
	From         time.Time         `json:"start_date"`
	To           time.Time         `json:"end_date"`
	Materials    []Requirement     `json:"material_requirements"`
	SemiProducts []SemiRequirement `json:"semi_product_requirements"`
	Orders       []ProposedOrder   `json:"proposed_orders"`
	Backlog      []ProductBacklog  `json:"backlog,omitempty"`
	Skipped      []SkippedProduct  `json:"skipped,omitempty"`
}

// PlanRequirements ties explosion, netting and allocation into one run over
// the demand entries. Each product's gross demand is exploded independently
// and merged into a single per-material total; netting and allocation then
// run per product and the day-by-day allocations become proposed orders. A
// product that fails to plan lands on the skip list without aborting the run.
func PlanRequirements(ctx context.Context, cat Catalog, inv Inventory, capBook CapacityBook, entries []DemandEntry, cfg PlanConfig) (*Plan, error) {
	from, to := Day(cfg.From), Day(cfg.To)
	plan := &Plan{
		From:         from,
		To:           to,
		Materials:    []Requirement{},
		SemiProducts: []SemiRequirement{},
		Orders:       []ProposedOrder{},
	}

	// group in-range demand per product, products ordered by earliest deadline
	byProduct := make(map[string][]DemandEntry)
	var productOrder []string
	for _, entry := range SortByRequiredDate(entries) {
		if !entry.Quantity.IsPositive() {
			continue
		}
		d := Day(entry.RequiredDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		if _, ok := byProduct[entry.ProductID]; !ok {
			productOrder = append(productOrder, entry.ProductID)
		}
		byProduct[entry.ProductID] = append(byProduct[entry.ProductID], entry)
	}

	materials := &requirementAcc{byID: make(map[string]int)}
	semis := &semiAcc{byID: make(map[string]int)}

	for _, productID := range productOrder {
		productEntries := byProduct[productID]

		g, err := LoadGraph(ctx, cat, productID)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
			continue
		}
		product, _ := g.Product(productID)

		gross := decimal.Zero
		for _, entry := range productEntries {
			gross = gross.Add(entry.Quantity)
		}

		requirements, err := Explode(g, productID, gross, from)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
			continue
		}
		for _, r := range requirements {
			materials.add(r)
		}
		semiLines, err := SemiProductDemand(g, productID, gross)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
			continue
		}
		for _, line := range semiLines {
			semis.add(line)
		}

		net := gross
		if cfg.DeductStock {
			netted, err := NetRequirement(ctx, inv, product, productEntries, from, to)
			if err != nil {
				plan.Skipped = append(plan.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
				continue
			}
			net = netted.Net
		}

		alloc, err := Allocate(ctx, capBook, productID, net, productEntries, from, to, cfg.LeadTimeDays, cfg.DefaultCapacity)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
			continue
		}

		orderType := "SP"
		if product.Group == "BTP" {
			orderType = "BTP"
		}
		for _, a := range alloc.Allocations {
			plan.Orders = append(plan.Orders, ProposedOrder{
				ProductID:      product.ID,
				ProductCode:    product.Code,
				ProductName:    product.Name,
				OrderType:      orderType,
				ProductionDate: a.Date,
				Quantity:       a.Quantity,
				UOM:            product.UOM,
			})
		}
		if alloc.Backlog.IsPositive() {
			plan.Backlog = append(plan.Backlog, ProductBacklog{
				ProductID:   product.ID,
				ProductCode: product.Code,
				Quantity:    alloc.Backlog,
			})
		}
	}

	plan.Materials = materials.lines
	plan.SemiProducts = semis.lines
	return plan, nil
}
