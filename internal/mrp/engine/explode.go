package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Requirement is one leaf-level material line of an explosion, with
// quantities merged across all paths that reach the material.
type Requirement struct {
	MaterialID   string           `json:"material_id"`
	MaterialCode string           `json:"material_code"`
	MaterialName string           `json:"material_name"`
	Quantity     decimal.Decimal  `json:"required_quantity"`
	UOM          string           `json:"uom"`
	EdgeCost     *decimal.Decimal `json:"-"` // cached cost of the contributing BOM edge
}

// Explode expands (product, quantity) into flat leaf-material requirements by
// a depth-first walk of the BOM graph.
//
// Direct material edges contribute quantity × quantityPerUnit. Semi-product
// components are produced in whole batches: the component demand is rounded
// up to ceil(demand / batchSize) batches (one batch when no batch size is
// known) and the recursion multiplies the batch count by the component's own
// per-batch material quantities. Component edges to plain materials fold
// straight into the requirements.
//
// Results keep first-visit order. A zero or negative quantity yields no
// requirements.
func Explode(g *Graph, productID string, qty decimal.Decimal, asOf time.Time) ([]Requirement, error) {
	idx, ok := g.index[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	if !qty.IsPositive() {
		return []Requirement{}, nil
	}

	acc := &requirementAcc{byID: make(map[string]int)}
	if err := g.explodeNode(idx, qty, asOf, acc, make(map[int32]bool)); err != nil {
		return nil, err
	}
	return acc.lines, nil
}

type requirementAcc struct {
	lines []Requirement
	byID  map[string]int
}

func (a *requirementAcc) add(r Requirement) {
	if i, ok := a.byID[r.MaterialID]; ok {
		a.lines[i].Quantity = a.lines[i].Quantity.Add(r.Quantity)
		if a.lines[i].EdgeCost == nil {
			a.lines[i].EdgeCost = r.EdgeCost
		}
		return
	}
	a.byID[r.MaterialID] = len(a.lines)
	a.lines = append(a.lines, r)
}

// explodeNode walks one node. onPath is the ancestor set of the current DFS
// path; meeting an ancestor again means the insert-time cycle check was
// bypassed (e.g. a graph assembled by hand) and traversal must stop.
func (g *Graph) explodeNode(idx int32, qty decimal.Decimal, asOf time.Time, acc *requirementAcc, onPath map[int32]bool) error {
	if onPath[idx] {
		return &CycleError{Chain: []string{g.nodes[idx].product.Code, g.nodes[idx].product.Code}}
	}
	onPath[idx] = true
	defer delete(onPath, idx)

	for _, arc := range g.selectMaterialArcs(idx, asOf) {
		child := &g.nodes[arc.child].product
		acc.add(Requirement{
			MaterialID:   child.ID,
			MaterialCode: child.Code,
			MaterialName: child.Name,
			Quantity:     qty.Mul(arc.qty),
			UOM:          arc.uom,
			EdgeCost:     arc.cost,
		})
	}

	for _, arc := range g.nodes[idx].components {
		child := &g.nodes[arc.child].product
		demand := qty.Mul(arc.qty)
		if !demand.IsPositive() {
			continue
		}

		if child.Group != "BTP" {
			// component is a plain material, no batching applies
			acc.add(Requirement{
				MaterialID:   child.ID,
				MaterialCode: child.Code,
				MaterialName: child.Name,
				Quantity:     demand,
				UOM:          arc.uom,
			})
			continue
		}

		batches := decimal.NewFromInt(1)
		if child.BatchSize != nil && child.BatchSize.IsPositive() {
			batches = demand.Div(*child.BatchSize).Ceil()
		}
		if err := g.explodeNode(arc.child, batches, asOf, acc, onPath); err != nil {
			return err
		}
	}

	return nil
}
