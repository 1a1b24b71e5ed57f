package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Graph is an arena-backed BOM graph. Nodes are addressed by dense int32
// indexes and looked up by product ID through a side index; edges live in
// per-node adjacency lists. Every edge insert runs a reachability check so
// the graph can never hold a cycle, and traversals still carry a visited set
// as a second line of defense.
type Graph struct {
	nodes []node
	index map[string]int32
}

type node struct {
	product    Product
	labor      []LaborLine
	materials  []materialArc
	components []componentArc
	parents    []int32
}

type materialArc struct {
	child     int32
	qty       decimal.Decimal
	uom       string
	cost      *decimal.Decimal
	effective *time.Time
}

type componentArc struct {
	child int32
	qty   decimal.Decimal
	uom   string
	seq   int
}

func NewGraph() *Graph {
	return &Graph{index: make(map[string]int32)}
}

// AddProduct inserts a product node, or returns the existing index when the
// ID is already present.
func (g *Graph) AddProduct(p Product) int32 {
	if idx, ok := g.index[p.ID]; ok {
		return idx
	}
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{product: p})
	g.index[p.ID] = idx
	return idx
}

// SetLabor attaches labor lines to a product node.
func (g *Graph) SetLabor(productID string, lines []LaborLine) {
	if idx, ok := g.index[productID]; ok {
		g.nodes[idx].labor = lines
	}
}

// Product returns the product stored for the given ID.
func (g *Graph) Product(id string) (*Product, bool) {
	idx, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[idx].product, true
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddMaterialEdge adds a material edge from parent to child. Zero or negative
// quantities are dropped per the lenient intake policy. Returns a CycleError
// when the edge would make parent an ancestor of itself.
func (g *Graph) AddMaterialEdge(parentID, childID string, e MaterialEdge) error {
	if !e.Quantity.IsPositive() {
		return nil
	}
	pIdx, cIdx, err := g.edgeEndpoints(parentID, childID)
	if err != nil {
		return err
	}
	g.nodes[pIdx].materials = append(g.nodes[pIdx].materials, materialArc{
		child:     cIdx,
		qty:       e.Quantity,
		uom:       e.UOM,
		cost:      e.Cost,
		effective: e.EffectiveDate,
	})
	g.nodes[cIdx].parents = appendParent(g.nodes[cIdx].parents, pIdx)
	return nil
}

// AddComponentEdge adds a component edge from parent to child.
func (g *Graph) AddComponentEdge(parentID, childID string, e ComponentEdge) error {
	if !e.Quantity.IsPositive() {
		return nil
	}
	pIdx, cIdx, err := g.edgeEndpoints(parentID, childID)
	if err != nil {
		return err
	}
	g.nodes[pIdx].components = append(g.nodes[pIdx].components, componentArc{
		child: cIdx,
		qty:   e.Quantity,
		uom:   e.UOM,
		seq:   e.OperationSequence,
	})
	g.nodes[cIdx].parents = appendParent(g.nodes[cIdx].parents, pIdx)
	return nil
}

func (g *Graph) edgeEndpoints(parentID, childID string) (int32, int32, error) {
	pIdx, ok := g.index[parentID]
	if !ok {
		return 0, 0, ErrProductNotFound
	}
	cIdx, ok := g.index[childID]
	if !ok {
		return 0, 0, ErrProductNotFound
	}
	if pIdx == cIdx {
		code := g.nodes[pIdx].product.Code
		return 0, 0, &CycleError{Chain: []string{code, code}}
	}
	if chain := g.pathBetween(cIdx, pIdx); chain != nil {
		// parent is already reachable from child: the new edge closes a loop
		return 0, 0, &CycleError{Chain: append([]string{g.nodes[pIdx].product.Code}, chain...)}
	}
	return pIdx, cIdx, nil
}

// pathBetween returns the product codes along a path from -> to, or nil when
// to is unreachable.
func (g *Graph) pathBetween(from, to int32) []string {
	visited := make(map[int32]bool)
	var dfs func(cur int32) []string
	dfs = func(cur int32) []string {
		if cur == to {
			return []string{g.nodes[cur].product.Code}
		}
		if visited[cur] {
			return nil
		}
		visited[cur] = true
		for _, arc := range g.nodes[cur].materials {
			if chain := dfs(arc.child); chain != nil {
				return append([]string{g.nodes[cur].product.Code}, chain...)
			}
		}
		for _, arc := range g.nodes[cur].components {
			if chain := dfs(arc.child); chain != nil {
				return append([]string{g.nodes[cur].product.Code}, chain...)
			}
		}
		return nil
	}
	return dfs(from)
}

// Consumers returns the IDs of products with any edge pointing at the given
// product.
func (g *Graph) Consumers(id string) []string {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.nodes[idx].parents))
	for _, p := range g.nodes[idx].parents {
		out = append(out, g.nodes[p].product.ID)
	}
	return out
}

func appendParent(parents []int32, idx int32) []int32 {
	for _, p := range parents {
		if p == idx {
			return parents
		}
	}
	return append(parents, idx)
}

// selectMaterialArcs picks, per child material, the single BOM version that
// applies as of the given date: the arc with the latest effective date <= asOf,
// falling back to an undated arc when no dated version qualifies. Future-dated
// arcs are excluded. A zero asOf disables date filtering and keeps the latest
// dated version.
func (g *Graph) selectMaterialArcs(idx int32, asOf time.Time) []materialArc {
	chosen := make(map[int32]materialArc)
	order := make([]int32, 0, len(g.nodes[idx].materials))
	for _, arc := range g.nodes[idx].materials {
		if arc.effective != nil && !asOf.IsZero() && arc.effective.After(asOf) {
			continue
		}
		cur, ok := chosen[arc.child]
		if !ok {
			chosen[arc.child] = arc
			order = append(order, arc.child)
			continue
		}
		if betterVersion(arc, cur) {
			chosen[arc.child] = arc
		}
	}
	out := make([]materialArc, 0, len(order))
	for _, child := range order {
		out = append(out, chosen[child])
	}
	return out
}

// betterVersion prefers dated arcs over undated ones, and later dates over
// earlier ones.
func betterVersion(a, b materialArc) bool {
	if a.effective == nil {
		return false
	}
	if b.effective == nil {
		return true
	}
	return a.effective.After(*b.effective)
}
