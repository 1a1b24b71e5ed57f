package engine

import (
	"context"
	"fmt"
)

// LoadGraph builds the BOM graph reachable downward from the given roots.
// Edge inserts run the cycle check, so a cyclic BOM in storage surfaces here
// as a CycleError instead of recursing forever during explosion.
func LoadGraph(ctx context.Context, cat Catalog, rootIDs ...string) (*Graph, error) {
	g := NewGraph()
	queue := make([]string, 0, len(rootIDs))
	seen := make(map[string]bool)

	enqueue := func(id string) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		p, err := cat.Product(ctx, id)
		if err != nil {
			return err
		}
		g.AddProduct(*p)
		queue = append(queue, id)
		return nil
	}

	for _, id := range rootIDs {
		if err := enqueue(id); err != nil {
			return nil, err
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		mats, err := cat.MaterialEdges(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load material edges of %s: %w", id, err)
		}
		for _, e := range mats {
			if err := enqueue(e.MaterialID); err != nil {
				return nil, err
			}
			if err := g.AddMaterialEdge(id, e.MaterialID, e); err != nil {
				return nil, err
			}
		}

		comps, err := cat.ComponentEdges(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load component edges of %s: %w", id, err)
		}
		for _, e := range comps {
			if err := enqueue(e.ComponentID); err != nil {
				return nil, err
			}
			if err := g.AddComponentEdge(id, e.ComponentID, e); err != nil {
				return nil, err
			}
		}

		labor, err := cat.LaborLines(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load labor lines of %s: %w", id, err)
		}
		g.SetLabor(id, labor)
	}

	return g, nil
}
