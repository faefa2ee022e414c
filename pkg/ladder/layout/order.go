package layout

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// powerOrder returns the nodes on the power flow in dependency order: every
// node comes after all of its predecessors. Ties keep node order, so the
// result is deterministic. Variables and placeholders are not included.
func powerOrder(r *ladder.Rung) ([]string, error) {
	indeg := make(map[string]int)
	var ids []string
	for _, n := range r.Nodes {
		if n.Kind == ladder.KindVariable || n.Kind.IsPlaceholder() {
			continue
		}
		ids = append(ids, n.ID)
		indeg[n.ID] = 0
	}
	succ := make(map[string][]string)
	for _, e := range r.Edges {
		if !r.IsPowerEdge(e) {
			continue
		}
		indeg[e.Target]++
		succ[e.Source] = append(succ[e.Source], e.Target)
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range succ[id] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(order) != len(ids) {
		for _, id := range ids {
			if indeg[id] > 0 {
				return nil, perrors.BrokenGraph(id, "power flow contains a cycle")
			}
		}
	}
	return order, nil
}
