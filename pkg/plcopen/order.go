package plcopen

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// executionOrder numbers the blocks of r from first in topological wire
// order, counting up from first. Ties keep node order, so a rung with a
// block feeding another block's input variable evaluates the producer first.
func executionOrder(r *ladder.Rung, first int) (map[string]int, error) {
	indeg := make(map[string]int, len(r.Nodes))
	next := make(map[string][]string, len(r.Nodes))
	for _, n := range r.Nodes {
		indeg[n.ID] = 0
	}
	for _, e := range r.Edges {
		if _, ok := indeg[e.Source]; !ok {
			continue
		}
		if _, ok := indeg[e.Target]; !ok {
			continue
		}
		next[e.Source] = append(next[e.Source], e.Target)
		indeg[e.Target]++
	}

	var queue []string
	for _, n := range r.Nodes {
		if indeg[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	orders := map[string]int{}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		if r.Kind(id) == ladder.KindBlock {
			orders[id] = first + len(orders)
		}
		for _, t := range next[id] {
			if indeg[t]--; indeg[t] == 0 {
				queue = append(queue, t)
			}
		}
	}
	if visited != len(r.Nodes) {
		return nil, perrors.BrokenGraph(r.ID, "wires form a cycle")
	}
	return orders, nil
}
