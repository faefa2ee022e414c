package placeholder

import (
	"math"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// ID returns the id of the default placeholder on the given side of related.
func ID(relatedID string, side ladder.PlaceholderSide) string {
	return "ph_" + relatedID + "_" + string(side)
}

// ParallelID returns the id of the parallel placeholder below related.
func ParallelID(relatedID string) string {
	return "pph_" + relatedID
}

// Render returns a copy of r with insertion slots added:
//
//   - a default placeholder on each side of every contact, coil and block
//   - one default placeholder on every wire of the main flow that touches no
//     element, such as the wire between the two rails of an empty rung
//   - a parallel placeholder below every element that may start a branch,
//     i.e. elements outside any branch and elements on the innermost row of
//     nested branches
//
// Placeholders already present are replaced. Each placeholder is stored next
// to its related node in the node list, so inserting at a placeholder's
// index keeps the list in reading order.
func Render(r *ladder.Rung) (*ladder.Rung, error) {
	base := Strip(r)
	inside, err := ladder.NodesInsideAnyParallel(base)
	if err != nil {
		return nil, err
	}
	deepest, err := ladder.DeepestNodesInsideParallels(base)
	if err != nil {
		return nil, err
	}

	before := make(map[string][]ladder.Node)
	after := make(map[string][]ladder.Node)
	for _, e := range base.Edges {
		if !base.IsPowerEdge(e) {
			continue
		}
		src, _ := base.Node(e.Source)
		dst, _ := base.Node(e.Target)
		if src.Kind.IsElement() || dst.Kind.IsElement() {
			continue
		}
		if e.SourceHandle == ladder.HandleParallelOut && dst.Kind == ladder.KindParallelClose {
			continue
		}
		if dst.Kind == ladder.KindParallelClose {
			after[src.ID] = append(after[src.ID], structural(base, e, src.ID, ladder.SideRight))
		} else {
			before[dst.ID] = append(before[dst.ID], structural(base, e, dst.ID, ladder.SideLeft))
		}
	}

	out := base.Clone()
	out.Nodes = out.Nodes[:0]
	for _, n := range base.Nodes {
		out.Nodes = append(out.Nodes, before[n.ID]...)
		if !n.Kind.IsElement() {
			out.Nodes = append(out.Nodes, n)
			out.Nodes = append(out.Nodes, after[n.ID]...)
			continue
		}
		out.Nodes = append(out.Nodes, beside(&n, ladder.SideLeft), n, beside(&n, ladder.SideRight))
		if !inside[n.ID] || deepest[n.ID] {
			out.Nodes = append(out.Nodes, below(&n))
		}
	}
	return out, nil
}

// structural builds the placeholder of a wire without element endpoints,
// centered on the wire.
func structural(r *ladder.Rung, e ladder.Edge, relatedID string, side ladder.PlaceholderSide) ladder.Node {
	p := ladder.NewPlaceholder(ID(relatedID, side), relatedID, side)
	var a, b ladder.Point
	if src, ok := r.Node(e.Source); ok {
		if h, ok := src.Handle(e.SourceHandle); ok {
			a = h.Position
		}
	}
	if dst, ok := r.Node(e.Target); ok {
		if h, ok := dst.Handle(e.TargetHandle); ok {
			b = h.Position
		}
	}
	center(&p, ladder.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2})
	return p
}

// beside builds the placeholder left or right of an element, level with its
// power connector.
func beside(n *ladder.Node, side ladder.PlaceholderSide) ladder.Node {
	p := ladder.NewPlaceholder(ID(n.ID, side), n.ID, side)
	var anchor ladder.Point
	if side == ladder.SideLeft {
		anchor = ladder.Point{X: n.Position.X - ladder.PlaceholderSize, Y: n.Center().Y}
		if h, ok := n.InputHandle(); ok {
			anchor.Y = n.Position.Y + h.Offset.Y
		}
	} else {
		anchor = ladder.Point{X: n.Right() + ladder.PlaceholderSize, Y: n.Center().Y}
		if h, ok := n.OutputHandle(); ok {
			anchor.Y = n.Position.Y + h.Offset.Y
		}
	}
	center(&p, anchor)
	return p
}

// below builds the parallel placeholder under an element, as wide as it.
func below(n *ladder.Node) ladder.Node {
	p := ladder.NewParallelPlaceholder(ParallelID(n.ID), n.ID, n.Size.Width)
	center(&p, ladder.Point{X: n.Center().X, Y: n.Bottom() + ladder.PlaceholderSize})
	return p
}

func center(n *ladder.Node, at ladder.Point) {
	n.Position = ladder.Point{X: at.X - n.Size.Width/2, Y: at.Y - n.Size.Height/2}
}

// Strip returns a copy of r without placeholders or wires touching them.
func Strip(r *ladder.Rung) *ladder.Rung {
	out := r.Clone()
	for _, n := range r.Nodes {
		if n.Kind.IsPlaceholder() {
			out.RemoveNode(n.ID)
		}
	}
	return out
}

// Anchor returns the point a placeholder is measured from.
func Anchor(n ladder.Node) ladder.Point { return n.Center() }

// Nearest returns the placeholder whose anchor is closest to p. Ties go to the
// placeholder that comes first in node order; that choice is arbitrary but
// deterministic.
func Nearest(r *ladder.Rung, p ladder.Point) (ladder.Node, bool) {
	var best ladder.Node
	bestDist := math.Inf(1)
	found := false
	for _, n := range r.Nodes {
		if !n.Kind.IsPlaceholder() {
			continue
		}
		a := Anchor(n)
		if d := math.Hypot(a.X-p.X, a.Y-p.Y); d < bestDist {
			best, bestDist, found = n, d, true
		}
	}
	return best, found
}

// Select returns a copy of r in which the placeholder id is the only selected
// one. It reports false, and returns r unchanged, if id is not a placeholder.
func Select(r *ladder.Rung, id string) (*ladder.Rung, bool) {
	target, ok := r.Node(id)
	if !ok || !target.Kind.IsPlaceholder() {
		return r, false
	}
	out := r.Clone()
	for i := range out.Nodes {
		d, ok := out.Nodes[i].Placeholder()
		if !ok {
			continue
		}
		d.Selected = out.Nodes[i].ID == id
		out.Nodes[i].Data = d
	}
	return out, true
}

// SelectNearest selects the placeholder nearest to p.
func SelectNearest(r *ladder.Rung, p ladder.Point) (*ladder.Rung, bool) {
	n, ok := Nearest(r, p)
	if !ok {
		return r, false
	}
	return Select(r, n.ID)
}

// Selected returns the selected placeholder of r.
func Selected(r *ladder.Rung) (ladder.Node, bool) {
	n, ok := r.SelectedPlaceholder()
	if !ok {
		return ladder.Node{}, false
	}
	return *n, true
}
