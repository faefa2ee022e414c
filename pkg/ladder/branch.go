package ladder

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
)

// BranchLane is one of the two paths between a ParallelOpen and its close.
type BranchLane struct {
	// Nodes lists every node strictly inside the lane in flow order,
	// including the delimiters and contents of nested branches.
	Nodes []string
	// Direct lists the nodes that sit on the lane itself, skipping nested
	// branches.
	Direct []string
	// Children are the branches nested directly in this lane.
	Children []*Branch
}

// Empty reports whether the lane holds no node at all.
func (l *BranchLane) Empty() bool { return len(l.Nodes) == 0 }

// Branch describes a ParallelOpen/ParallelClose pair and the lanes between
// them. Branches form a tree through the Children of each lane.
type Branch struct {
	Open  string
	Close string
	// Depth is 0 for branches on the main line of the rung and grows by one
	// per level of nesting.
	Depth int
	// Tallest is the height of the tallest node inside either lane.
	Tallest float64

	Serial   BranchLane
	Parallel BranchLane
}

// Lane returns the requested lane of b.
func (b *Branch) Lane(l Lane) *BranchLane {
	if l == LaneParallel {
		return &b.Parallel
	}
	return &b.Serial
}

// Members returns the nodes of both lanes.
func (b *Branch) Members() []string {
	out := make([]string, 0, len(b.Serial.Nodes)+len(b.Parallel.Nodes))
	out = append(out, b.Serial.Nodes...)
	return append(out, b.Parallel.Nodes...)
}

// Walk calls fn for b and every branch nested in it, parents first.
func (b *Branch) Walk(fn func(*Branch)) {
	fn(b)
	for _, c := range b.Serial.Children {
		c.Walk(fn)
	}
	for _, c := range b.Parallel.Children {
		c.Walk(fn)
	}
}

// ParallelDepthAndNodes walks the main line of the rung from the left rail
// and returns every branch, outermost first, each with its nesting depth,
// tallest member and lane memberships. Mismatched or dangling parallel pairs
// are reported as a [perrors.BrokenGraphError].
func ParallelDepthAndNodes(r *Rung) ([]*Branch, error) {
	roots, err := RootBranches(r)
	if err != nil {
		return nil, err
	}
	var all []*Branch
	for _, b := range roots {
		b.Walk(func(x *Branch) { all = append(all, x) })
	}
	return all, nil
}

// RootBranches returns the branches that sit directly on the main line.
func RootBranches(r *Rung) ([]*Branch, error) {
	left, ok := r.LeftRail()
	if !ok {
		return nil, perrors.BrokenGraph("", "rung has no left rail")
	}
	w := walker{r: r, seen: make(map[string]bool)}
	var roots []*Branch
	cur := left.ID
	for {
		n, ok := r.Node(cur)
		if !ok {
			return nil, perrors.BrokenGraph(cur, "wire leads to a missing node")
		}
		if n.IsRail(RailRight) {
			return roots, nil
		}
		if n.Kind == KindParallelClose {
			return nil, perrors.BrokenGraph(cur, "parallel close without a matching open")
		}
		if err := w.visit(cur); err != nil {
			return nil, err
		}
		if n.Kind == KindParallelOpen {
			b, err := w.branch(cur, 0)
			if err != nil {
				return nil, err
			}
			roots = append(roots, b)
			cur = b.Close
		}
		out, ok := r.SerialOut(cur)
		if !ok {
			return nil, perrors.BrokenGraph(cur, "main line ends before the right rail")
		}
		cur = out.Target
	}
}

// Pair returns the ids of the open and close delimiters of the branch that
// id belongs to, after checking that both point at each other.
func Pair(r *Rung, id string) (open, close string, err error) {
	n, ok := r.Node(id)
	if !ok {
		return "", "", perrors.BrokenGraph(id, "parallel node not found")
	}
	d, ok := n.Parallel()
	if !ok || !n.Kind.IsParallel() {
		return "", "", perrors.BrokenGraph(id, "%s is not a parallel node", n.Kind)
	}
	m, ok := r.Node(d.PairedID)
	if !ok {
		return "", "", perrors.BrokenGraph(id, "paired node %q not found", d.PairedID)
	}
	md, ok := m.Parallel()
	if !ok || md.PairedID != id || m.Kind == n.Kind || !m.Kind.IsParallel() {
		return "", "", perrors.BrokenGraph(id, "pairing with %q is not mutual", d.PairedID)
	}
	if n.Kind == KindParallelOpen {
		return n.ID, m.ID, nil
	}
	return m.ID, n.ID, nil
}

// NodesInsideAnyParallel returns the set of nodes that lie inside the lanes
// of some branch, at any depth.
func NodesInsideAnyParallel(r *Rung) (map[string]bool, error) {
	all, err := ParallelDepthAndNodes(r)
	if err != nil {
		return nil, err
	}
	inside := make(map[string]bool)
	for _, b := range all {
		for _, id := range b.Members() {
			inside[id] = true
		}
	}
	return inside, nil
}

// DeepestNodesInsideParallels returns the nodes sitting on lanes that hold
// no nested branch, i.e. the innermost rows where further nesting may start.
func DeepestNodesInsideParallels(r *Rung) (map[string]bool, error) {
	all, err := ParallelDepthAndNodes(r)
	if err != nil {
		return nil, err
	}
	deepest := make(map[string]bool)
	for _, b := range all {
		for _, lane := range []*BranchLane{&b.Serial, &b.Parallel} {
			if len(lane.Children) > 0 {
				continue
			}
			for _, id := range lane.Direct {
				deepest[id] = true
			}
		}
	}
	return deepest, nil
}

type walker struct {
	r    *Rung
	seen map[string]bool
}

func (w *walker) visit(id string) error {
	if w.seen[id] {
		return perrors.BrokenGraph(id, "power flow loops back onto itself")
	}
	w.seen[id] = true
	return nil
}

func (w *walker) branch(openID string, depth int) (*Branch, error) {
	open, closeID, err := Pair(w.r, openID)
	if err != nil {
		return nil, err
	}
	if open != openID {
		return nil, perrors.BrokenGraph(openID, "branch walk started on a close")
	}
	b := &Branch{Open: openID, Close: closeID, Depth: depth}
	for _, l := range []Lane{LaneSerial, LaneParallel} {
		if err := w.lane(b, l); err != nil {
			return nil, err
		}
	}
	for _, id := range b.Members() {
		if n, ok := w.r.Node(id); ok && n.Size.Height > b.Tallest {
			b.Tallest = n.Size.Height
		}
	}
	return b, w.visit(closeID)
}

func (w *walker) lane(b *Branch, l Lane) error {
	lane := b.Lane(l)
	e, ok := w.r.LaneOut(b.Open, l)
	if !ok {
		return perrors.BrokenGraph(b.Open, "no %s lane output", l)
	}
	for e.Target != b.Close {
		cur := e.Target
		n, ok := w.r.Node(cur)
		if !ok {
			return perrors.BrokenGraph(cur, "wire leads to a missing node")
		}
		if err := w.visit(cur); err != nil {
			return err
		}
		switch n.Kind {
		case KindParallelOpen:
			child, err := w.branch(cur, b.Depth+1)
			if err != nil {
				return err
			}
			lane.Children = append(lane.Children, child)
			lane.Nodes = append(lane.Nodes, cur)
			lane.Nodes = append(lane.Nodes, child.Members()...)
			lane.Nodes = append(lane.Nodes, child.Close)
			cur = child.Close
		case KindParallelClose:
			return perrors.BrokenGraph(cur, "lane of %s reaches a foreign close", b.Open)
		case KindPowerRail:
			return perrors.BrokenGraph(b.Open, "%s lane runs into a power rail", l)
		case KindContact, KindCoil, KindBlock:
			lane.Nodes = append(lane.Nodes, cur)
			lane.Direct = append(lane.Direct, cur)
		default:
			return perrors.BrokenGraph(cur, "%s on a power lane", n.Kind)
		}
		next, ok := w.r.SerialOut(cur)
		if !ok {
			return perrors.BrokenGraph(cur, "lane ends before %s", b.Close)
		}
		e = next
	}
	want, _ := w.r.InputHandleID(b.Close, l)
	if e.TargetHandle != want {
		return perrors.BrokenGraph(b.Close, "%s lane enters through %q", l, e.TargetHandle)
	}
	return nil
}
