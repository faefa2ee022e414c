package ladder

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
)

// Validate checks the structural invariants of a committed rung:
//
//   - exactly one left and one right power rail; the left rail has no
//     incoming wire and the right rail no outgoing wire
//   - every payload matches its node kind and every wire ends on an
//     existing handle
//   - every node on the power flow has exactly one serial output; a
//     ParallelOpen additionally has a parallel output and a ParallelClose
//     two inputs
//   - parallel pairs point at each other and nest properly
//   - no placeholder is present and every synthetic variable is bound to an
//     existing block port
//
// Violations are reported as a [perrors.BrokenGraphError] naming the first
// offending node.
func (r *Rung) Validate() error {
	if err := r.validateShape(); err != nil {
		return err
	}
	for _, n := range r.Nodes {
		if n.Kind.IsPlaceholder() {
			return perrors.BrokenGraph(n.ID, "placeholder in a committed rung")
		}
		if d, ok := n.Data.(VariableData); ok {
			b, ok := r.Node(d.BlockID)
			if !ok || b.Kind != KindBlock {
				return perrors.BrokenGraph(n.ID, "variable bound to missing block %q", d.BlockID)
			}
		}
	}
	return nil
}

// ValidateTransient checks the invariants that also hold while placeholders
// or a drag ghost are present: everything [Rung.Validate] checks except the
// placeholder and variable binding rules, plus at most one selected
// placeholder.
func (r *Rung) ValidateTransient() error {
	if err := r.validateShape(); err != nil {
		return err
	}
	selected := ""
	for _, n := range r.Nodes {
		d, ok := n.Data.(PlaceholderData)
		if !ok || !d.Selected {
			continue
		}
		if selected != "" {
			return perrors.BrokenGraph(n.ID, "placeholder %q is already selected", selected)
		}
		selected = n.ID
	}
	return nil
}

func (r *Rung) validateShape() error {
	var lefts, rights int
	seen := make(map[string]bool, len(r.Nodes))
	for i := range r.Nodes {
		n := &r.Nodes[i]
		if n.ID == "" {
			return perrors.BrokenGraph("", "node at index %d has no id", i)
		}
		if seen[n.ID] {
			return perrors.BrokenGraph(n.ID, "duplicate node id")
		}
		seen[n.ID] = true
		if !n.Kind.Valid() {
			return perrors.BrokenGraph(n.ID, "unknown node kind %q", n.Kind)
		}
		if !dataMatchesKind(n) {
			return perrors.BrokenGraph(n.ID, "payload does not match kind %s", n.Kind)
		}
		switch {
		case n.IsRail(RailLeft):
			lefts++
		case n.IsRail(RailRight):
			rights++
		}
	}
	if lefts != 1 || rights != 1 {
		return perrors.BrokenGraph("", "want one left and one right rail, have %d and %d", lefts, rights)
	}

	for _, e := range r.Edges {
		src, ok := r.Node(e.Source)
		if !ok {
			return perrors.BrokenGraph(e.Source, "wire %s starts at a missing node", e.ID)
		}
		if h, ok := src.Handle(e.SourceHandle); !ok || h.Type != HandleSource {
			return perrors.BrokenGraph(e.Source, "wire %s leaves unknown output %q", e.ID, e.SourceHandle)
		}
		dst, ok := r.Node(e.Target)
		if !ok {
			return perrors.BrokenGraph(e.Target, "wire %s ends at a missing node", e.ID)
		}
		if h, ok := dst.Handle(e.TargetHandle); !ok || h.Type != HandleTarget {
			return perrors.BrokenGraph(e.Target, "wire %s enters unknown input %q", e.ID, e.TargetHandle)
		}
	}

	for i := range r.Nodes {
		if err := r.validateFlow(&r.Nodes[i]); err != nil {
			return err
		}
	}

	all, err := ParallelDepthAndNodes(r)
	if err != nil {
		return err
	}
	reached := make(map[string]bool)
	for _, b := range all {
		reached[b.Open] = true
	}
	for _, n := range r.Nodes {
		if n.Kind == KindParallelOpen && !reached[n.ID] {
			return perrors.BrokenGraph(n.ID, "branch is not reachable from the left rail")
		}
	}
	return nil
}

// validateFlow checks the power wire counts of a single node.
func (r *Rung) validateFlow(n *Node) error {
	in, out := r.PowerIn(n.ID), r.PowerOut(n.ID)
	switch n.Kind {
	case KindPowerRail:
		if n.IsRail(RailLeft) {
			if len(in) != 0 || len(out) != 1 {
				return perrors.BrokenGraph(n.ID, "left rail has %d inputs and %d outputs", len(in), len(out))
			}
			return nil
		}
		if len(out) != 0 || len(in) != 1 {
			return perrors.BrokenGraph(n.ID, "right rail has %d inputs and %d outputs", len(in), len(out))
		}
	case KindContact, KindCoil, KindBlock:
		if len(in) != 1 || len(out) != 1 {
			return perrors.BrokenGraph(n.ID, "element has %d inputs and %d outputs", len(in), len(out))
		}
		if _, ok := r.SerialOut(n.ID); !ok {
			return perrors.BrokenGraph(n.ID, "element output is not on its power connector")
		}
	case KindParallelOpen:
		if _, _, err := Pair(r, n.ID); err != nil {
			return err
		}
		_, serial := r.LaneOut(n.ID, LaneSerial)
		_, parallel := r.LaneOut(n.ID, LaneParallel)
		if len(in) != 1 || len(out) != 2 || !serial || !parallel {
			return perrors.BrokenGraph(n.ID, "parallel open has %d inputs and %d outputs", len(in), len(out))
		}
	case KindParallelClose:
		if _, _, err := Pair(r, n.ID); err != nil {
			return err
		}
		_, serial := r.LaneIn(n.ID, LaneSerial)
		_, parallel := r.LaneIn(n.ID, LaneParallel)
		if len(in) != 2 || len(out) != 1 || !serial || !parallel {
			return perrors.BrokenGraph(n.ID, "parallel close has %d inputs and %d outputs", len(in), len(out))
		}
	case KindVariable, KindPlaceholder, KindParallelPlaceholder:
	default:
		return perrors.BrokenGraph(n.ID, "unknown node kind %q", n.Kind)
	}
	return nil
}
