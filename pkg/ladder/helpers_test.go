package ladder

import (
	"slices"
	"testing"
)

// chain builds left → ids... → right with one normal contact per id.
func chain(t *testing.T, ids ...string) *Rung {
	t.Helper()
	r := NewRung("r", Size{})
	prev := LeftRailID
	for _, id := range ids {
		if err := r.AddNode(NewContact(id, id, ContactNormal)); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
		if _, err := r.Connect(prev, id, LaneSerial); err != nil {
			t.Fatalf("Connect(%s, %s): %v", prev, id, err)
		}
		prev = id
	}
	return r
}

// branchRung builds left → open → a → close → right with b on the parallel
// lane of open.
func branchRung(t *testing.T) *Rung {
	t.Helper()
	r := chain(t, "a")
	wrap(t, r, "a", "open", "close", "b")
	return r
}

// wrap opens a branch around the serial node id and places lane on the
// parallel lane.
func wrap(t *testing.T, r *Rung, id, open, close, lane string) {
	t.Helper()
	pred, _, ok := r.Predecessor(id)
	if !ok {
		t.Fatalf("no predecessor for %s", id)
	}
	succ, ok := r.SerialOut(id)
	if !ok {
		t.Fatalf("no successor for %s", id)
	}
	r.Unwire(pred.ID)
	r.Unwire(succ.ID)
	for _, n := range []Node{
		NewParallelOpen(open, close),
		NewParallelClose(close, open),
		NewContact(lane, lane, ContactNormal),
	} {
		if err := r.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []Edge{
		NewEdge(pred.Source, pred.SourceHandle, open, HandleIn),
		NewEdge(open, HandleOut, id, pred.TargetHandle),
		NewEdge(id, succ.SourceHandle, close, HandleIn),
		NewEdge(close, HandleOut, succ.Target, succ.TargetHandle),
		NewEdge(open, HandleParallelOut, lane, HandleIn),
		NewEdge(lane, HandleOut, close, HandleParallelIn),
	} {
		if err := r.WireChecked(e); err != nil {
			t.Fatalf("WireChecked(%s): %v", e.ID, err)
		}
	}
}

// pairs returns "source->target" for every edge, sorted.
func pairs(r *Rung) []string {
	out := make([]string, 0, len(r.Edges))
	for _, e := range r.Edges {
		out = append(out, e.Source+"->"+e.Target)
	}
	slices.Sort(out)
	return out
}

func sortedEdges(r *Rung) []Edge {
	out := slices.Clone(r.Edges)
	slices.SortFunc(out, func(a, b Edge) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
