// Package laddertest provides rung fixtures for tests of the packages built
// on top of ladder.
package laddertest

import (
	"slices"
	"testing"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Chain builds left rail → ids... → right rail with one normal contact per
// id, each reading the variable named like the contact.
func Chain(t testing.TB, ids ...string) *ladder.Rung {
	t.Helper()
	r := ladder.NewRung("rung", ladder.Size{})
	prev := ladder.LeftRailID
	for _, id := range ids {
		if err := r.AddNode(ladder.NewContact(id, id, ladder.ContactNormal)); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
		if _, err := r.Connect(prev, id, ladder.LaneSerial); err != nil {
			t.Fatalf("Connect(%s, %s): %v", prev, id, err)
		}
		prev = id
	}
	return r
}

// Wrap opens a branch around the element id: open and closeID delimit it and
// a new contact named lane becomes its parallel lane.
func Wrap(t testing.TB, r *ladder.Rung, id, open, closeID, lane string) {
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
	for _, n := range []ladder.Node{
		ladder.NewParallelOpen(open, closeID),
		ladder.NewParallelClose(closeID, open),
		ladder.NewContact(lane, lane, ladder.ContactNormal),
	} {
		if err := r.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []ladder.Edge{
		ladder.NewEdge(pred.Source, pred.SourceHandle, open, ladder.HandleIn),
		ladder.NewEdge(open, ladder.HandleOut, id, pred.TargetHandle),
		ladder.NewEdge(id, succ.SourceHandle, closeID, ladder.HandleIn),
		ladder.NewEdge(closeID, ladder.HandleOut, succ.Target, succ.TargetHandle),
		ladder.NewEdge(open, ladder.HandleParallelOut, lane, ladder.HandleIn),
		ladder.NewEdge(lane, ladder.HandleOut, closeID, ladder.HandleParallelIn),
	} {
		if err := r.WireChecked(e); err != nil {
			t.Fatalf("WireChecked(%s): %v", e.ID, err)
		}
	}
}

// Branch returns left → open → a → close → right with b on the parallel lane.
func Branch(t testing.TB) *ladder.Rung {
	t.Helper()
	r := Chain(t, "a")
	Wrap(t, r, "a", "open", "close", "b")
	return r
}

// Nested returns [Branch] with a second branch opened around b, holding c on
// its parallel lane.
func Nested(t testing.TB) *ladder.Rung {
	t.Helper()
	r := Branch(t)
	Wrap(t, r, "b", "open2", "close2", "c")
	return r
}

// Pairs returns "source->target" for every edge of r, sorted.
func Pairs(r *ladder.Rung) []string {
	out := make([]string, 0, len(r.Edges))
	for _, e := range r.Edges {
		out = append(out, e.Source+"->"+e.Target)
	}
	slices.Sort(out)
	return out
}

// PowerPairs is [Pairs] restricted to wires on the power flow.
func PowerPairs(r *ladder.Rung) []string {
	out := make([]string, 0, len(r.Edges))
	for _, e := range r.Edges {
		if r.IsPowerEdge(e) {
			out = append(out, e.Source+"->"+e.Target)
		}
	}
	slices.Sort(out)
	return out
}

// Position returns the position of the node id, failing the test if the
// node does not exist.
func Position(t testing.TB, r *ladder.Rung, id string) ladder.Point {
	t.Helper()
	n, ok := r.Node(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return n.Position
}
