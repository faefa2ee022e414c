package ladder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRung(t *testing.T) {
	r := NewRung("main", Size{})
	if r.DefaultBounds != DefaultBounds {
		t.Errorf("DefaultBounds = %+v, want %+v", r.DefaultBounds, DefaultBounds)
	}
	if diff := cmp.Diff([]string{"left-rail->right-rail"}, pairs(r)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	right, _ := r.RightRail()
	if got, want := right.Position.X, DefaultBounds.Width-RailWidth; got != want {
		t.Errorf("right rail x = %v, want %v", got, want)
	}
	h, _ := right.Handle(HandleIn)
	if h.Position != (Point{X: right.Position.X, Y: RailWireOffset}) {
		t.Errorf("right rail handle at %+v", h.Position)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAddNodeLocalIDs(t *testing.T) {
	r := NewRung("main", Size{})
	_ = r.AddNode(NewContact("a", "A", ""))
	_ = r.AddNode(NewPlaceholder("ph", "a", SideLeft))
	_ = r.AddNode(NewCoil("b", "B", ""))

	got := map[string]int{}
	for _, n := range r.Nodes {
		got[n.ID] = n.LocalID
	}
	want := map[string]int{LeftRailID: 1, RightRailID: 2, "a": 3, "ph": 0, "b": 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("local ids (-want +got):\n%s", diff)
	}

	if err := r.AddNode(NewContact("a", "A", "")); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate: err = %v", err)
	}
	if err := r.AddNode(Node{Kind: KindContact}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty id: err = %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := chain(t, "a")
	_ = r.AddNode(NewBlock("blk", BlockData{TypeName: "TON", Inputs: []Port{{Name: "IN"}}, Outputs: []Port{{Name: "Q"}}}))
	c := r.Clone()

	c.Nodes[0].Position.X = 99
	c.Nodes[0].Handles[0].Offset.Y = 99
	c.Edges[0].Target = "x"
	b, _ := c.Node("blk")
	d, _ := b.Block()
	d.Inputs[0].Name = "changed"

	if r.Nodes[0].Position.X == 99 || r.Nodes[0].Handles[0].Offset.Y == 99 {
		t.Error("node changes leaked into the original")
	}
	if r.Edges[0].Target == "x" {
		t.Error("edge changes leaked into the original")
	}
	orig, _ := r.Node("blk")
	if od, _ := orig.Block(); od.Inputs[0].Name != "IN" {
		t.Error("block ports are shared between clones")
	}
}

func TestRenameNode(t *testing.T) {
	r := branchRung(t)
	_ = r.AddNode(NewPlaceholder("ph", "open", SideRight))
	if err := r.RenameNode("open", "o"); err != nil {
		t.Fatal(err)
	}
	c, _ := r.Node("close")
	if d, _ := c.Parallel(); d.PairedID != "o" {
		t.Errorf("close paired with %q", d.PairedID)
	}
	p, _ := r.Node("ph")
	if d, _ := p.Placeholder(); d.RelatedID != "o" {
		t.Errorf("placeholder related to %q", d.RelatedID)
	}
	for _, e := range r.Edges {
		if e.Source == "open" || e.Target == "open" {
			t.Errorf("edge %s still references the old id", e.ID)
		}
		if e.ID != EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle) {
			t.Errorf("edge id %s not recomputed", e.ID)
		}
	}
	if err := r.ValidateTransient(); err != nil {
		t.Errorf("ValidateTransient after rename: %v", err)
	}
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	r := chain(t, "a", "b")
	if !r.RemoveNode("a") {
		t.Fatal("RemoveNode reported no removal")
	}
	if diff := cmp.Diff([]string{"b->right-rail"}, pairs(r)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	if r.RemoveNode("a") {
		t.Error("second RemoveNode reported a removal")
	}
}

func TestLaneEdges(t *testing.T) {
	r := branchRung(t)
	tests := []struct {
		node string
		lane Lane
		out  string
		in   string
	}{
		{"open", LaneSerial, "a", LeftRailID},
		{"open", LaneParallel, "b", LeftRailID},
		{"close", LaneSerial, RightRailID, "a"},
		{"close", LaneParallel, RightRailID, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.node+"/"+tt.lane.String(), func(t *testing.T) {
			if tt.node == "open" {
				e, ok := r.LaneOut(tt.node, tt.lane)
				if !ok || e.Target != tt.out {
					t.Errorf("LaneOut = %+v, %v; want target %s", e, ok, tt.out)
				}
				return
			}
			e, ok := r.LaneIn(tt.node, tt.lane)
			if !ok || e.Source != tt.in {
				t.Errorf("LaneIn = %+v, %v; want source %s", e, ok, tt.in)
			}
		})
	}

	if _, lane, ok := r.Predecessor("b"); !ok || lane != LaneParallel {
		t.Errorf("Predecessor(b) lane = %v, %v", lane, ok)
	}
	if _, _, ok := r.Predecessor("close"); ok {
		t.Error("Predecessor(close) should be ambiguous")
	}
}
