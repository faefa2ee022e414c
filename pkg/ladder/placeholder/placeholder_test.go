package placeholder

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/laddertest"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
)

func laidOut(t *testing.T, r *ladder.Rung) *ladder.Rung {
	t.Helper()
	out, err := layout.Recompute(r)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	return out
}

func placeholderIDs(r *ladder.Rung) []string {
	var ids []string
	for _, n := range r.Placeholders() {
		ids = append(ids, n.ID)
	}
	slices.Sort(ids)
	return ids
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *ladder.Rung
		want  []string
	}{
		{
			name:  "empty rung",
			build: func(t *testing.T) *ladder.Rung { return laddertest.Chain(t) },
			want:  []string{"ph_right-rail_left"},
		},
		{
			name:  "single contact",
			build: func(t *testing.T) *ladder.Rung { return laddertest.Chain(t, "a") },
			want:  []string{"ph_a_left", "ph_a_right", "pph_a"},
		},
		{
			name:  "branch",
			build: func(t *testing.T) *ladder.Rung { return laddertest.Branch(t) },
			want: []string{
				"ph_a_left", "ph_a_right", "ph_b_left", "ph_b_right",
				"ph_open_left", "ph_right-rail_left", "pph_a", "pph_b",
			},
		},
		{
			name:  "nested branch",
			build: func(t *testing.T) *ladder.Rung { return laddertest.Nested(t) },
			want: []string{
				"ph_a_left", "ph_a_right", "ph_b_left", "ph_b_right",
				"ph_c_left", "ph_c_right", "ph_close2_right", "ph_open2_left",
				"ph_open_left", "ph_right-rail_left", "pph_a", "pph_b", "pph_c",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := laidOut(t, tt.build(t))
			got, err := Render(r)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if diff := cmp.Diff(tt.want, placeholderIDs(got)); diff != "" {
				t.Errorf("placeholders (-want +got):\n%s", diff)
			}
			if err := got.ValidateTransient(); err != nil {
				t.Errorf("ValidateTransient: %v", err)
			}
			if len(r.Placeholders()) != 0 {
				t.Error("Render modified its input")
			}
		})
	}
}

func TestRenderExhaustive(t *testing.T) {
	r := laidOut(t, laddertest.Nested(t))
	got, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	sides := map[string]map[ladder.PlaceholderSide]bool{}
	for _, p := range got.Placeholders() {
		d, _ := p.Placeholder()
		if sides[d.RelatedID] == nil {
			sides[d.RelatedID] = map[ladder.PlaceholderSide]bool{}
		}
		sides[d.RelatedID][d.Side] = true
	}
	for _, n := range got.Nodes {
		if n.Kind == ladder.KindPowerRail || n.Kind.IsPlaceholder() || n.Kind == ladder.KindVariable {
			continue
		}
		if len(sides[n.ID]) == 0 && !slices.ContainsFunc(got.Placeholders(), func(p ladder.Node) bool {
			d, _ := p.Placeholder()
			return d.RelatedID != n.ID && adjacent(got, n.ID, d.RelatedID)
		}) {
			t.Errorf("%s has no adjacent placeholder", n.ID)
		}
	}
}

// adjacent reports whether a power wire joins a and b.
func adjacent(r *ladder.Rung, a, b string) bool {
	for _, e := range r.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return r.IsPowerEdge(e)
		}
	}
	return false
}

func TestRenderOrderFollowsRelated(t *testing.T) {
	r := laidOut(t, laddertest.Chain(t, "a"))
	got, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	a := got.Index("a")
	if got.Index(ID("a", ladder.SideLeft)) != a-1 || got.Index(ID("a", ladder.SideRight)) != a+1 {
		t.Errorf("placeholders not stored next to a: %v", nodeIDs(got))
	}
}

func nodeIDs(r *ladder.Rung) []string {
	ids := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestStrip(t *testing.T) {
	r := laidOut(t, laddertest.Branch(t))
	withPh, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r, Strip(withPh)); diff != "" {
		t.Errorf("Strip(Render(r)) != r (-want +got):\n%s", diff)
	}
}

func TestNearest(t *testing.T) {
	r := laidOut(t, laddertest.Chain(t, "a"))
	r, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	left, _ := r.Node(ID("a", ladder.SideLeft))
	right, _ := r.Node(ID("a", ladder.SideRight))
	bottom, _ := r.Node(ParallelID("a"))

	tests := []struct {
		name string
		at   ladder.Point
		want string
	}{
		{"on left anchor", Anchor(*left), left.ID},
		{"right of contact", Anchor(*right).Add(ladder.Point{X: 50}), right.ID},
		{"below contact", Anchor(*bottom).Add(ladder.Point{Y: 30}), bottom.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(r, tt.at)
			if !ok || got.ID != tt.want {
				t.Errorf("Nearest(%+v) = %s, want %s", tt.at, got.ID, tt.want)
			}
		})
	}

	mid := ladder.Point{X: (Anchor(*left).X + Anchor(*right).X) / 2, Y: Anchor(*left).Y}
	got, _ := Nearest(r, mid)
	if got.ID != left.ID {
		t.Errorf("tie resolved to %s, want the first placeholder %s", got.ID, left.ID)
	}

	if _, ok := Nearest(laddertest.Chain(t, "a"), ladder.Point{}); ok {
		t.Error("Nearest found a placeholder in a rung without any")
	}
}

func TestSelectKeepsSingleSelection(t *testing.T) {
	r, err := Render(laidOut(t, laddertest.Chain(t, "a")))
	if err != nil {
		t.Fatal(err)
	}
	r, ok := Select(r, ID("a", ladder.SideLeft))
	if !ok {
		t.Fatal("Select failed")
	}
	r, ok = Select(r, ID("a", ladder.SideRight))
	if !ok {
		t.Fatal("Select failed")
	}
	sel, ok := Selected(r)
	if !ok || sel.ID != ID("a", ladder.SideRight) {
		t.Errorf("Selected = %s, %v", sel.ID, ok)
	}
	if err := r.ValidateTransient(); err != nil {
		t.Errorf("ValidateTransient: %v", err)
	}

	if _, ok := Select(r, "a"); ok {
		t.Error("Select accepted a contact")
	}
}
