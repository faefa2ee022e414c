package ladder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConnect(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Rung
		src   string
		lane  Lane
		want  []string
	}{
		{
			name:  "between rails",
			build: func(t *testing.T) *Rung { return chain(t) },
			src:   LeftRailID,
			want:  []string{"left-rail->x", "x->right-rail"},
		},
		{
			name:  "after element",
			build: func(t *testing.T) *Rung { return chain(t, "a", "b") },
			src:   "a",
			want:  []string{"a->x", "b->right-rail", "left-rail->a", "x->b"},
		},
		{
			name:  "parallel lane",
			build: branchRung,
			src:   "open",
			lane:  LaneParallel,
			want: []string{
				"a->close", "b->close", "close->right-rail", "left-rail->open",
				"open->a", "open->x", "x->b",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build(t)
			if err := r.AddNode(NewCoil("x", "X", CoilNormal)); err != nil {
				t.Fatal(err)
			}
			if _, err := r.Connect(tt.src, "x", tt.lane); err != nil {
				t.Fatalf("Connect: %v", err)
			}
			if diff := cmp.Diff(tt.want, pairs(r)); diff != "" {
				t.Errorf("edges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConnectKeepsHandles(t *testing.T) {
	r := branchRung(t)
	_ = r.AddNode(NewContact("x", "X", ContactNormal))
	created, err := r.Connect("b", "x", LaneSerial)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d edges, want 2", len(created))
	}
	if got := created[1]; got.Target != "close" || got.TargetHandle != HandleParallelIn {
		t.Errorf("successor wire = %+v, want into close parallel input", got)
	}
}

func TestConnectUnknownNode(t *testing.T) {
	r := chain(t)
	if _, err := r.Connect(LeftRailID, "missing", LaneSerial); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}

func TestDisconnectInvertsConnect(t *testing.T) {
	builds := map[string]func(t *testing.T) *Rung{
		"chain":  func(t *testing.T) *Rung { return chain(t, "a", "b", "c") },
		"branch": branchRung,
	}
	for name, build := range builds {
		t.Run(name, func(t *testing.T) {
			r := build(t)
			for _, src := range []string{LeftRailID, "a"} {
				for _, lane := range []Lane{LaneSerial, LaneParallel} {
					if r.Kind(src) == "" {
						continue
					}
					before := sortedEdges(r)
					work := r.Clone()
					_ = work.AddNode(NewContact("x", "X", ContactNormal))
					created, err := work.Connect(src, "x", lane)
					if err != nil {
						t.Fatalf("Connect(%s): %v", src, err)
					}
					if len(created) != 2 {
						t.Fatalf("expected a splice, got %d edges", len(created))
					}
					if _, err := work.Disconnect("x", created[1].Target); err != nil {
						t.Fatalf("Disconnect: %v", err)
					}
					work.RemoveNode("x")
					if diff := cmp.Diff(before, sortedEdges(work)); diff != "" {
						t.Errorf("src=%s lane=%s (-want +got):\n%s", src, lane, diff)
					}
				}
			}
		})
	}
}

func TestDisconnectNotConnected(t *testing.T) {
	r := chain(t, "a", "b")
	if _, err := r.Disconnect("a", "right-rail"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if _, err := r.Disconnect(LeftRailID, "a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("left rail: err = %v, want ErrNotConnected", err)
	}
}
