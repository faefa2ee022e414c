package ladder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
)

func nestedRung(t *testing.T) *Rung {
	t.Helper()
	r := branchRung(t)
	wrap(t, r, "b", "open2", "close2", "c")
	return r
}

func TestParallelDepthAndNodes(t *testing.T) {
	r := nestedRung(t)
	all, err := ParallelDepthAndNodes(r)
	if err != nil {
		t.Fatalf("ParallelDepthAndNodes: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d branches, want 2", len(all))
	}

	outer, inner := all[0], all[1]
	if outer.Open != "open" || outer.Close != "close" || outer.Depth != 0 {
		t.Errorf("outer = %s/%s depth %d", outer.Open, outer.Close, outer.Depth)
	}
	if inner.Open != "open2" || inner.Close != "close2" || inner.Depth != 1 {
		t.Errorf("inner = %s/%s depth %d", inner.Open, inner.Close, inner.Depth)
	}
	if diff := cmp.Diff([]string{"a"}, outer.Serial.Nodes); diff != "" {
		t.Errorf("outer serial (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"open2", "b", "c", "close2"}, outer.Parallel.Nodes); diff != "" {
		t.Errorf("outer parallel (-want +got):\n%s", diff)
	}
	if len(outer.Parallel.Direct) != 0 || len(outer.Parallel.Children) != 1 {
		t.Errorf("outer parallel direct=%v children=%d", outer.Parallel.Direct, len(outer.Parallel.Children))
	}
	if outer.Tallest != ContactSize {
		t.Errorf("Tallest = %v, want %v", outer.Tallest, ContactSize)
	}
}

func TestNodesInsideAnyParallel(t *testing.T) {
	r := nestedRung(t)
	got, err := NodesInsideAnyParallel(r)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"a": true, "open2": true, "b": true, "c": true, "close2": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inside (-want +got):\n%s", diff)
	}
}

func TestDeepestNodesInsideParallels(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Rung
		want  map[string]bool
	}{
		{"no branch", func(t *testing.T) *Rung { return chain(t, "a") }, map[string]bool{}},
		{"single branch", branchRung, map[string]bool{"a": true, "b": true}},
		{"nested", nestedRung, map[string]bool{"a": true, "b": true, "c": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeepestNodesInsideParallels(tt.build(t))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("deepest (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPairBroken(t *testing.T) {
	r := branchRung(t)
	n, _ := r.Node("close")
	n.Data = ParallelData{PairedID: "elsewhere"}

	_, _, err := Pair(r, "open")
	bg, ok := perrors.IsBrokenGraph(err)
	if !ok {
		t.Fatalf("err = %v, want BrokenGraphError", err)
	}
	if bg.NodeID != "open" {
		t.Errorf("NodeID = %q, want open", bg.NodeID)
	}
	if _, err := ParallelDepthAndNodes(r); err == nil {
		t.Error("ParallelDepthAndNodes accepted a one-sided pair")
	}
}
