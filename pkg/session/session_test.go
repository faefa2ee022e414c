package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/ladder/laddertest"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
	"github.com/matzehuels/ladderkit/pkg/observability"
)

type recordingHooks struct {
	ops []string
}

func (h *recordingHooks) OnEdit(_ context.Context, op string, _ int, _ time.Duration, _ error) {
	h.ops = append(h.ops, op)
}

func newSession(t *testing.T, r *ladder.Rung) *Session {
	t.Helper()
	s, err := New(r, time.Hour, edit.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewEmpty(t *testing.T) {
	s := newSession(t, nil)
	if err := s.Rung().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := len(s.Rung().Nodes); got != 2 {
		t.Errorf("empty rung has %d nodes, want 2", got)
	}
	if err := perrors.ValidateSessionID(s.ID); err != nil {
		t.Errorf("session id %q: %v", s.ID, err)
	}
	if s.IsExpired() {
		t.Error("new session already expired")
	}
}

func TestNewKeepsConfiguredLayout(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.ContactGap = 80
	saved, err := layout.Compute(laddertest.Chain(t, "a"), cfg)
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(saved, time.Hour, edit.Options{Layout: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	view, err := s.ShowPlaceholders()
	if err != nil {
		t.Fatal(err)
	}
	want := laddertest.Position(t, saved, "a")
	if got := laddertest.Position(t, view, "a"); got != want {
		t.Errorf("a at %v in the session, want %v as laid out", got, want)
	}

	// The slot left of a sits between the rail and a, not where the default
	// gaps would put it.
	pid := placeholder.ID("a", ladder.SideLeft)
	slot, ok := view.Node(pid)
	if !ok {
		t.Fatalf("view has no %s", pid)
	}
	if got, ok := s.SelectNearest(slot.Center()); !ok || got.ID != pid {
		t.Errorf("SelectNearest = %s, %v; want %s", got.ID, ok, pid)
	}
}

func TestAddRequiresPlaceholders(t *testing.T) {
	s := newSession(t, laddertest.Chain(t, "a"))
	before := s.Snapshot()
	out, err := s.Add(context.Background(), Element{Kind: ladder.KindCoil, Variable: "Motor"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, out); diff != "" {
		t.Errorf("Add without placeholders changed the rung (-want +got):\n%s", diff)
	}
}

func TestAddAtSelection(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetEditorHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	s := newSession(t, nil)
	if _, err := s.ShowPlaceholders(); err != nil {
		t.Fatal(err)
	}
	if !s.Select(placeholder.ID(ladder.RightRailID, ladder.SideLeft)) {
		t.Fatal("placeholder of the empty rung not offered")
	}
	out, err := s.Add(ctx, Element{Kind: ladder.KindContact, Variant: "negated", Variable: "Stop"})
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out.Placeholders()) != 0 {
		t.Error("placeholders left after Add")
	}
	els := out.Elements()
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1", len(els))
	}
	if got := els[0].BoundVariable(); got != "Stop" {
		t.Errorf("variable = %q, want Stop", got)
	}
	if els[0].LocalID == 0 {
		t.Error("inserted element has no local id")
	}
	if diff := cmp.Diff([]string{"add"}, hooks.ops); diff != "" {
		t.Errorf("hooks (-want +got):\n%s", diff)
	}
}

func TestAddBlockWithBindings(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, laddertest.Chain(t, "a"))
	s.ShowPlaceholders()
	s.Select(placeholder.ID("a", ladder.SideRight))
	out, err := s.Add(ctx, Element{
		Kind:     ladder.KindBlock,
		Variant:  "ton",
		Variable: "T1",
		Bindings: map[string]string{"PT": "T#2s", "ET": "Elapsed"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var blockID string
	for _, n := range out.Elements() {
		if n.Kind == ladder.KindBlock {
			blockID = n.ID
		}
	}
	if blockID == "" {
		t.Fatal("block not inserted")
	}
	got := map[string]string{}
	for _, id := range out.VariablesOf(blockID) {
		v, _ := out.Node(id)
		vd, _ := v.Variable()
		if vd.Name != "" {
			got[vd.Port] = vd.Name
		}
	}
	if diff := cmp.Diff(map[string]string{"PT": "T#2s", "ET": "Elapsed"}, got); diff != "" {
		t.Errorf("bindings (-want +got):\n%s", diff)
	}
}

func TestElementErrors(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		code perrors.Code
	}{
		{"unknown kind", Element{Kind: ladder.KindPowerRail}, perrors.ErrCodeInvalidElement},
		{"contact modifier", Element{Kind: ladder.KindContact, Variant: "set"}, perrors.ErrCodeInvalidElement},
		{"coil modifier", Element{Kind: ladder.KindCoil, Variant: "bogus"}, perrors.ErrCodeInvalidElement},
		{"bad variable", Element{Kind: ladder.KindCoil, Variable: "1abc"}, perrors.ErrCodeInvalidVariable},
		{"unknown block", Element{Kind: ladder.KindBlock, Variant: "NOPE"}, perrors.ErrCodeInvalidBlock},
		{"missing instance", Element{Kind: ladder.KindBlock, Variant: "TON"}, perrors.ErrCodeInvalidBlock},
		{"power port binding", Element{
			Kind: ladder.KindBlock, Variant: "TON", Variable: "T1",
			Bindings: map[string]string{"IN": "x"},
		}, perrors.ErrCodeInvalidBlock},
		{"unknown port binding", Element{
			Kind: ladder.KindBlock, Variant: "ADD",
			Bindings: map[string]string{"XYZ": "x"},
		}, perrors.ErrCodeInvalidBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.el.Node()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := perrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, laddertest.Branch(t))
	out, err := s.Remove(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a->right-rail", "left-rail->a"}, laddertest.PowerPairs(out)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(out, s.Rung()); diff != "" {
		t.Errorf("Rung() differs from Remove result (-want +got):\n%s", diff)
	}
}

func TestDragLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, laddertest.Chain(t, "a", "b"))
	before := s.Snapshot()

	if _, err := s.DragStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if !s.Dragging() {
		t.Fatal("not dragging")
	}
	if _, err := s.Remove(ctx, "b"); perrors.GetCode(err) != perrors.ErrCodeConflict {
		t.Errorf("Remove during drag: %v", err)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("drag changed the committed rung (-want +got):\n%s", diff)
	}

	if !s.Select(placeholder.ID("b", ladder.SideRight)) {
		t.Fatal("placeholder right of b not offered")
	}
	out, err := s.Drop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dragging() {
		t.Error("still dragging after drop")
	}
	if diff := cmp.Diff([]string{"a->right-rail", "b->a", "left-rail->b"}, laddertest.PowerPairs(out)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestDragCancel(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, laddertest.Branch(t))
	before := s.Snapshot()
	s.DragStart(ctx, "b")
	s.DragMove(ladder.Point{X: 0, Y: 0})
	out, err := s.Cancel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, out); diff != "" {
		t.Errorf("cancel changed the rung (-want +got):\n%s", diff)
	}
}

func TestDragStartOnRailIsIgnored(t *testing.T) {
	s := newSession(t, laddertest.Chain(t, "a"))
	s.DragStart(context.Background(), ladder.LeftRailID)
	if s.Dragging() {
		t.Error("rail drag started")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := newSession(t, laddertest.Chain(t, "a"))
	s.ShowPlaceholders()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var got Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != s.ID || !got.ExpiresAt.Equal(s.ExpiresAt) {
		t.Errorf("metadata mismatch: %s %v", got.ID, got.ExpiresAt)
	}
	if diff := cmp.Diff(s.Snapshot(), got.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("rung (-want +got):\n%s", diff)
	}
	if len(got.Rung().Placeholders()) == 0 {
		t.Error("pending placeholders lost")
	}
}

func TestUnmarshalWithoutRung(t *testing.T) {
	var s Session
	err := json.Unmarshal([]byte(`{"id":"x"}`), &s)
	if perrors.GetCode(err) != perrors.ErrCodeInvalidFormat {
		t.Errorf("err = %v", err)
	}
}
