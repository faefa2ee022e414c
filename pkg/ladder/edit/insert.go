package edit

import (
	"fmt"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
)

// Options configures the editing operations.
type Options struct {
	// Layout is applied to the result of every operation.
	Layout layout.Config

	// Bindings names the variables of a newly inserted block, keyed by port
	// name. Ports without a binding get an empty variable.
	Bindings map[string]string
}

// Add inserts element n at the selected placeholder of r and returns the new
// rung, with placeholders stripped and the layout recomputed.
//
// A default placeholder splices n into the wire next to the placeholder's
// related node; if that wire leaves a ParallelOpen on its parallel lane, n
// joins the parallel lane. A parallel placeholder opens a new branch around
// its related node with n on the parallel lane.
//
// Without a selected placeholder, or when the related node or its wires are
// gone, Add returns r unchanged and a nil error.
func Add(r *ladder.Rung, n ladder.Node, opts Options) (*ladder.Rung, error) {
	ph, ok := r.SelectedPlaceholder()
	if !ok {
		return r, nil
	}
	n, err := prepare(r, n)
	if err != nil {
		return nil, err
	}
	d, _ := ph.Placeholder()
	if _, ok := r.Node(d.RelatedID); !ok {
		return r, nil
	}

	out := r.Clone()
	idx := out.Index(ph.ID)
	if ph.Kind == ladder.KindParallelPlaceholder {
		ok, err = insertParallel(out, d.RelatedID, n)
	} else {
		ok, err = insertSerial(out, idx, d, n)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return r, nil
	}
	if err := bindVariables(out, n.ID, opts.Bindings); err != nil {
		return nil, err
	}
	return layout.Compute(placeholder.Strip(out), opts.Layout)
}

// AddAt selects the placeholder id and inserts n there.
func AddAt(r *ladder.Rung, n ladder.Node, placeholderID string, opts Options) (*ladder.Rung, error) {
	sel, ok := placeholder.Select(r, placeholderID)
	if !ok {
		return r, nil
	}
	return Add(sel, n, opts)
}

// prepare checks that n can be inserted into r and fills in its id and
// connectors when the caller left them out.
func prepare(r *ladder.Rung, n ladder.Node) (ladder.Node, error) {
	if !n.Kind.IsElement() {
		return n, perrors.New(perrors.ErrCodeInvalidElement, "cannot insert a %s", n.Kind)
	}
	if n.ID == "" {
		n.ID = ladder.NewID(string(n.Kind))
	}
	if _, ok := r.Node(n.ID); ok {
		return n, perrors.Wrap(perrors.ErrCodeConflict, ladder.ErrDuplicateNode, "node %s already exists", n.ID)
	}
	if len(n.Handles) == 0 {
		rebuilt, ok := ladder.Rebuild(n)
		if !ok {
			return n, perrors.New(perrors.ErrCodeInvalidElement, "%s has no payload", n.ID)
		}
		n = rebuilt
	}
	_, hasIn := n.InputHandle()
	_, hasOut := n.OutputHandle()
	if !hasIn || !hasOut {
		return n, perrors.New(perrors.ErrCodeInvalidElement, "%s has no power connectors", n.ID)
	}
	return n, nil
}

// insertSerial splices n after the predecessor implied by a default
// placeholder. It reports false when the predecessor wire is missing.
func insertSerial(r *ladder.Rung, idx int, d ladder.PlaceholderData, n ladder.Node) (bool, error) {
	pred, lane := d.RelatedID, ladder.LaneSerial
	if d.Side == ladder.SideLeft {
		e, l, ok := r.Predecessor(d.RelatedID)
		if !ok {
			return false, nil
		}
		pred, lane = e.Source, l
	}
	if err := r.InsertNode(idx, n); err != nil {
		return false, err
	}
	if _, err := r.Connect(pred, n.ID, lane); err != nil {
		return false, fmt.Errorf("insert %s after %s: %w", n.ID, pred, err)
	}
	return true, nil
}

// insertParallel opens a branch around above: a fresh ParallelOpen takes
// above's incoming wire, a rebuilt above runs on the serial lane, n runs on
// the parallel lane, and a ParallelClose hands over to above's old successor.
func insertParallel(r *ladder.Rung, aboveID string, n ladder.Node) (bool, error) {
	above, ok := r.Node(aboveID)
	if !ok || !above.Kind.IsElement() {
		return false, nil
	}
	in, _, ok := r.Predecessor(aboveID)
	if !ok {
		return false, nil
	}
	out, ok := r.SerialOut(aboveID)
	if !ok {
		return false, nil
	}
	rebuilt, ok := ladder.Rebuild(*above)
	if !ok {
		return false, perrors.BrokenGraph(aboveID, "cannot rebuild %s", above.Kind)
	}

	openID, closeID := ladder.NewID("parallel_open"), ladder.NewID("parallel_close")
	r.Unwire(in.ID)
	r.Unwire(out.ID)
	if err := r.ReplaceNode(rebuilt); err != nil {
		return false, err
	}
	i := r.Index(aboveID)
	for j, node := range []ladder.Node{
		ladder.NewParallelOpen(openID, closeID),
		n,
		ladder.NewParallelClose(closeID, openID),
	} {
		at := i + []int{0, 2, 3}[j]
		if err := r.InsertNode(at, node); err != nil {
			return false, err
		}
	}

	nIn, _ := n.InputHandle()
	nOut, _ := n.OutputHandle()
	for _, e := range []ladder.Edge{
		ladder.NewEdge(in.Source, in.SourceHandle, openID, ladder.HandleIn),
		ladder.NewEdge(openID, ladder.HandleOut, aboveID, in.TargetHandle),
		ladder.NewEdge(aboveID, out.SourceHandle, closeID, ladder.HandleIn),
		ladder.NewEdge(closeID, ladder.HandleOut, out.Target, out.TargetHandle),
		ladder.NewEdge(openID, ladder.HandleParallelOut, n.ID, nIn.ID),
		ladder.NewEdge(n.ID, nOut.ID, closeID, ladder.HandleParallelIn),
	} {
		if err := r.WireChecked(e); err != nil {
			return false, fmt.Errorf("open branch around %s: %w", aboveID, err)
		}
	}
	return true, nil
}
