package edit

import (
	"errors"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
)

// Remove deletes the element id and its synthetic variables, joins its
// predecessor to its successor, prunes branches left with an empty lane and
// recomputes the layout.
//
// Ids that do not name an element of r, and elements without the expected
// wires, leave r unchanged with a nil error.
func Remove(r *ladder.Rung, id string, opts Options) (*ladder.Rung, error) {
	n, ok := r.Node(id)
	if !ok || !n.Kind.IsElement() {
		return r, nil
	}
	out := placeholder.Strip(r)
	succ, ok := out.SerialOut(id)
	if !ok {
		return r, nil
	}
	if _, err := out.Disconnect(id, succ.Target); err != nil {
		if errors.Is(err, ladder.ErrNotConnected) {
			return r, nil
		}
		return nil, err
	}
	for _, v := range out.VariablesOf(id) {
		out.RemoveNode(v)
	}
	out.RemoveNode(id)
	if _, err := Prune(out); err != nil {
		return nil, err
	}
	return layout.Compute(out, opts.Layout)
}

// RemoveAll removes the given elements one after the other. Each removal sees
// the rung as pruned and laid out by the previous one.
func RemoveAll(r *ladder.Rung, ids []string, opts Options) (*ladder.Rung, error) {
	var err error
	for _, id := range ids {
		if r, err = Remove(r, id, opts); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Prune collapses, in place, every branch that has an empty lane. When one
// lane still holds nodes they take the place of the branch on the enclosing
// lane; when both are empty the open's predecessor is wired straight to the
// close's successor. Pruning repeats until no branch with an empty lane is
// left, so nested branches emptied by one removal collapse together. It
// returns the ids of the removed ParallelOpen nodes.
func Prune(r *ladder.Rung) ([]string, error) {
	var collapsed []string
	for {
		openID, closeID, empty, err := nextEmptyBranch(r)
		if err != nil {
			return collapsed, err
		}
		if openID == "" {
			return collapsed, nil
		}
		if err := collapse(r, openID, closeID, empty); err != nil {
			return collapsed, err
		}
		collapsed = append(collapsed, openID)
	}
}

// laneState tells which lanes of a branch are empty.
type laneState struct {
	serial, parallel bool
}

func nextEmptyBranch(r *ladder.Rung) (string, string, laneState, error) {
	for _, n := range r.Nodes {
		if n.Kind != ladder.KindParallelClose {
			continue
		}
		openID, closeID, err := ladder.Pair(r, n.ID)
		if err != nil {
			return "", "", laneState{}, err
		}
		var st laneState
		for _, l := range []ladder.Lane{ladder.LaneSerial, ladder.LaneParallel} {
			e, ok := r.LaneOut(openID, l)
			if !ok {
				return "", "", laneState{}, perrors.BrokenGraph(openID, "no %s lane output", l)
			}
			empty := e.Target == closeID
			if l == ladder.LaneSerial {
				st.serial = empty
			} else {
				st.parallel = empty
			}
		}
		if st.serial || st.parallel {
			return openID, closeID, st, nil
		}
	}
	return "", "", laneState{}, nil
}

func collapse(r *ladder.Rung, openID, closeID string, st laneState) error {
	in := r.PowerIn(openID)
	if len(in) != 1 {
		return perrors.BrokenGraph(openID, "parallel open has %d inputs", len(in))
	}
	pred := in[0]
	succ, ok := r.SerialOut(closeID)
	if !ok {
		return perrors.BrokenGraph(closeID, "parallel close has no output")
	}

	if st.serial && st.parallel {
		r.RemoveNode(openID)
		r.RemoveNode(closeID)
		r.Wire(ladder.NewEdge(pred.Source, pred.SourceHandle, succ.Target, succ.TargetHandle))
		return nil
	}

	keep := ladder.LaneSerial
	if st.serial {
		keep = ladder.LaneParallel
	}
	first, ok := r.LaneOut(openID, keep)
	if !ok {
		return perrors.BrokenGraph(openID, "no %s lane output", keep)
	}
	last, ok := r.LaneIn(closeID, keep)
	if !ok {
		return perrors.BrokenGraph(closeID, "no %s lane input", keep)
	}
	r.RemoveNode(openID)
	r.RemoveNode(closeID)
	r.Wire(ladder.NewEdge(pred.Source, pred.SourceHandle, first.Target, first.TargetHandle))
	r.Wire(ladder.NewEdge(last.Source, last.SourceHandle, succ.Target, succ.TargetHandle))
	return nil
}
