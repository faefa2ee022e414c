package drag

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
)

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Dragging
)

// String returns "idle" or "dragging".
func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// GhostID returns the id of the stand-in node used while id is dragged.
func GhostID(id string) string { return "ghost_" + id }

// Drag is the overlay of one drag gesture on top of a committed rung. The
// committed rung is never modified; the overlay keeps its own working copy in
// which a ghost holds the dragged element's place and wires, surrounded by
// placeholders.
type Drag struct {
	state    State
	base     *ladder.Rung
	work     *ladder.Rung
	original ladder.Node
	ghostID  string
	opts     edit.Options
}

// Start begins dragging element id of the committed rung r. Dragging
// anything but a contact, coil or block yields an idle Drag whose Drop and
// Cancel return r unchanged.
func Start(r *ladder.Rung, id string, opts edit.Options) (*Drag, error) {
	d := &Drag{state: Idle, base: r, work: r, opts: opts}
	n, ok := r.Node(id)
	if !ok || !n.Kind.IsElement() {
		return d, nil
	}
	ghostID := GhostID(id)
	if _, ok := r.Node(ghostID); ok {
		return nil, perrors.New(perrors.ErrCodeConflict, "node %s is already being dragged", id)
	}

	work := placeholder.Strip(r)
	ghost := n.Clone()
	ghost.ID = ghostID
	work.Nodes[work.Index(id)] = ghost
	work.RepointEdges(id, ghostID)

	work, err := placeholder.Render(work)
	if err != nil {
		return nil, err
	}
	d.state = Dragging
	d.work = work
	d.original = n.Clone()
	d.ghostID = ghostID
	return d, nil
}

// State returns the phase of the gesture.
func (d *Drag) State() State { return d.state }

// NodeID returns the id of the dragged element, or "" for an idle drag.
func (d *Drag) NodeID() string { return d.original.ID }

// GhostID returns the id of the ghost, or "" for an idle drag.
func (d *Drag) GhostID() string { return d.ghostID }

// Rung returns the rung to display: the working copy with ghost and
// placeholders while dragging, the committed rung otherwise.
func (d *Drag) Rung() *ladder.Rung {
	if d.state == Dragging {
		return d.work
	}
	return d.base
}

// Move selects the placeholder nearest to the pointer and returns it. The
// topology is not touched.
func (d *Drag) Move(p ladder.Point) (ladder.Node, bool) {
	if d.state != Dragging {
		return ladder.Node{}, false
	}
	work, ok := placeholder.SelectNearest(d.work, p)
	if !ok {
		return ladder.Node{}, false
	}
	d.work = work
	return placeholder.Selected(work)
}

// Select marks placeholder id as the drop target.
func (d *Drag) Select(id string) bool {
	if d.state != Dragging {
		return false
	}
	work, ok := placeholder.Select(d.work, id)
	if ok {
		d.work = work
	}
	return ok
}

// Drop ends the gesture at the selected placeholder and returns the new
// committed rung. Dropping on one of the ghost's own placeholders, or with
// nothing selected, puts the element back where it was. Otherwise the element
// keeps its id and data, is inserted at the placeholder, and the ghost is
// removed, which prunes any branch the element leaves empty.
func (d *Drag) Drop() (*ladder.Rung, error) {
	if d.state != Dragging {
		return d.base, nil
	}
	sel, ok := d.work.SelectedPlaceholder()
	if !ok {
		return d.restore()
	}
	if pd, _ := sel.Placeholder(); pd.RelatedID == d.ghostID {
		return d.restore()
	}

	added, err := edit.Add(d.work, d.original, d.opts)
	if err != nil {
		return nil, err
	}
	if added == d.work {
		return d.restore()
	}
	out, err := edit.Remove(added, d.ghostID, d.opts)
	if err != nil {
		return nil, err
	}
	return d.finish(out), nil
}

// Cancel ends the gesture and puts the element back where it was.
func (d *Drag) Cancel() (*ladder.Rung, error) {
	if d.state != Dragging {
		return d.base, nil
	}
	return d.restore()
}

// restore promotes the ghost back to the original element.
func (d *Drag) restore() (*ladder.Rung, error) {
	work := placeholder.Strip(d.work)
	i := work.Index(d.ghostID)
	if i < 0 {
		return nil, perrors.BrokenGraph(d.ghostID, "ghost vanished during drag")
	}
	work.Nodes[i] = d.original.Clone()
	work.RepointEdges(d.ghostID, d.original.ID)
	out, err := layout.Compute(work, d.opts.Layout)
	if err != nil {
		return nil, err
	}
	return d.finish(out), nil
}

func (d *Drag) finish(r *ladder.Rung) *ladder.Rung {
	d.state = Idle
	d.base = r
	d.work = r
	return r
}
