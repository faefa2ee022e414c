package ladder

import (
	"fmt"
	"slices"
)

// LocalIDStride is the size of the export id range reserved for each rung of
// a diagram.
const LocalIDStride = 10000

// Diagram is the ladder body of one program organisation unit: an ordered
// list of rungs evaluated top to bottom.
type Diagram struct {
	Name  string  `json:"name"`
	Rungs []*Rung `json:"rungs"`

	NextBase int `json:"nextBase"`
}

// NewDiagram returns a diagram with no rungs.
func NewDiagram(name string) *Diagram {
	return &Diagram{Name: name}
}

// AddRung appends an empty rung and returns it. Each rung gets its own
// export id range so local ids stay unique across the diagram.
func (d *Diagram) AddRung(id string, bounds Size) *Rung {
	if id == "" {
		id = NewID("rung")
	}
	r := NewRung(id, bounds)
	r.Rebase(d.allocBase())
	d.Rungs = append(d.Rungs, r)
	return r
}

// AppendRung adds an existing rung, moving it into a fresh id range when its
// range overlaps one already in use.
func (d *Diagram) AppendRung(r *Rung) {
	if slices.ContainsFunc(d.Rungs, func(x *Rung) bool { return overlaps(x.LocalIDBase, r.LocalIDBase) }) {
		r.Rebase(d.allocBase())
	}
	if r.LocalIDBase >= d.NextBase {
		d.NextBase = r.LocalIDBase + LocalIDStride
	}
	d.Rungs = append(d.Rungs, r)
}

// Rung returns the rung with the given id.
func (d *Diagram) Rung(id string) (*Rung, bool) {
	i := d.index(id)
	if i < 0 {
		return nil, false
	}
	return d.Rungs[i], true
}

// ReplaceRung swaps the rung with r.ID for r, as after an edit.
func (d *Diagram) ReplaceRung(r *Rung) error {
	i := d.index(r.ID)
	if i < 0 {
		return fmt.Errorf("rung %q: %w", r.ID, ErrUnknownNode)
	}
	d.Rungs[i] = r
	return nil
}

// RemoveRung deletes the rung with the given id and reports whether it
// existed. Export id ranges are never reused.
func (d *Diagram) RemoveRung(id string) bool {
	i := d.index(id)
	if i < 0 {
		return false
	}
	d.Rungs = slices.Delete(d.Rungs, i, i+1)
	return true
}

// MoveRung moves the rung with the given id to position to.
func (d *Diagram) MoveRung(id string, to int) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("rung %q: %w", id, ErrUnknownNode)
	}
	if to < 0 || to >= len(d.Rungs) {
		return fmt.Errorf("rung position %d out of range [0,%d)", to, len(d.Rungs))
	}
	r := d.Rungs[i]
	d.Rungs = slices.Delete(d.Rungs, i, i+1)
	d.Rungs = slices.Insert(d.Rungs, to, r)
	return nil
}

func (d *Diagram) index(id string) int {
	return slices.IndexFunc(d.Rungs, func(r *Rung) bool { return r.ID == id })
}

// overlaps reports whether the id ranges starting at a and b share an id.
func overlaps(a, b int) bool {
	return a < b+LocalIDStride && b < a+LocalIDStride
}

func (d *Diagram) allocBase() int {
	base := d.NextBase
	d.NextBase += LocalIDStride
	return base
}

// Rebase moves every local id of r into the range starting at base.
func (r *Rung) Rebase(base int) {
	for i := range r.Nodes {
		if r.Nodes[i].LocalID != 0 {
			r.Nodes[i].LocalID = r.Nodes[i].LocalID - r.LocalIDBase + base
		}
	}
	r.LocalIDBase = base
}
