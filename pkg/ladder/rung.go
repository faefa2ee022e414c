package ladder

import (
	"cmp"
	"errors"
	"slices"
)

var (
	// ErrUnknownNode is returned when an operation references a node id that
	// is not part of the rung.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned by [Rung.AddNode] and [Rung.InsertNode]
	// when a node with the same id already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidNodeID is returned when a node id is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownHandle is returned by [Rung.Wire] when an endpoint does not
	// own the referenced handle.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrLocalIDsExhausted is returned when a rung holds more numbered nodes
	// than its export id range can take.
	ErrLocalIDsExhausted = errors.New("local id range exhausted")
)

// Default rail ids for rungs built with NewRung.
const (
	LeftRailID  = "left-rail"
	RightRailID = "right-rail"
)

// DefaultBounds is the canvas floor used when a rung does not set its own.
var DefaultBounds = Size{Width: 600, Height: RailHeight}

// Rung is one ladder circuit between the left and right power rails: an
// ordered arena of nodes addressed by id, and the wires between them.
//
// Nodes reference each other only by id (edges, ParallelData.PairedID,
// PlaceholderData.RelatedID, VariableData.BlockID); there are no pointers
// between nodes, so a Rung can be cloned and serialized freely.
//
// Rung methods mutate the receiver. The editing engines in the sub-packages
// clone first and never modify their input. A Rung is not safe for
// concurrent use.
type Rung struct {
	ID            string `json:"id"`
	Nodes         []Node `json:"nodes"`
	Edges         []Edge `json:"edges"`
	DefaultBounds Size   `json:"defaultBounds"`

	// LocalIDBase and NextLocalID allocate the numeric ids written to the
	// PLCopen export. Ids are handed out once and never reused.
	LocalIDBase int `json:"localIdBase,omitempty"`
	NextLocalID int `json:"nextLocalId"`
}

// NewRung returns an empty rung: a left rail wired directly to a right rail.
func NewRung(id string, bounds Size) *Rung {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = DefaultBounds
	}
	r := &Rung{ID: id, DefaultBounds: bounds}
	left := NewLeftRail(LeftRailID)
	right := NewRightRail(RightRailID)
	right.Position = Point{X: bounds.Width - RailWidth}
	_ = r.AddNode(left)
	_ = r.AddNode(right)
	r.Wire(NewEdge(LeftRailID, HandleOut, RightRailID, HandleIn))
	r.refreshHandles()
	return r
}

// Clone returns a deep copy of r.
func (r *Rung) Clone() *Rung {
	c := *r
	c.Nodes = make([]Node, len(r.Nodes))
	for i, n := range r.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Edges = slices.Clone(r.Edges)
	return &c
}

// AllocLocalID returns the next numeric export id. Ids stay below
// LocalIDBase+[LocalIDStride]: when the range is used up, the ids of the
// nodes are packed to its front in their current order first.
func (r *Rung) AllocLocalID() (int, error) {
	if r.NextLocalID+1 >= LocalIDStride {
		r.CompactLocalIDs()
		if r.NextLocalID+1 >= LocalIDStride {
			return 0, ErrLocalIDsExhausted
		}
	}
	r.NextLocalID++
	return r.LocalIDBase + r.NextLocalID, nil
}

// CompactLocalIDs renumbers the local ids of r as LocalIDBase+1,
// LocalIDBase+2, ... keeping their relative order.
func (r *Rung) CompactLocalIDs() {
	var numbered []int
	for i, n := range r.Nodes {
		if n.LocalID != 0 {
			numbered = append(numbered, i)
		}
	}
	slices.SortFunc(numbered, func(a, b int) int {
		return cmp.Compare(r.Nodes[a].LocalID, r.Nodes[b].LocalID)
	})
	for k, i := range numbered {
		r.Nodes[i].LocalID = r.LocalIDBase + k + 1
	}
	r.NextLocalID = len(numbered)
}

// Index returns the position of the node with the given id, or -1.
func (r *Rung) Index(id string) int {
	return slices.IndexFunc(r.Nodes, func(n Node) bool { return n.ID == id })
}

// Node returns the node with the given id and true, or nil and false.
// The pointer refers into the rung and is invalidated by insertions and
// removals.
func (r *Rung) Node(id string) (*Node, bool) {
	if i := r.Index(id); i >= 0 {
		return &r.Nodes[i], true
	}
	return nil, false
}

// Kind returns the kind of the node with the given id, or "" if absent.
func (r *Rung) Kind(id string) Kind {
	if n, ok := r.Node(id); ok {
		return n.Kind
	}
	return ""
}

// LeftRail returns the left power rail.
func (r *Rung) LeftRail() (*Node, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].IsRail(RailLeft) {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// RightRail returns the right power rail.
func (r *Rung) RightRail() (*Node, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].IsRail(RailRight) {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// AddNode appends n to the rung, allocating a local id if it has none.
func (r *Rung) AddNode(n Node) error {
	return r.InsertNode(len(r.Nodes), n)
}

// InsertNode inserts n at index i (clamped to the node list bounds).
// Placeholders never receive a local id.
func (r *Rung) InsertNode(i int, n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if r.Index(n.ID) >= 0 {
		return ErrDuplicateNode
	}
	if n.LocalID == 0 && !n.Kind.IsPlaceholder() {
		id, err := r.AllocLocalID()
		if err != nil {
			return err
		}
		n.LocalID = id
	}
	i = max(0, min(i, len(r.Nodes)))
	r.Nodes = slices.Insert(r.Nodes, i, n)
	return nil
}

// ReplaceNode swaps the node with n.ID for n, keeping its index.
func (r *Rung) ReplaceNode(n Node) error {
	i := r.Index(n.ID)
	if i < 0 {
		return ErrUnknownNode
	}
	r.Nodes[i] = n
	return nil
}

// RemoveNode deletes the node with the given id together with every edge
// touching it. It reports whether a node was removed.
func (r *Rung) RemoveNode(id string) bool {
	i := r.Index(id)
	if i < 0 {
		return false
	}
	r.Nodes = slices.Delete(r.Nodes, i, i+1)
	r.Edges = slices.DeleteFunc(r.Edges, func(e Edge) bool { return e.Source == id || e.Target == id })
	return true
}

// RenameNode changes a node id and rewrites every reference to it: edges,
// the paired id of its branch partner, placeholder relations and block
// bindings of variables.
func (r *Rung) RenameNode(oldID, newID string) error {
	if newID == "" {
		return ErrInvalidNodeID
	}
	i := r.Index(oldID)
	if i < 0 {
		return ErrUnknownNode
	}
	if r.Index(newID) >= 0 {
		return ErrDuplicateNode
	}
	r.Nodes[i].ID = newID
	for j := range r.Edges {
		e := &r.Edges[j]
		if e.Source == oldID {
			e.Source = newID
		}
		if e.Target == oldID {
			e.Target = newID
		}
		e.ID = EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	}
	for j := range r.Nodes {
		switch d := r.Nodes[j].Data.(type) {
		case ParallelData:
			if d.PairedID == oldID {
				d.PairedID = newID
				r.Nodes[j].Data = d
			}
		case PlaceholderData:
			if d.RelatedID == oldID {
				d.RelatedID = newID
				r.Nodes[j].Data = d
			}
		case VariableData:
			if d.BlockID == oldID {
				d.BlockID = newID
				r.Nodes[j].Data = d
			}
		}
	}
	return nil
}

// Wire appends e unless an edge with the same id already exists.
func (r *Rung) Wire(e Edge) {
	if e.ID == "" {
		e.ID = EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	}
	if slices.ContainsFunc(r.Edges, func(x Edge) bool { return x.ID == e.ID }) {
		return
	}
	r.Edges = append(r.Edges, e)
}

// WireChecked is Wire with endpoint and handle validation.
func (r *Rung) WireChecked(e Edge) error {
	src, ok := r.Node(e.Source)
	if !ok {
		return ErrUnknownNode
	}
	if _, ok := src.Handle(e.SourceHandle); !ok {
		return ErrUnknownHandle
	}
	dst, ok := r.Node(e.Target)
	if !ok {
		return ErrUnknownNode
	}
	if _, ok := dst.Handle(e.TargetHandle); !ok {
		return ErrUnknownHandle
	}
	r.Wire(e)
	return nil
}

// Unwire removes the edge with the given id and reports whether it existed.
func (r *Rung) Unwire(id string) bool {
	n := len(r.Edges)
	r.Edges = slices.DeleteFunc(r.Edges, func(e Edge) bool { return e.ID == id })
	return len(r.Edges) != n
}

// IsPowerEdge reports whether e carries power flow, i.e. neither endpoint is
// a synthetic variable or a placeholder.
func (r *Rung) IsPowerEdge(e Edge) bool {
	src, ok := r.Node(e.Source)
	if !ok {
		return false
	}
	dst, ok := r.Node(e.Target)
	if !ok {
		return false
	}
	return isPowerKind(src.Kind) && isPowerKind(dst.Kind)
}

func isPowerKind(k Kind) bool {
	return k != KindVariable && !k.IsPlaceholder()
}

// PowerIn returns the power edges entering the node, in edge order.
func (r *Rung) PowerIn(id string) []Edge {
	var out []Edge
	for _, e := range r.Edges {
		if e.Target == id && r.IsPowerEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// PowerOut returns the power edges leaving the node, in edge order.
func (r *Rung) PowerOut(id string) []Edge {
	var out []Edge
	for _, e := range r.Edges {
		if e.Source == id && r.IsPowerEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// OutputHandleID returns the handle a wire on the given lane leaves the node
// from. Only a ParallelOpen distinguishes the parallel lane.
func (r *Rung) OutputHandleID(id string, lane Lane) (string, bool) {
	n, ok := r.Node(id)
	if !ok {
		return "", false
	}
	if lane == LaneParallel && n.Kind == KindParallelOpen {
		return HandleParallelOut, true
	}
	h, ok := n.OutputHandle()
	if !ok {
		return "", false
	}
	return h.ID, true
}

// InputHandleID returns the handle a wire on the given lane enters the node
// through. Only a ParallelClose distinguishes the parallel lane.
func (r *Rung) InputHandleID(id string, lane Lane) (string, bool) {
	n, ok := r.Node(id)
	if !ok {
		return "", false
	}
	if lane == LaneParallel && n.Kind == KindParallelClose {
		return HandleParallelIn, true
	}
	h, ok := n.InputHandle()
	if !ok {
		return "", false
	}
	return h.ID, true
}

// LaneOut returns the power edge leaving the node on the given lane.
func (r *Rung) LaneOut(id string, lane Lane) (Edge, bool) {
	hid, ok := r.OutputHandleID(id, lane)
	if !ok {
		return Edge{}, false
	}
	for _, e := range r.PowerOut(id) {
		if e.SourceHandle == hid {
			return e, true
		}
	}
	return Edge{}, false
}

// LaneIn returns the power edge entering the node on the given lane.
func (r *Rung) LaneIn(id string, lane Lane) (Edge, bool) {
	hid, ok := r.InputHandleID(id, lane)
	if !ok {
		return Edge{}, false
	}
	for _, e := range r.PowerIn(id) {
		if e.TargetHandle == hid {
			return e, true
		}
	}
	return Edge{}, false
}

// SerialOut returns the serial power edge leaving the node.
func (r *Rung) SerialOut(id string) (Edge, bool) { return r.LaneOut(id, LaneSerial) }

// SerialIn returns the serial power edge entering the node.
func (r *Rung) SerialIn(id string) (Edge, bool) { return r.LaneIn(id, LaneSerial) }

// Predecessor returns the single power edge entering a node that is not a
// ParallelClose, and the lane it arrives on as seen from its source.
func (r *Rung) Predecessor(id string) (Edge, Lane, bool) {
	in := r.PowerIn(id)
	if len(in) != 1 {
		return Edge{}, LaneSerial, false
	}
	e := in[0]
	if e.SourceHandle == HandleParallelOut {
		return e, LaneParallel, true
	}
	return e, LaneSerial, true
}

// VariablesOf returns the ids of the synthetic variables bound to a block.
func (r *Rung) VariablesOf(blockID string) []string {
	var ids []string
	for _, n := range r.Nodes {
		if d, ok := n.Data.(VariableData); ok && d.BlockID == blockID {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Placeholders returns the placeholder nodes currently in the rung.
func (r *Rung) Placeholders() []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.Kind.IsPlaceholder() {
			out = append(out, n)
		}
	}
	return out
}

// SelectedPlaceholder returns the placeholder marked selected, if any.
func (r *Rung) SelectedPlaceholder() (*Node, bool) {
	for i := range r.Nodes {
		if d, ok := r.Nodes[i].Data.(PlaceholderData); ok && d.Selected {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// Elements returns the contacts, coils and blocks of the rung in node order.
func (r *Rung) Elements() []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.Kind.IsElement() {
			out = append(out, n)
		}
	}
	return out
}

// refreshHandles recomputes handle positions from node positions.
func (r *Rung) refreshHandles() {
	for i := range r.Nodes {
		n := &r.Nodes[i]
		for j := range n.Handles {
			n.Handles[j].Position = n.Position.Add(n.Handles[j].Offset)
		}
	}
}

// RefreshHandles recomputes every handle's global position from its node's
// position and the handle offset.
func (r *Rung) RefreshHandles() { r.refreshHandles() }

// RepointEdges moves every edge endpoint on oldID onto newID without
// touching node ids or payload references.
func (r *Rung) RepointEdges(oldID, newID string) {
	for i := range r.Edges {
		e := &r.Edges[i]
		if e.Source != oldID && e.Target != oldID {
			continue
		}
		if e.Source == oldID {
			e.Source = newID
		}
		if e.Target == oldID {
			e.Target = newID
		}
		e.ID = EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	}
}
