package ladder

import "slices"

// Point is a 2D coordinate on the editing canvas. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is the width and height of a node's bounding box.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Kind identifies which variant of the node union a Node holds.
// The set is closed: every switch over Kind in this module handles each
// constant below and reports a broken graph for anything else.
type Kind string

const (
	KindPowerRail           Kind = "powerRail"
	KindContact             Kind = "contact"
	KindCoil                Kind = "coil"
	KindBlock               Kind = "block"
	KindParallelOpen        Kind = "parallelOpen"
	KindParallelClose       Kind = "parallelClose"
	KindVariable            Kind = "variable"
	KindPlaceholder         Kind = "placeholder"
	KindParallelPlaceholder Kind = "parallelPlaceholder"
)

// Kinds lists every node kind in declaration order.
var Kinds = []Kind{
	KindPowerRail, KindContact, KindCoil, KindBlock, KindParallelOpen,
	KindParallelClose, KindVariable, KindPlaceholder, KindParallelPlaceholder,
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// IsElement reports whether nodes of this kind are user elements that sit on
// the power flow and can be inserted, removed and dragged.
func (k Kind) IsElement() bool {
	return k == KindContact || k == KindCoil || k == KindBlock
}

// IsParallel reports whether k is one of the two branch delimiters.
func (k Kind) IsParallel() bool {
	return k == KindParallelOpen || k == KindParallelClose
}

// IsPlaceholder reports whether k is a transient insertion slot.
func (k Kind) IsPlaceholder() bool {
	return k == KindPlaceholder || k == KindParallelPlaceholder
}

// Data is the kind-specific payload of a node. It is sealed: only the
// payload types declared in this package implement it.
type Data interface {
	isData()
}

// RailSide tells the left (source) rail from the right (return) rail.
type RailSide string

const (
	RailLeft  RailSide = "left"
	RailRight RailSide = "right"
)

// RailData is the payload of a power rail.
type RailData struct {
	Side RailSide `json:"side"`
}

// ContactModifier selects how a contact evaluates its variable.
type ContactModifier string

const (
	ContactNormal  ContactModifier = "normal"
	ContactNegated ContactModifier = "negated"
	ContactRising  ContactModifier = "rising"
	ContactFalling ContactModifier = "falling"
)

// ContactData is the payload of a contact.
type ContactData struct {
	Variable string          `json:"variable"`
	Modifier ContactModifier `json:"modifier"`
}

// CoilModifier selects how a coil writes its variable.
type CoilModifier string

const (
	CoilNormal  CoilModifier = "normal"
	CoilNegated CoilModifier = "negated"
	CoilSet     CoilModifier = "set"
	CoilReset   CoilModifier = "reset"
	CoilRising  CoilModifier = "rising"
	CoilFalling CoilModifier = "falling"
)

// CoilData is the payload of a coil.
type CoilData struct {
	Variable string       `json:"variable"`
	Modifier CoilModifier `json:"modifier"`
}

// Port is one formal parameter of a block.
type Port struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// BlockData is the payload of a function or function block. The first
// input and the first output carry power flow; every other port is bound to
// a synthetic Variable node.
type BlockData struct {
	TypeName      string `json:"typeName"`
	InstanceName  string `json:"instanceName,omitempty"`
	FunctionBlock bool   `json:"functionBlock,omitempty"`
	Inputs        []Port `json:"inputs"`
	Outputs       []Port `json:"outputs"`
}

// ParallelData is the payload of both branch delimiters. PairedID names the
// matching ParallelClose of an open, and the matching ParallelOpen of a close.
type ParallelData struct {
	PairedID string `json:"pairedId"`
}

// VariableDirection tells whether a synthetic variable feeds a block input
// or receives a block output.
type VariableDirection string

const (
	VariableInput  VariableDirection = "input"
	VariableOutput VariableDirection = "output"
)

// VariableData is the payload of a synthetic variable bound to a block port.
type VariableData struct {
	Name      string            `json:"name"`
	Direction VariableDirection `json:"direction"`
	BlockID   string            `json:"blockId"`
	Port      string            `json:"port"`
}

// PlaceholderSide locates a placeholder relative to its related node.
type PlaceholderSide string

const (
	SideLeft   PlaceholderSide = "left"
	SideRight  PlaceholderSide = "right"
	SideBottom PlaceholderSide = "bottom"
)

// PlaceholderData is the payload of Placeholder and ParallelPlaceholder nodes.
type PlaceholderData struct {
	RelatedID string          `json:"relatedId"`
	Side      PlaceholderSide `json:"side"`
	Selected  bool            `json:"selected,omitempty"`
}

func (RailData) isData()        {}
func (ContactData) isData()     {}
func (CoilData) isData()        {}
func (BlockData) isData()       {}
func (ParallelData) isData()    {}
func (VariableData) isData()    {}
func (PlaceholderData) isData() {}

// Node is a vertex of the rung graph. Position, Size and handle positions
// are derived by the layout engine; Kind and Data carry the identity.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"type"`
	LocalID  int      `json:"localId,omitempty"`
	Position Point    `json:"position"`
	Size     Size     `json:"size"`
	Handles  []Handle `json:"handles,omitempty"`
	Data     Data     `json:"-"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	c := n
	c.Handles = slices.Clone(n.Handles)
	if b, ok := n.Data.(BlockData); ok {
		b.Inputs = slices.Clone(b.Inputs)
		b.Outputs = slices.Clone(b.Outputs)
		c.Data = b
	}
	return c
}

// Handle returns the handle with the given id.
func (n *Node) Handle(id string) (*Handle, bool) {
	for i := range n.Handles {
		if n.Handles[i].ID == id {
			return &n.Handles[i], true
		}
	}
	return nil, false
}

// InputHandle returns the handle that receives power flow: "in" for
// contacts, coils, rails and parallel nodes, the first input port for blocks.
func (n *Node) InputHandle() (*Handle, bool) {
	if b, ok := n.Data.(BlockData); ok {
		if len(b.Inputs) == 0 {
			return nil, false
		}
		return n.Handle(BlockInputHandleID(b.Inputs[0].Name))
	}
	return n.Handle(HandleIn)
}

// OutputHandle returns the handle that emits power flow on the serial lane.
func (n *Node) OutputHandle() (*Handle, bool) {
	if b, ok := n.Data.(BlockData); ok {
		if len(b.Outputs) == 0 {
			return nil, false
		}
		return n.Handle(BlockOutputHandleID(b.Outputs[0].Name))
	}
	return n.Handle(HandleOut)
}

// Center returns the midpoint of the node's bounding box.
func (n *Node) Center() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Right returns the x coordinate of the node's right edge.
func (n *Node) Right() float64 { return n.Position.X + n.Size.Width }

// Bottom returns the y coordinate of the node's bottom edge.
func (n *Node) Bottom() float64 { return n.Position.Y + n.Size.Height }

// Parallel returns the branch payload of a ParallelOpen or ParallelClose.
func (n *Node) Parallel() (ParallelData, bool) {
	d, ok := n.Data.(ParallelData)
	return d, ok
}

// Placeholder returns the payload of a Placeholder or ParallelPlaceholder.
func (n *Node) Placeholder() (PlaceholderData, bool) {
	d, ok := n.Data.(PlaceholderData)
	return d, ok
}

// Block returns the payload of a block node.
func (n *Node) Block() (BlockData, bool) {
	d, ok := n.Data.(BlockData)
	return d, ok
}

// Variable returns the payload of a synthetic variable node.
func (n *Node) Variable() (VariableData, bool) {
	d, ok := n.Data.(VariableData)
	return d, ok
}

// IsRail reports whether n is the power rail on the given side.
func (n *Node) IsRail(side RailSide) bool {
	d, ok := n.Data.(RailData)
	return ok && n.Kind == KindPowerRail && d.Side == side
}

// BoundVariable returns the variable name a contact or coil refers to.
func (n *Node) BoundVariable() string {
	switch d := n.Data.(type) {
	case ContactData:
		return d.Variable
	case CoilData:
		return d.Variable
	case VariableData:
		return d.Name
	}
	return ""
}

// dataMatchesKind reports whether the payload type is the one expected
// for the node's kind.
func dataMatchesKind(n *Node) bool {
	switch n.Kind {
	case KindPowerRail:
		_, ok := n.Data.(RailData)
		return ok
	case KindContact:
		_, ok := n.Data.(ContactData)
		return ok
	case KindCoil:
		_, ok := n.Data.(CoilData)
		return ok
	case KindBlock:
		_, ok := n.Data.(BlockData)
		return ok
	case KindParallelOpen, KindParallelClose:
		_, ok := n.Data.(ParallelData)
		return ok
	case KindVariable:
		_, ok := n.Data.(VariableData)
		return ok
	case KindPlaceholder, KindParallelPlaceholder:
		_, ok := n.Data.(PlaceholderData)
		return ok
	default:
		return false
	}
}
