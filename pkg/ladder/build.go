package ladder

import (
	"math"

	"github.com/google/uuid"
)

// Default node geometry. The layout engine moves nodes but keeps these
// sizes; only rails are resized (their height follows the rung content).
const (
	RailWidth         = 3.0
	RailHeight        = 80.0
	RailWireOffset    = 40.0 // y of the rail handles, relative to the rail top
	ContactSize       = 28.0
	CoilSize          = 28.0
	ParallelSize      = 10.0
	VariableWidth     = 80.0
	VariableHeight    = 24.0
	PlaceholderSize   = 12.0
	BlockMinWidth     = 100.0
	BlockHeaderHeight = 30.0 // y of the first port, relative to the block top
	BlockPortSpacing  = 20.0
	blockCharWidth    = 8.0
)

// NewID returns a fresh node id with the given prefix, such as
// "contact_1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NewLeftRail builds the left (source) power rail.
func NewLeftRail(id string) Node {
	return Node{
		ID:   id,
		Kind: KindPowerRail,
		Size: Size{Width: RailWidth, Height: RailHeight},
		Data: RailData{Side: RailLeft},
		Handles: []Handle{
			{ID: HandleOut, Type: HandleSource, Side: HandleSideRight, Offset: Point{X: RailWidth, Y: RailWireOffset}},
		},
	}
}

// NewRightRail builds the right (return) power rail.
func NewRightRail(id string) Node {
	return Node{
		ID:   id,
		Kind: KindPowerRail,
		Size: Size{Width: RailWidth, Height: RailHeight},
		Data: RailData{Side: RailRight},
		Handles: []Handle{
			{ID: HandleIn, Type: HandleTarget, Side: HandleSideLeft, Offset: Point{X: 0, Y: RailWireOffset}},
		},
	}
}

// serialHandles returns the left input and right output handles of a box
// of the given size, both at mid height.
func serialHandles(w, h float64) []Handle {
	return []Handle{
		{ID: HandleIn, Type: HandleTarget, Side: HandleSideLeft, Offset: Point{X: 0, Y: h / 2}},
		{ID: HandleOut, Type: HandleSource, Side: HandleSideRight, Offset: Point{X: w, Y: h / 2}},
	}
}

// NewContact builds a contact reading variable.
func NewContact(id, variable string, mod ContactModifier) Node {
	if mod == "" {
		mod = ContactNormal
	}
	return Node{
		ID:      id,
		Kind:    KindContact,
		Size:    Size{Width: ContactSize, Height: ContactSize},
		Data:    ContactData{Variable: variable, Modifier: mod},
		Handles: serialHandles(ContactSize, ContactSize),
	}
}

// NewCoil builds a coil writing variable.
func NewCoil(id, variable string, mod CoilModifier) Node {
	if mod == "" {
		mod = CoilNormal
	}
	return Node{
		ID:      id,
		Kind:    KindCoil,
		Size:    Size{Width: CoilSize, Height: CoilSize},
		Data:    CoilData{Variable: variable, Modifier: mod},
		Handles: serialHandles(CoilSize, CoilSize),
	}
}

// BlockSize returns the bounding box of a block with the given signature.
// Width grows with the type name, height with the longer port column.
func BlockSize(d BlockData) Size {
	rows := max(len(d.Inputs), len(d.Outputs), 1)
	width := math.Max(BlockMinWidth, float64(len(d.TypeName))*blockCharWidth+40)
	return Size{Width: width, Height: BlockHeaderHeight + float64(rows)*BlockPortSpacing}
}

// NewBlock builds a function or function block with one handle per port.
// Inputs sit on the left edge and outputs on the right, one row apart.
func NewBlock(id string, d BlockData) Node {
	size := BlockSize(d)
	handles := make([]Handle, 0, len(d.Inputs)+len(d.Outputs))
	for i, p := range d.Inputs {
		handles = append(handles, Handle{
			ID:     BlockInputHandleID(p.Name),
			Name:   p.Name,
			Type:   HandleTarget,
			Side:   HandleSideLeft,
			Offset: Point{X: 0, Y: BlockHeaderHeight + float64(i)*BlockPortSpacing},
		})
	}
	for i, p := range d.Outputs {
		handles = append(handles, Handle{
			ID:     BlockOutputHandleID(p.Name),
			Name:   p.Name,
			Type:   HandleSource,
			Side:   HandleSideRight,
			Offset: Point{X: size.Width, Y: BlockHeaderHeight + float64(i)*BlockPortSpacing},
		})
	}
	return Node{ID: id, Kind: KindBlock, Size: size, Data: d, Handles: handles}
}

// NewParallelOpen builds the divergence node of a branch.
func NewParallelOpen(id, pairedID string) Node {
	return Node{
		ID:   id,
		Kind: KindParallelOpen,
		Size: Size{Width: ParallelSize, Height: ParallelSize},
		Data: ParallelData{PairedID: pairedID},
		Handles: append(serialHandles(ParallelSize, ParallelSize), Handle{
			ID: HandleParallelOut, Type: HandleSource, Side: HandleSideBottom,
			Offset: Point{X: ParallelSize / 2, Y: ParallelSize},
		}),
	}
}

// NewParallelClose builds the convergence node of a branch.
func NewParallelClose(id, pairedID string) Node {
	return Node{
		ID:   id,
		Kind: KindParallelClose,
		Size: Size{Width: ParallelSize, Height: ParallelSize},
		Data: ParallelData{PairedID: pairedID},
		Handles: append(serialHandles(ParallelSize, ParallelSize), Handle{
			ID: HandleParallelIn, Type: HandleTarget, Side: HandleSideBottom,
			Offset: Point{X: ParallelSize / 2, Y: ParallelSize},
		}),
	}
}

// NewVariable builds a synthetic variable bound to one port of a block.
// Input variables expose a source handle on their right edge, output
// variables a target handle on their left edge.
func NewVariable(id string, d VariableData) Node {
	h := Handle{ID: HandleOut, Type: HandleSource, Side: HandleSideRight, Offset: Point{X: VariableWidth, Y: VariableHeight / 2}}
	if d.Direction == VariableOutput {
		h = Handle{ID: HandleIn, Type: HandleTarget, Side: HandleSideLeft, Offset: Point{X: 0, Y: VariableHeight / 2}}
	}
	return Node{
		ID:      id,
		Kind:    KindVariable,
		Size:    Size{Width: VariableWidth, Height: VariableHeight},
		Data:    d,
		Handles: []Handle{h},
	}
}

// NewPlaceholder builds a default (serial) insertion slot next to related.
func NewPlaceholder(id, relatedID string, side PlaceholderSide) Node {
	return Node{
		ID:   id,
		Kind: KindPlaceholder,
		Size: Size{Width: PlaceholderSize, Height: PlaceholderSize},
		Data: PlaceholderData{RelatedID: relatedID, Side: side},
	}
}

// NewParallelPlaceholder builds a branch-creation slot below related.
func NewParallelPlaceholder(id, relatedID string, width float64) Node {
	return Node{
		ID:   id,
		Kind: KindParallelPlaceholder,
		Size: Size{Width: width, Height: PlaceholderSize},
		Data: PlaceholderData{RelatedID: relatedID, Side: SideBottom},
	}
}

// Rebuild returns a new instance of n with the same id, local id and data
// but freshly constructed connectors and a zero position.
func Rebuild(n Node) (Node, bool) {
	var out Node
	switch d := n.Data.(type) {
	case RailData:
		if d.Side == RailLeft {
			out = NewLeftRail(n.ID)
		} else {
			out = NewRightRail(n.ID)
		}
	case ContactData:
		out = NewContact(n.ID, d.Variable, d.Modifier)
	case CoilData:
		out = NewCoil(n.ID, d.Variable, d.Modifier)
	case BlockData:
		out = NewBlock(n.ID, d)
	case ParallelData:
		if n.Kind == KindParallelClose {
			out = NewParallelClose(n.ID, d.PairedID)
		} else {
			out = NewParallelOpen(n.ID, d.PairedID)
		}
	case VariableData:
		out = NewVariable(n.ID, d)
	case PlaceholderData:
		if n.Kind == KindParallelPlaceholder {
			out = NewParallelPlaceholder(n.ID, d.RelatedID, n.Size.Width)
		} else {
			out = NewPlaceholder(n.ID, d.RelatedID, d.Side)
		}
	default:
		return Node{}, false
	}
	out.LocalID = n.LocalID
	return out.Clone(), true
}
