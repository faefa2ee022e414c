package ladder

import "strings"

// Well-known handle ids. Block ports use BlockInputHandleID and
// BlockOutputHandleID instead.
const (
	HandleIn          = "in"
	HandleOut         = "out"
	HandleParallelIn  = "parallel-in"
	HandleParallelOut = "parallel-out"
)

// HandleType tells whether a handle emits or receives a wire.
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// HandleSide is the edge of the node a handle sits on.
type HandleSide string

const (
	HandleSideLeft   HandleSide = "left"
	HandleSideRight  HandleSide = "right"
	HandleSideBottom HandleSide = "bottom"
)

// Handle is a connection point on a node. Offset is relative to the node's
// position and fixed at construction; Position is derived by the layout
// engine and never edited by hand. Name is the formal parameter for block
// ports and empty otherwise.
type Handle struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Type     HandleType `json:"type"`
	Side     HandleSide `json:"side"`
	Offset   Point      `json:"offset"`
	Position Point      `json:"position"`
}

// BlockInputHandleID returns the handle id of a block input port.
func BlockInputHandleID(port string) string { return "in:" + port }

// BlockOutputHandleID returns the handle id of a block output port.
func BlockOutputHandleID(port string) string { return "out:" + port }

// PortName strips the direction prefix from a block handle id.
func PortName(handleID string) string {
	if i := strings.IndexByte(handleID, ':'); i >= 0 {
		return handleID[i+1:]
	}
	return handleID
}

// Edge is a single wire between two handles. Edges are directed for
// traversal only; power flows from the left rail toward the right rail.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// NewEdge builds an edge whose id is derived from its endpoints, so the
// same wire always gets the same id.
func NewEdge(source, sourceHandle, target, targetHandle string) Edge {
	return Edge{
		ID:           EdgeID(source, sourceHandle, target, targetHandle),
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	}
}

// EdgeID returns the canonical id of a wire between two handles.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return "e_" + source + "_" + sourceHandle + "__" + target + "_" + targetHandle
}

// Lane selects which output of a node a wire leaves from. Only a
// ParallelOpen has a parallel lane; for every other node both values
// resolve to the serial output.
type Lane int

const (
	LaneSerial Lane = iota
	LaneParallel
)

// String returns "serial" or "parallel".
func (l Lane) String() string {
	if l == LaneParallel {
		return "parallel"
	}
	return "serial"
}
