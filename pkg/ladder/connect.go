package ladder

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by [Rung.Disconnect] when the node does not sit
// between exactly one predecessor and the given successor.
var ErrNotConnected = errors.New("nodes are not connected")

// Handles overrides the connectors used by [Rung.ConnectHandles]. Empty
// fields fall back to the primary connectors of the nodes involved.
type Handles struct {
	Source    string // output of the source node
	TargetIn  string // input of the inserted target node
	TargetOut string // output of the inserted target node
}

// Connect wires source to target on the given lane of source.
//
// If a power edge already leaves source on that lane, target is spliced
// between source and the old successor: the existing edge is replaced by
// source→target (keeping the original source handle) and target→successor
// (keeping the original target handle). Otherwise a single edge is added.
// Connect returns the edges it created.
func (r *Rung) Connect(source, target string, lane Lane) ([]Edge, error) {
	sh, ok := r.OutputHandleID(source, lane)
	if !ok {
		return nil, fmt.Errorf("connect %s: %w", source, ErrUnknownHandle)
	}
	return r.ConnectHandles(source, target, Handles{Source: sh})
}

// ConnectHandles is [Rung.Connect] with explicit connectors.
func (r *Rung) ConnectHandles(source, target string, h Handles) ([]Edge, error) {
	if _, ok := r.Node(source); !ok {
		return nil, fmt.Errorf("connect %s: %w", source, ErrUnknownNode)
	}
	if _, ok := r.Node(target); !ok {
		return nil, fmt.Errorf("connect %s: %w", target, ErrUnknownNode)
	}
	if h.Source == "" {
		id, ok := r.OutputHandleID(source, LaneSerial)
		if !ok {
			return nil, fmt.Errorf("connect %s: %w", source, ErrUnknownHandle)
		}
		h.Source = id
	}
	if h.TargetIn == "" {
		id, ok := r.InputHandleID(target, LaneSerial)
		if !ok {
			return nil, fmt.Errorf("connect %s: %w", target, ErrUnknownHandle)
		}
		h.TargetIn = id
	}

	var old *Edge
	for _, e := range r.PowerOut(source) {
		if e.SourceHandle == h.Source {
			old = &e
			break
		}
	}

	in := NewEdge(source, h.Source, target, h.TargetIn)
	if old == nil {
		r.Wire(in)
		return []Edge{in}, nil
	}

	if h.TargetOut == "" {
		id, ok := r.OutputHandleID(target, LaneSerial)
		if !ok {
			return nil, fmt.Errorf("connect %s: %w", target, ErrUnknownHandle)
		}
		h.TargetOut = id
	}
	r.Unwire(old.ID)
	out := NewEdge(target, h.TargetOut, old.Target, old.TargetHandle)
	r.Wire(in)
	r.Wire(out)
	return []Edge{in, out}, nil
}

// Disconnect removes node from between its single predecessor and target and
// wires the predecessor straight to target. The predecessor keeps its source
// handle and target keeps its input handle, so Disconnect undoes the splice
// performed by [Rung.Connect]. It returns the bridging edge.
func (r *Rung) Disconnect(node, target string) (Edge, error) {
	in := r.PowerIn(node)
	if len(in) != 1 {
		return Edge{}, fmt.Errorf("disconnect %s: %d incoming wires: %w", node, len(in), ErrNotConnected)
	}
	var out *Edge
	for _, e := range r.PowerOut(node) {
		if e.Target == target {
			out = &e
			break
		}
	}
	if out == nil {
		return Edge{}, fmt.Errorf("disconnect %s from %s: %w", node, target, ErrNotConnected)
	}
	r.Unwire(in[0].ID)
	r.Unwire(out.ID)
	bridge := NewEdge(in[0].Source, in[0].SourceHandle, out.Target, out.TargetHandle)
	r.Wire(bridge)
	return bridge, nil
}
