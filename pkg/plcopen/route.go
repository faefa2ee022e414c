package plcopen

import (
	"fmt"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// route is the path of a wire from the element that emits it, through the
// branch delimiters it crosses, to the connector that receives it.
type route struct {
	source *ladder.Node
	handle string
	// via lists the crossed ParallelOpen and ParallelClose nodes, nearest
	// to the receiving connector first, with the handle the wire enters
	// each of them through.
	via []hop
}

type hop struct {
	node   *ladder.Node
	handle string
}

// trace follows e backwards to the elements it carries power from. Branch
// delimiters are not exported, so a wire leaving one continues from
// whatever feeds it: the single predecessor of a ParallelOpen, or both lanes
// of a ParallelClose.
func (x *exporter) trace(e ladder.Edge, via []hop, seen map[string]bool) ([]route, error) {
	src, ok := x.r.Node(e.Source)
	if !ok {
		return nil, fmt.Errorf("%s: %w", e.Source, ladder.ErrUnknownNode)
	}
	switch src.Kind {
	case ladder.KindParallelOpen:
		return x.throughOpen(src, via, seen)
	case ladder.KindParallelClose:
		return x.throughClose(src, via, seen)
	}
	return []route{{source: src, handle: e.SourceHandle, via: via}}, nil
}

// throughOpen resolves the element feeding a ParallelOpen. Nested opens and
// closes on the way are crossed as well.
func (x *exporter) throughOpen(open *ladder.Node, via []hop, seen map[string]bool) ([]route, error) {
	if seen[open.ID] {
		return nil, fmt.Errorf("loop through %s", open.ID)
	}
	seen[open.ID] = true
	defer delete(seen, open.ID)

	in := x.r.PowerIn(open.ID)
	if len(in) != 1 {
		return nil, fmt.Errorf("parallel open %s has %d inputs", open.ID, len(in))
	}
	return x.trace(in[0], appendHop(via, open, in[0].TargetHandle), seen)
}

// throughClose resolves the elements ending both lanes of a ParallelClose.
func (x *exporter) throughClose(cl *ladder.Node, via []hop, seen map[string]bool) ([]route, error) {
	if seen[cl.ID] {
		return nil, fmt.Errorf("loop through %s", cl.ID)
	}
	seen[cl.ID] = true
	defer delete(seen, cl.ID)

	in := x.r.PowerIn(cl.ID)
	if len(in) == 0 {
		return nil, fmt.Errorf("parallel close %s has no inputs", cl.ID)
	}
	var out []route
	for _, e := range in {
		rts, err := x.trace(e, appendHop(via, cl, e.TargetHandle), seen)
		if err != nil {
			return nil, err
		}
		out = append(out, rts...)
	}
	return out, nil
}

func appendHop(via []hop, n *ladder.Node, handle string) []hop {
	out := make([]hop, len(via), len(via)+1)
	copy(out, via)
	return append(out, hop{node: n, handle: handle})
}

// bends returns the polyline of a wire from the receiving point back to the
// emitting one. Crossing a branch delimiter bends the wire twice on the
// delimiter's vertical center line: once at the height it leaves towards the
// receiver and once at the height it enters from the emitter.
func bends(target, source ladder.Point, via []hop) []Position {
	pts := []Position{pos(target)}
	y := target.Y
	for _, h := range via {
		cx := h.node.Center().X
		pts = append(pts, Position{X: cx, Y: y})
		if in, ok := h.node.Handle(h.handle); ok {
			y = in.Position.Y
		}
		pts = append(pts, Position{X: cx, Y: y})
	}
	pts = append(pts, pos(source))
	return dedupe(pts)
}

func dedupe(pts []Position) []Position {
	out := pts[:0]
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
