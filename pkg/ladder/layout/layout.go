package layout

import (
	"math"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Config holds the spacing rules of the layout engine. Zero fields fall back
// to the values of [DefaultConfig].
type Config struct {
	// Horizontal gap contributed by each node kind on both of its sides.
	RailGap     float64 `toml:"rail_gap" json:"railGap,omitempty"`
	ContactGap  float64 `toml:"contact_gap" json:"contactGap,omitempty"`
	CoilGap     float64 `toml:"coil_gap" json:"coilGap,omitempty"`
	BlockGap    float64 `toml:"block_gap" json:"blockGap,omitempty"`
	ParallelGap float64 `toml:"parallel_gap" json:"parallelGap,omitempty"`

	// LaneGap is the vertical clearance between the lowest node of a serial
	// lane and the highest node of the parallel lane below it.
	LaneGap float64 `toml:"lane_gap" json:"laneGap,omitempty"`

	// VariableGap separates a synthetic variable from its block.
	VariableGap float64 `toml:"variable_gap" json:"variableGap,omitempty"`

	// Bounds overrides the rung's default bounds when non-zero.
	Bounds ladder.Size `toml:"bounds" json:"bounds,omitempty"`
}

// DefaultConfig returns the spacing used by the editor.
func DefaultConfig() Config {
	return Config{
		RailGap:     10,
		ContactGap:  20,
		CoilGap:     20,
		BlockGap:    100,
		ParallelGap: 10,
		LaneGap:     20,
		VariableGap: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	for _, f := range []struct{ v, def *float64 }{
		{&c.RailGap, &d.RailGap},
		{&c.ContactGap, &d.ContactGap},
		{&c.CoilGap, &d.CoilGap},
		{&c.BlockGap, &d.BlockGap},
		{&c.ParallelGap, &d.ParallelGap},
		{&c.LaneGap, &d.LaneGap},
		{&c.VariableGap, &d.VariableGap},
	} {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}
	return c
}

// Gap returns the horizontal spacing a node of kind k keeps on each side.
func (c Config) Gap(k ladder.Kind) float64 {
	switch k {
	case ladder.KindPowerRail:
		return c.RailGap
	case ladder.KindContact:
		return c.ContactGap
	case ladder.KindCoil:
		return c.CoilGap
	case ladder.KindBlock:
		return c.BlockGap
	case ladder.KindParallelOpen, ladder.KindParallelClose:
		return c.ParallelGap
	default:
		return 0
	}
}

// Recompute lays r out with [DefaultConfig].
func Recompute(r *ladder.Rung) (*ladder.Rung, error) {
	return Compute(r, DefaultConfig())
}

// Compute returns a copy of r with every node position, rail size and handle
// position derived from the topology. The input is not modified and the
// result depends only on the node and edge set, so laying out an already
// laid out rung changes nothing.
//
// The left rail stays where it is. Every other node on the power flow is
// placed after its predecessor with the gaps of both kinds in between and its
// input handle level with the predecessor's output handle. A ParallelClose
// waits for its slowest lane and shares the row of its open. Parallel lanes
// are pushed below their serial lane by the space the serial lane occupies,
// so nested branches stack without overlapping. Synthetic variables sit next
// to the block port they feed. The right rail ends up at
// max(bounds.Width, rightmost edge + rail gap) - rail width, and both rails
// grow to cover the content. Placeholders are left untouched.
func Compute(r *ladder.Rung, cfg Config) (*ladder.Rung, error) {
	cfg = cfg.withDefaults()
	out := r.Clone()

	bounds := cfg.Bounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = out.DefaultBounds
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = ladder.DefaultBounds
	}

	left, ok := out.LeftRail()
	if !ok {
		return nil, perrors.BrokenGraph("", "rung has no left rail")
	}
	leftID := left.ID
	if _, ok := out.RightRail(); !ok {
		return nil, perrors.BrokenGraph("", "rung has no right rail")
	}

	offsets, err := laneOffsets(out, cfg)
	if err != nil {
		return nil, err
	}
	order, err := powerOrder(out)
	if err != nil {
		return nil, err
	}

	placed := map[string]bool{leftID: true}
	for _, id := range order {
		if id == leftID {
			continue
		}
		n, _ := out.Node(id)
		pos, ok, err := place(out, n, placed, offsets, cfg)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		n.Position = pos
		placed[id] = true
	}

	placeVariables(out, cfg)
	sizeRails(out, bounds, cfg)
	out.RefreshHandles()
	return out, nil
}

// place computes the position of n from its placed predecessors. It reports
// false for nodes that cannot be reached from the left rail.
func place(r *ladder.Rung, n *ladder.Node, placed map[string]bool, offsets map[string]float64, cfg Config) (ladder.Point, bool, error) {
	x, y := math.Inf(-1), 0.0
	reached := false
	for _, e := range r.PowerIn(n.ID) {
		if !placed[e.Source] {
			continue
		}
		p, _ := r.Node(e.Source)
		x = math.Max(x, p.Right()+cfg.Gap(p.Kind)+cfg.Gap(n.Kind))

		wire, ok := handleY(p, e.SourceHandle)
		if !ok {
			return ladder.Point{}, false, perrors.BrokenGraph(p.ID, "no handle %q", e.SourceHandle)
		}
		if e.SourceHandle == ladder.HandleParallelOut {
			serial, _ := p.OutputHandle()
			wire = p.Position.Y + serial.Offset.Y + offsets[p.ID]
		}
		in, ok := n.Handle(e.TargetHandle)
		if !ok {
			return ladder.Point{}, false, perrors.BrokenGraph(n.ID, "no handle %q", e.TargetHandle)
		}
		if !reached || e.TargetHandle != ladder.HandleParallelIn {
			y = wire - in.Offset.Y
		}
		reached = true
	}
	if !reached {
		return ladder.Point{}, false, nil
	}

	if n.Kind == ladder.KindParallelClose {
		d, _ := n.Parallel()
		open, ok := r.Node(d.PairedID)
		if !ok {
			return ladder.Point{}, false, perrors.BrokenGraph(n.ID, "parallel close without a matching open")
		}
		y = open.Position.Y
	}
	return ladder.Point{X: x, Y: y}, true, nil
}

func handleY(n *ladder.Node, id string) (float64, bool) {
	h, ok := n.Handle(id)
	if !ok {
		return 0, false
	}
	return n.Position.Y + h.Offset.Y, true
}

// placeVariables puts every synthetic variable beside the block port it is
// wired to: input variables to the left, output variables to the right.
func placeVariables(r *ladder.Rung, cfg Config) {
	for i := range r.Nodes {
		v := &r.Nodes[i]
		d, ok := v.Variable()
		if !ok || len(v.Handles) == 0 {
			continue
		}
		for _, e := range r.Edges {
			var blockID, port string
			switch {
			case d.Direction == ladder.VariableInput && e.Source == v.ID:
				blockID, port = e.Target, e.TargetHandle
			case d.Direction == ladder.VariableOutput && e.Target == v.ID:
				blockID, port = e.Source, e.SourceHandle
			default:
				continue
			}
			b, ok := r.Node(blockID)
			if !ok {
				break
			}
			portY, ok := handleY(b, port)
			if !ok {
				break
			}
			y := portY - v.Handles[0].Offset.Y
			if d.Direction == ladder.VariableInput {
				v.Position = ladder.Point{X: b.Position.X - cfg.VariableGap - v.Size.Width, Y: y}
			} else {
				v.Position = ladder.Point{X: b.Right() + cfg.VariableGap, Y: y}
			}
			break
		}
	}
}

// sizeRails moves the right rail behind the rightmost node and stretches both
// rails over the content, never below the bounds.
func sizeRails(r *ladder.Rung, bounds ladder.Size, cfg Config) {
	left, _ := r.LeftRail()
	top := left.Position.Y
	leftID := left.ID

	rightmost, bottom := math.Inf(-1), math.Inf(-1)
	for _, n := range r.Nodes {
		if n.Kind == ladder.KindPowerRail || n.Kind.IsPlaceholder() {
			continue
		}
		rightmost = math.Max(rightmost, n.Right())
		bottom = math.Max(bottom, n.Bottom())
	}
	if math.IsInf(rightmost, -1) {
		l, _ := r.Node(leftID)
		rightmost = l.Right()
	}

	height := bounds.Height
	if !math.IsInf(bottom, -1) {
		height = math.Max(height, bottom+cfg.RailGap-top)
	}

	right, _ := r.RightRail()
	right.Position = ladder.Point{
		X: math.Max(bounds.Width, rightmost+cfg.RailGap) - right.Size.Width,
		Y: top,
	}
	right.Size.Height = height
	l, _ := r.Node(leftID)
	l.Size.Height = height
}
