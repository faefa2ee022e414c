package layout

import (
	"math"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// laneOffsets returns, per ParallelOpen id, the vertical distance between the
// wire of its serial lane and the wire of its parallel lane.
func laneOffsets(r *ladder.Rung, cfg Config) (map[string]float64, error) {
	roots, err := ladder.RootBranches(r)
	if err != nil {
		return nil, err
	}
	m := &laneMeasure{r: r, cfg: cfg, offsets: make(map[string]float64)}
	for _, b := range roots {
		if _, err := m.below(b); err != nil {
			return nil, err
		}
	}
	return m.offsets, nil
}

type laneMeasure struct {
	r       *ladder.Rung
	cfg     Config
	offsets map[string]float64
}

// below returns how far the branch reaches under the wire of its open and
// records the lane offset of b and every branch nested in it.
func (m *laneMeasure) below(b *ladder.Branch) (float64, error) {
	serialBelow, err := m.laneBelow(&b.Serial)
	if err != nil {
		return 0, err
	}
	parallelAbove, err := m.laneAbove(&b.Parallel)
	if err != nil {
		return 0, err
	}
	parallelBelow, err := m.laneBelow(&b.Parallel)
	if err != nil {
		return 0, err
	}
	offset := serialBelow + m.cfg.LaneGap + parallelAbove
	m.offsets[b.Open] = offset
	return offset + parallelBelow, nil
}

// above returns how far the branch reaches over the wire of its open.
func (m *laneMeasure) above(b *ladder.Branch) (float64, error) {
	return m.laneAbove(&b.Serial)
}

func (m *laneMeasure) laneBelow(l *ladder.BranchLane) (float64, error) {
	ext := ladder.ParallelSize / 2
	for _, id := range l.Direct {
		n, err := m.node(id)
		if err != nil {
			return 0, err
		}
		ext = math.Max(ext, n.Size.Height-inOffset(n))
	}
	for _, c := range l.Children {
		v, err := m.below(c)
		if err != nil {
			return 0, err
		}
		ext = math.Max(ext, v)
	}
	return ext, nil
}

func (m *laneMeasure) laneAbove(l *ladder.BranchLane) (float64, error) {
	ext := ladder.ParallelSize / 2
	for _, id := range l.Direct {
		n, err := m.node(id)
		if err != nil {
			return 0, err
		}
		ext = math.Max(ext, inOffset(n))
	}
	for _, c := range l.Children {
		v, err := m.above(c)
		if err != nil {
			return 0, err
		}
		ext = math.Max(ext, v)
	}
	return ext, nil
}

func (m *laneMeasure) node(id string) (*ladder.Node, error) {
	n, ok := m.r.Node(id)
	if !ok {
		return nil, perrors.BrokenGraph(id, "lane member not found")
	}
	return n, nil
}

// inOffset is the height of the input handle above the node's top edge.
func inOffset(n *ladder.Node) float64 {
	if h, ok := n.InputHandle(); ok {
		return h.Offset.Y
	}
	return n.Size.Height / 2
}
