package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/observability"
)

// Layout validates r and returns it laid out with cfg.
func Layout(ctx context.Context, r *ladder.Rung, cfg layout.Config) (*ladder.Rung, error) {
	start := time.Now()
	out, err := layoutRung(r, cfg)
	observability.Pipeline().OnLayout(ctx, len(r.Nodes), time.Since(start), err)
	return out, err
}

func layoutRung(r *ladder.Rung, cfg layout.Config) (*ladder.Rung, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return layout.Compute(r, cfg)
}

// LayoutDiagram lays out every rung of d and returns a new diagram.
func LayoutDiagram(ctx context.Context, d *ladder.Diagram, cfg layout.Config) (*ladder.Diagram, error) {
	out := *d
	out.Rungs = make([]*ladder.Rung, len(d.Rungs))
	for i, r := range d.Rungs {
		laid, err := Layout(ctx, r, cfg)
		if err != nil {
			return nil, err
		}
		out.Rungs[i] = laid
	}
	return &out, nil
}
