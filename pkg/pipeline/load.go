package pipeline

import (
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Load reads a diagram file. A file holding a single rung becomes a
// diagram of that rung.
func Load(path string) (*ladder.Diagram, error) {
	return io.ImportDiagram(path)
}

// LoadRung reads the rung with the given id from a diagram file, or its
// only rung when id is empty.
func LoadRung(path, id string) (*ladder.Rung, *ladder.Diagram, error) {
	d, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := PickRung(d, id)
	return r, d, err
}

// PickRung returns rung id of d, or its only rung when id is empty.
func PickRung(d *ladder.Diagram, id string) (*ladder.Rung, error) {
	if id == "" {
		switch len(d.Rungs) {
		case 0:
			return nil, perrors.New(perrors.ErrCodeNotFound, "diagram %s has no rungs", d.Name)
		case 1:
			return d.Rungs[0], nil
		default:
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "diagram %s has %d rungs; pick one with --rung", d.Name, len(d.Rungs))
		}
	}
	r, ok := d.Rung(id)
	if !ok {
		return nil, perrors.New(perrors.ErrCodeNotFound, "rung %s not found", id)
	}
	return r, nil
}
