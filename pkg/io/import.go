package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// ReadRung decodes a JSON rung from r and checks that it is a valid,
// committed rung.
//
// ReadRung returns an INVALID_FORMAT error if the JSON is malformed or a
// node payload does not match its kind, and the validation error of
// [ladder.Rung.Validate] if the structure is broken. ReadRung does not
// close r.
func ReadRung(r io.Reader) (*ladder.Rung, error) {
	var rung ladder.Rung
	if err := json.NewDecoder(r).Decode(&rung); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode rung")
	}
	if err := rung.Validate(); err != nil {
		return nil, fmt.Errorf("rung %s: %w", rung.ID, err)
	}
	return &rung, nil
}

// ReadDiagram decodes a JSON diagram from r. A document holding a single
// rung is accepted as well and becomes a diagram with that one rung, named
// after it. Every rung is validated.
func ReadDiagram(r io.Reader) (*ladder.Diagram, error) {
	d, err := DecodeDiagram(r)
	if err != nil {
		return nil, err
	}
	for _, rung := range d.Rungs {
		if err := rung.Validate(); err != nil {
			return nil, fmt.Errorf("rung %s: %w", rung.ID, err)
		}
	}
	return d, nil
}

// DecodeDiagram is ReadDiagram without rung validation. It still rejects
// malformed JSON, null rungs and duplicate rung ids.
func DecodeDiagram(r io.Reader) (*ladder.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	if _, ok := probe["rungs"]; !ok {
		var rung ladder.Rung
		if err := json.Unmarshal(data, &rung); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode rung")
		}
		d := ladder.NewDiagram(rung.ID)
		d.AppendRung(&rung)
		return d, nil
	}

	var d ladder.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	seen := map[string]bool{}
	for i, rung := range d.Rungs {
		if rung == nil {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "rung %d is null", i)
		}
		if seen[rung.ID] {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "duplicate rung id %q", rung.ID)
		}
		seen[rung.ID] = true
		d.NextBase = max(d.NextBase, rung.LocalIDBase+ladder.LocalIDStride)
	}
	return &d, nil
}

// ImportRung reads a rung from the JSON file at path.
func ImportRung(path string) (*ladder.Rung, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRung(f)
}

// ImportDiagram reads a diagram, or a single rung, from the JSON file at
// path.
func ImportDiagram(path string) (*ladder.Diagram, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDiagram(f)
}

// InspectDiagram reads the JSON file at path like ImportDiagram but leaves
// the rungs unvalidated, for tools that report on broken files.
func InspectDiagram(path string) (*ladder.Diagram, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeDiagram(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
