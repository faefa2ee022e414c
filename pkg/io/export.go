package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// WriteRung encodes a rung as indented JSON and writes it to w. The output
// holds every node with its payload, handles and layout, and every edge, so
// [ReadRung] restores the rung exactly.
func WriteRung(r *ladder.Rung, w io.Writer) error {
	return encode(r, w)
}

// WriteDiagram encodes a diagram with all of its rungs as indented JSON.
func WriteDiagram(d *ladder.Diagram, w io.Writer) error {
	return encode(d, w)
}

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportRung writes a rung to a JSON file at path.
func ExportRung(r *ladder.Rung, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteRung(r, w) })
}

// ExportDiagram writes a diagram to a JSON file at path.
func ExportDiagram(d *ladder.Diagram, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteDiagram(d, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
