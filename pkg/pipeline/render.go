package pipeline

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/plcopen"
	"github.com/matzehuels/ladderkit/pkg/render/nodelink"
)

// Render produces one artifact of a laid out rung. It does not consult the
// cache; use [Runner.Export] for that.
func Render(r *ladder.Rung, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatXML:
		return plcopen.MarshalRung(r, plcopen.Options{Logger: opts.Logger, Indent: opts.Indent})
	case FormatJSON:
		var buf bytes.Buffer
		if err := io.WriteRung(r, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(dot(r, opts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(dot(r, opts))
	case FormatPNG:
		return nodelink.RenderPNG(dot(r, opts))
	default:
		return nil, fmt.Errorf("unsupported rung format: %s", format)
	}
}

// RenderDiagram produces one artifact of a laid out diagram.
func RenderDiagram(d *ladder.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatXML:
		return plcopen.MarshalDiagram(d, plcopen.Options{Logger: opts.Logger, Indent: opts.Indent})
	case FormatJSON:
		var buf bytes.Buffer
		if err := io.WriteDiagram(d, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported diagram format: %s", format)
	}
}

func dot(r *ladder.Rung, opts Options) string {
	return nodelink.ToDOT(r, nodelink.Options{Detailed: opts.Detailed})
}

// graphviz reports whether format is rendered by Graphviz from DOT.
func graphviz(format string) bool {
	return format == FormatSVG || format == FormatPNG
}
