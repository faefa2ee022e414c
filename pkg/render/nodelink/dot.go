package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds node ids, local ids and handle names to the labels.
	// When false, only the ladder symbol and its variable are shown.
	Detailed bool
}

// ToDOT converts a rung to Graphviz DOT format, power flowing left to right.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Parallel lanes are drawn as dashed points, synthetic variables as plain
// text next to their block, and wires into the parallel connectors of a
// branch are dashed.
func ToDOT(r *ladder.Rung, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges {
		var attrs []string
		if e.SourceHandle == ladder.HandleParallelOut || e.TargetHandle == ladder.HandleParallelIn {
			attrs = append(attrs, "style=dashed")
		}
		if !r.IsPowerEdge(e) {
			attrs = append(attrs, "arrowhead=none", "color=grey40")
		}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("taillabel=%q, headlabel=%q", e.SourceHandle, e.TargetHandle), "fontsize=9")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n ladder.Node, detailed bool) string {
	var label string
	switch d := n.Data.(type) {
	case ladder.RailData:
		label = string(d.Side)
	case ladder.ContactData:
		label = contactSymbol(d.Modifier) + "\n" + d.Variable
	case ladder.CoilData:
		label = coilSymbol(d.Modifier) + "\n" + d.Variable
	case ladder.BlockData:
		label = d.TypeName
		if d.InstanceName != "" {
			label = d.InstanceName + "\n" + label
		}
	case ladder.VariableData:
		label = d.Name
	case ladder.PlaceholderData:
		label = "+"
	default:
		label = ""
	}
	if !detailed {
		return label
	}
	parts := []string{n.ID}
	if n.LocalID != 0 {
		parts = append(parts, "#"+strconv.Itoa(n.LocalID))
	}
	if label != "" {
		parts = append(parts, label)
	}
	return strings.Join(parts, "\n")
}

func contactSymbol(m ladder.ContactModifier) string {
	switch m {
	case ladder.ContactNegated:
		return "-|/|-"
	case ladder.ContactRising:
		return "-|P|-"
	case ladder.ContactFalling:
		return "-|N|-"
	}
	return "-| |-"
}

func coilSymbol(m ladder.CoilModifier) string {
	switch m {
	case ladder.CoilNegated:
		return "-(/)-"
	case ladder.CoilSet:
		return "-(S)-"
	case ladder.CoilReset:
		return "-(R)-"
	case ladder.CoilRising:
		return "-(P)-"
	case ladder.CoilFalling:
		return "-(N)-"
	}
	return "-( )-"
}

func fmtAttrs(n ladder.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case ladder.KindPowerRail:
		attrs = append(attrs, "shape=box", "style=filled", "fillcolor=black", "fontcolor=white", "width=0.2", "height=1.2")
	case ladder.KindCoil:
		attrs = append(attrs, "shape=ellipse", "style=filled")
	case ladder.KindBlock:
		attrs = append(attrs, "fillcolor=lightyellow")
	case ladder.KindParallelOpen, ladder.KindParallelClose:
		attrs = append(attrs, "shape=point", "width=0.12")
	case ladder.KindVariable:
		attrs = append(attrs, "shape=plaintext", "style=\"\"")
	case ladder.KindPlaceholder, ladder.KindParallelPlaceholder:
		attrs = append(attrs, "shape=circle", "style=\"filled,dashed\"", "fillcolor=lightgrey", "width=0.25")
		if d, ok := n.Data.(ladder.PlaceholderData); ok && d.Selected {
			attrs = append(attrs, "color=blue", "penwidth=2")
		}
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderDOT(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
