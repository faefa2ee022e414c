// Package nodelink renders ladder rungs as node-link diagrams for debugging.
//
// # Overview
//
// The editor draws rungs itself from the laid-out node positions. This
// package is the view for when the graph behind a drawing is in question:
// every node, including branch delimiters, synthetic variables and
// placeholders, becomes a Graphviz node and every wire an arrow.
//
// # Usage
//
// Convert a rung to DOT format, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(r, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// # Options
//
//   - Detailed: labels carry node ids and local ids, wires their handle ids
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
