// Package render holds the debug renderers for ladder rungs.
//
// The editor's own canvas draws rungs from the positions computed by the
// layout engine. The [nodelink] subpackage draws the underlying graph with
// Graphviz instead, which shows wires, branch delimiters and placeholders
// exactly as the engine sees them.
//
// [nodelink]: github.com/matzehuels/ladderkit/pkg/render/nodelink
package render
