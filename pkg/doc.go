// Package pkg provides the core libraries for ladderkit, an editing engine for
// IEC 61131-3 ladder diagrams.
//
// # Overview
//
// A ladder rung is held as a directed graph: a left and a right power rail,
// contacts, coils and function blocks in between, and pairs of parallel
// nodes that open and close branches. Every edit takes a rung and returns a
// new one, so callers keep the previous rung for undo and comparison.
//
// # Architecture
//
// The typical data flow through ladderkit:
//
//	JSON diagram
//	     ↓
//	[io] package (decode + validate)
//	     ↓
//	[ladder/placeholder] package (insertion slots)
//	     ↓
//	[ladder/edit] / [ladder/drag] packages (insert, remove, move)
//	     ↓
//	[ladder/layout] package (positions and connectors)
//	     ↓
//	[pipeline] package (PLCopen XML, JSON, DOT/SVG/PNG)
//
// # Quick Start
//
// Place a contact on an empty rung and export it:
//
//	import (
//	    "github.com/matzehuels/ladderkit/pkg/ladder"
//	    "github.com/matzehuels/ladderkit/pkg/ladder/edit"
//	    "github.com/matzehuels/ladderkit/pkg/ladder/layout"
//	    "github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
//	    "github.com/matzehuels/ladderkit/pkg/plcopen"
//	)
//
//	r := ladder.NewRung("main", ladder.DefaultBounds)
//	c := ladder.NewContact(ladder.NewID("contact"), "Start", ladder.ContactNormal)
//
//	id := placeholder.ID(ladder.RightRailID, ladder.SideLeft)
//	r, _ = edit.AddAt(r, c, id, edit.Options{Layout: layout.DefaultConfig()})
//
//	xml, _ := plcopen.MarshalRung(r, plcopen.Options{Indent: "  "})
//
// # Main Packages
//
// [ladder] - The rung graph: nodes, edges, branch structure and validation.
//
// [ladder/placeholder] - Computes the transient slots where an element may
// be inserted, and selects one of them by id or by proximity.
//
// [ladder/edit] - Inserts elements at the selected placeholder, removes
// elements and prunes the branches left empty.
//
// [ladder/drag] - Moves an element to another placeholder. The rung stays
// committed until the drop.
//
// [ladder/layout] - Derives positions, sizes and connector points from the
// topology.
//
// [ladder/blocks] - The catalog of standard functions and function blocks.
//
// [session] - Holds a rung while it is being edited, with memory, file and
// Redis stores.
//
// [plcopen] - Writes rungs as PLCopen TC6 XML.
//
// [render/nodelink] - Draws the rung graph with Graphviz.
//
// [pipeline] - The export pipeline shared by the CLI and the HTTP server,
// with artifact caching from [cache].
//
// [ladder]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder
// [ladder/placeholder]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder/placeholder
// [ladder/edit]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder/edit
// [ladder/drag]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder/drag
// [ladder/layout]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder/layout
// [ladder/blocks]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/ladder/blocks
// [io]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/io
// [session]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/session
// [plcopen]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/plcopen
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ladderkit/pkg/cache
package pkg
