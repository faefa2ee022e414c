// Package io reads and writes ladder rungs and diagrams as JSON.
//
// # JSON Format
//
// A rung is an object with its id, canvas bounds, local id counters and the
// two arrays that make up the graph:
//
//	{
//	  "id": "main",
//	  "nodes": [
//	    {"id": "left-rail", "type": "powerRail", "localId": 1, ...,
//	     "data": {"side": "left"}},
//	    {"id": "start", "type": "contact", "localId": 3, ...,
//	     "data": {"variable": "Start", "modifier": "normal"}}
//	  ],
//	  "edges": [
//	    {"id": "e_left-rail_out__start_in", "source": "left-rail",
//	     "sourceHandle": "out", "target": "start", "targetHandle": "in"}
//	  ],
//	  "defaultBounds": {"width": 600, "height": 80},
//	  "nextLocalId": 3
//	}
//
// Node payloads sit under "data" and are decoded according to "type".
// Positions, sizes and handle positions are written as computed by the
// layout engine; readers that only care about topology can ignore them.
//
// A diagram wraps an ordered list of rungs:
//
//	{"name": "Main", "rungs": [{...}, {...}], "nextBase": 20000}
//
// # Import
//
// [ReadRung] and [ImportRung] decode a rung and reject it unless it is a
// committed rung: one rail on each side, consistent branches and no
// placeholders. [ReadDiagram] and [ImportDiagram] do the same for every rung
// of a diagram and also accept a file holding a single rung.
//
// # Export
//
// [WriteRung], [WriteDiagram], [ExportRung] and [ExportDiagram] write the
// same format, indented, so an exported file can be re-imported unchanged.
package io
