// Package layout computes the geometry of a ladder rung from its topology.
//
// [Compute] is a pure function: it clones the rung, assigns every node on the
// power flow a position in dependency order starting at the left rail, stacks
// parallel lanes below their serial lane with enough room for nested
// branches, puts block variables next to their ports and sizes both power
// rails. Handle positions are refreshed from the new node positions.
//
// Spacing is controlled by [Config]; [DefaultConfig] matches the editor's
// canvas. The right rail follows the content but never moves left of the
// rung's default bounds.
package layout
