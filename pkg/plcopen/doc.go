// Package plcopen writes ladder rungs as PLCopen TC6 XML.
//
// [Rung] turns one committed rung into the graphical elements of an LD body
// and [Diagram] turns a whole diagram into a program POU, declaring the
// variables and function block instances its rungs use. Each element is
// identified by the node's stable local id, and every input connector lists
// the elements whose outputs feed it.
//
// # Branches
//
// PLCopen has no element for the start or end of a parallel branch. A wire
// leaving a ParallelOpen or ParallelClose is traced back through every
// branch delimiter it crosses, nested ones included, until it reaches the
// contacts, coils, blocks or rail actually feeding it. The delimiters still
// shape the wire: each one adds bend points on its vertical center line so
// the exported polyline follows the drawn rung.
//
// # Gaps
//
// A wire that cannot be traced, such as one coming out of a branch with no
// input, is logged at warn level and left out. The rest of the rung is still
// exported so it can be repaired later. Rungs that still show placeholders
// are rejected: only committed rungs can be exported.
package plcopen
