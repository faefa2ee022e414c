// Package blocks is the catalog of standard IEC 61131-3 functions and
// function blocks that can be placed on a rung.
//
// Every [Definition] lists its ports in order. The first input and the first
// output carry power flow through the rung; the remaining ports are bound to
// variables by the insertion engine. Functions get EN/ENO as their power
// connectors, function blocks use their own boolean trigger and result.
//
//	def, _ := blocks.Lookup("TON")
//	n := def.Node("", "Timer1")
package blocks
