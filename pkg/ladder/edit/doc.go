// Package edit implements element insertion and removal on a ladder rung.
//
// [Add] places a contact, coil or block at the selected placeholder, either
// spliced into an existing wire or as the parallel lane of a new branch.
// [Remove] takes an element out again and [Prune]s any branch that is left
// with an empty lane, collapsing it into the surrounding lane.
//
// Every operation works on a copy and returns a committed rung: placeholders
// stripped, layout recomputed and the structural invariants of the ladder
// package intact. Requests that cannot apply, such as an insertion with no
// selected placeholder, return the input rung itself.
package edit
