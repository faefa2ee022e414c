// Package placeholder computes the transient insertion slots of a rung.
//
// While the user is choosing where an element goes, the rung carries extra
// Placeholder and ParallelPlaceholder nodes. A default placeholder sits on
// either side of each element and on every wire between two non-elements; a
// parallel placeholder sits below each element that may open a new branch.
// Exactly one placeholder can be selected at a time and the selection decides
// where the next insertion or drop lands.
//
// Every function returns a new rung. [Strip] removes all placeholders again
// before a rung is committed.
package placeholder
