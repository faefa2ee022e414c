// Package drag moves an element of a committed rung to another position.
//
// A [Drag] lives from [Start] to [Drop] or [Cancel]. While it is active the
// element is replaced by a ghost that keeps its wires, placeholders are shown
// around every element, and [Drag.Move] keeps the one nearest to the pointer
// selected. Dropping reinserts the element at that placeholder and removes
// the ghost; dropping next to the ghost itself leaves the rung as it was.
package drag
