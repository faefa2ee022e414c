// Package ladder provides the graph model of an IEC 61131-3 ladder diagram
// rung and the connection algebra used to edit it.
//
// # Overview
//
// A [Rung] is an arena of [Node] values and [Edge] wires. Nodes refer to
// each other only by id, so a rung is a plain serializable record that can be
// cloned, stored and sent to any renderer. Every rung is bounded by exactly
// one left and one right power rail; contacts, coils and blocks sit on the
// power flow between them, and ParallelOpen/ParallelClose pairs delimit
// branches that may nest to any depth.
//
// # Node Kinds
//
// The [Kind] set is closed. Each kind carries a payload implementing the
// sealed [Data] interface:
//
//   - [KindPowerRail]: [RailData], left or right bus
//   - [KindContact]: [ContactData], reads a variable
//   - [KindCoil]: [CoilData], writes a variable
//   - [KindBlock]: [BlockData], function or function block
//   - [KindParallelOpen], [KindParallelClose]: [ParallelData], mutual pair
//   - [KindVariable]: [VariableData], synthetic node bound to a block port
//   - [KindPlaceholder], [KindParallelPlaceholder]: [PlaceholderData],
//     transient insertion slots
//
// # Connection Algebra
//
// [Rung.Connect] splices a node after another on the serial or parallel lane,
// reusing the handles of the wire it replaces. [Rung.Disconnect] is its
// inverse: it removes a node from between its predecessor and successor and
// joins them with the original handles.
//
//	r := ladder.NewRung("main", ladder.Size{})
//	_ = r.AddNode(ladder.NewContact("start", "Start", ladder.ContactNormal))
//	_, _ = r.Connect(ladder.LeftRailID, "start", ladder.LaneSerial)
//
// # Branches
//
// [ParallelDepthAndNodes] walks the rung and describes every branch with its
// nesting depth and lane membership. [NodesInsideAnyParallel] and
// [DeepestNodesInsideParallels] derive the sets used to decide where a new
// branch may be opened.
//
// # Validation
//
// [Rung.Validate] checks the invariants of a committed rung and reports the
// first violation as a BrokenGraphError from the errors package. Engine
// packages (placeholder, edit, layout, drag) never mutate their input: they
// clone, edit the clone and return it, so each returned rung can serve as an
// undo snapshot.
package ladder
