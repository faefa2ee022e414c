package plcopen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Options configures export.
type Options struct {
	// Logger receives warnings about wires that cannot be resolved. Nil
	// means log.Default().
	Logger *log.Logger

	// Indent is the per-level indentation of the XML output. Empty writes
	// the document on a single line.
	Indent string
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// Rung converts a committed rung into the elements of an LD body.
// Execution order ids of blocks start at 1.
func Rung(r *ladder.Rung, opts Options) (*LD, error) {
	ld := &LD{}
	if _, err := appendRung(ld, r, 1, opts); err != nil {
		return nil, err
	}
	return ld, nil
}

// Diagram converts every rung of d, top to bottom, into a program POU.
// Block execution order continues from one rung to the next.
func Diagram(d *ladder.Diagram, opts Options) (*POU, error) {
	pou := &POU{Namespace: Namespace, Name: d.Name, POUType: "program"}
	order := 1
	for _, r := range d.Rungs {
		var err error
		if order, err = appendRung(&pou.Body.LD, r, order, opts); err != nil {
			return nil, err
		}
	}
	pou.Interface.LocalVars = declarations(d.Rungs, opts.logger())
	return pou, nil
}

// MarshalRung returns the XML of [Rung].
func MarshalRung(r *ladder.Rung, opts Options) ([]byte, error) {
	ld, err := Rung(r, opts)
	if err != nil {
		return nil, err
	}
	return marshal(ld, opts.Indent)
}

// MarshalDiagram returns the XML of [Diagram].
func MarshalDiagram(d *ladder.Diagram, opts Options) ([]byte, error) {
	pou, err := Diagram(d, opts)
	if err != nil {
		return nil, err
	}
	return marshal(pou, opts.Indent)
}

// WriteRung writes the XML of [Rung] to w.
func WriteRung(w io.Writer, r *ladder.Rung, opts Options) error {
	data, err := MarshalRung(r, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteDiagram writes the XML of [Diagram] to w.
func WriteDiagram(w io.Writer, d *ladder.Diagram, opts Options) error {
	data, err := MarshalDiagram(d, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if indent != "" {
		enc.Indent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// appendRung adds the elements of r to ld and returns the next free
// execution order id.
func appendRung(ld *LD, r *ladder.Rung, order int, opts Options) (int, error) {
	if len(r.Placeholders()) > 0 {
		return order, perrors.New(perrors.ErrCodeInvalidInput, "rung %s has placeholders; export needs a committed rung", r.ID)
	}
	x := &exporter{r: r, log: opts.logger().With("rung", r.ID)}
	orders, err := executionOrder(r, order)
	if err != nil {
		return order, err
	}
	for _, n := range r.Nodes {
		el, err := x.element(&n, orders)
		if err != nil {
			return order, err
		}
		if el != nil {
			ld.Elements = append(ld.Elements, el)
		}
	}
	return order + len(orders), nil
}

type exporter struct {
	r   *ladder.Rung
	log *log.Logger
}

func (x *exporter) element(n *ladder.Node, orders map[string]int) (Element, error) {
	if n.LocalID == 0 && !n.Kind.IsParallel() {
		x.log.Warn("skipping node without local id", "node", n.ID)
		return nil, nil
	}
	switch d := n.Data.(type) {
	case ladder.RailData:
		if d.Side == ladder.RailLeft {
			return &LeftPowerRail{
				LocalID: n.LocalID, Width: n.Size.Width, Height: n.Size.Height,
				Position: pos(n.Position),
				Out:      []ConnectionPointOut{x.pointOut(n, ladder.HandleOut, "")},
			}, nil
		}
		return &RightPowerRail{
			LocalID: n.LocalID, Width: n.Size.Width, Height: n.Size.Height,
			Position: pos(n.Position),
			In:       []ConnectionPointIn{x.pointIn(n, ladder.HandleIn)},
		}, nil
	case ladder.ContactData:
		negated, edge := contactFlags(d.Modifier)
		return &Contact{
			LocalID: n.LocalID, Negated: negated, Edge: edge,
			Width: n.Size.Width, Height: n.Size.Height,
			Position: pos(n.Position),
			In:       x.pointIn(n, ladder.HandleIn),
			Out:      x.pointOut(n, ladder.HandleOut, ""),
			Variable: d.Variable,
		}, nil
	case ladder.CoilData:
		negated, edge, storage := coilFlags(d.Modifier)
		return &Coil{
			LocalID: n.LocalID, Negated: negated, Edge: edge, Storage: storage,
			Width: n.Size.Width, Height: n.Size.Height,
			Position: pos(n.Position),
			In:       x.pointIn(n, ladder.HandleIn),
			Out:      x.pointOut(n, ladder.HandleOut, ""),
			Variable: d.Variable,
		}, nil
	case ladder.BlockData:
		return x.block(n, d, orders[n.ID]), nil
	case ladder.VariableData:
		return x.variable(n, d), nil
	case ladder.ParallelData:
		// Branches have no element of their own; wires are routed through them.
		return nil, nil
	default:
		return nil, perrors.BrokenGraph(n.ID, "cannot export %s node", n.Kind)
	}
}

func (x *exporter) block(n *ladder.Node, d ladder.BlockData, order int) *Block {
	b := &Block{
		LocalID: n.LocalID, TypeName: d.TypeName, ExecutionOrderID: order,
		Width: n.Size.Width, Height: n.Size.Height,
		Position: pos(n.Position),
	}
	if d.FunctionBlock {
		b.InstanceName = d.InstanceName
	}
	for _, p := range d.Inputs {
		in := x.pointIn(n, ladder.BlockInputHandleID(p.Name))
		b.InputVariables.Variables = append(b.InputVariables.Variables, BlockVariable{FormalParameter: p.Name, In: &in})
	}
	for _, p := range d.Outputs {
		out := x.pointOut(n, ladder.BlockOutputHandleID(p.Name), "")
		b.OutputVariables.Variables = append(b.OutputVariables.Variables, BlockVariable{FormalParameter: p.Name, Out: &out})
	}
	return b
}

func (x *exporter) variable(n *ladder.Node, d ladder.VariableData) Element {
	if d.Name == "" {
		x.log.Warn("skipping unbound block port", "block", d.BlockID, "port", d.Port)
		return nil
	}
	if d.Direction == ladder.VariableInput {
		return &InVariable{
			LocalID: n.LocalID, Width: n.Size.Width, Height: n.Size.Height,
			Position:   pos(n.Position),
			Out:        x.pointOut(n, ladder.HandleOut, ""),
			Expression: d.Name,
		}
	}
	return &OutVariable{
		LocalID: n.LocalID, Width: n.Size.Width, Height: n.Size.Height,
		Position:   pos(n.Position),
		In:         x.pointIn(n, ladder.HandleIn),
		Expression: d.Name,
	}
}

func (x *exporter) pointOut(n *ladder.Node, handleID, formal string) ConnectionPointOut {
	h, ok := n.Handle(handleID)
	if !ok {
		return ConnectionPointOut{FormalParameter: formal}
	}
	return ConnectionPointOut{FormalParameter: formal, RelPosition: pos(h.Offset)}
}

// pointIn builds the input connector handleID of n with one connection per
// element that feeds it.
func (x *exporter) pointIn(n *ladder.Node, handleID string) ConnectionPointIn {
	h, ok := n.Handle(handleID)
	if !ok {
		x.log.Warn("skipping missing connector", "node", n.ID, "handle", handleID)
		return ConnectionPointIn{}
	}
	cp := ConnectionPointIn{RelPosition: pos(h.Offset)}
	for _, e := range x.r.Edges {
		if e.Target != n.ID || e.TargetHandle != handleID {
			continue
		}
		for _, c := range x.connections(e, h.Position) {
			dup := slices.ContainsFunc(cp.Connections, func(o Connection) bool {
				return o.RefLocalID == c.RefLocalID && o.FormalParameter == c.FormalParameter
			})
			if !dup {
				cp.Connections = append(cp.Connections, c)
			}
		}
	}
	return cp
}

// connections resolves the wire e into the connector at target to the
// elements it comes from, routing through any branch it crosses.
func (x *exporter) connections(e ladder.Edge, target ladder.Point) []Connection {
	routes, err := x.trace(e, nil, map[string]bool{})
	if err != nil {
		x.log.Warn("skipping unresolved connection", "edge", e.ID, "source", e.Source, "target", e.Target, "err", err)
		return nil
	}
	out := make([]Connection, 0, len(routes))
	for _, rt := range routes {
		if rt.source.LocalID == 0 {
			x.log.Warn("skipping connection from node without local id", "source", rt.source.ID, "target", e.Target)
			continue
		}
		if v, ok := rt.source.Variable(); ok && v.Name == "" {
			continue
		}
		h, ok := rt.source.Handle(rt.handle)
		if !ok {
			x.log.Warn("skipping connection from missing connector", "source", rt.source.ID, "handle", rt.handle)
			continue
		}
		c := Connection{RefLocalID: rt.source.LocalID, Positions: bends(target, h.Position, rt.via)}
		if rt.source.Kind == ladder.KindBlock {
			c.FormalParameter = ladder.PortName(rt.handle)
		}
		out = append(out, c)
	}
	return out
}

func pos(p ladder.Point) Position { return Position{X: p.X, Y: p.Y} }

func contactFlags(m ladder.ContactModifier) (negated bool, edge string) {
	switch m {
	case ladder.ContactNegated:
		return true, "none"
	case ladder.ContactRising:
		return false, "rising"
	case ladder.ContactFalling:
		return false, "falling"
	}
	return false, "none"
}

func coilFlags(m ladder.CoilModifier) (negated bool, edge, storage string) {
	switch m {
	case ladder.CoilNegated:
		return true, "none", "none"
	case ladder.CoilSet:
		return false, "none", "set"
	case ladder.CoilReset:
		return false, "none", "reset"
	case ladder.CoilRising:
		return false, "rising", "none"
	case ladder.CoilFalling:
		return false, "falling", "none"
	}
	return false, "none", "none"
}
