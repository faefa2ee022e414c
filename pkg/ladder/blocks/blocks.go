package blocks

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// Category groups catalog entries the way block pickers list them.
type Category string

const (
	CategoryTimer      Category = "timer"
	CategoryCounter    Category = "counter"
	CategoryTrigger    Category = "trigger"
	CategoryBistable   Category = "bistable"
	CategoryArithmetic Category = "arithmetic"
	CategoryComparison Category = "comparison"
	CategorySelection  Category = "selection"
)

// Definition is the signature of a standard block. Inputs[0] and Outputs[0]
// are the power-flow connectors: EN and ENO for functions, the boolean
// trigger and result for function blocks.
type Definition struct {
	Name          string
	Category      Category
	FunctionBlock bool
	Inputs        []ladder.Port
	Outputs       []ladder.Port
	Description   string
}

func port(name, typ string) ladder.Port { return ladder.Port{Name: name, Type: typ} }

func fb(name string, cat Category, desc string, in, out []ladder.Port) Definition {
	return Definition{Name: name, Category: cat, FunctionBlock: true, Inputs: in, Outputs: out, Description: desc}
}

// fn prepends EN/ENO to a function signature.
func fn(name string, cat Category, desc string, in, out []ladder.Port) Definition {
	return Definition{
		Name:        name,
		Category:    cat,
		Inputs:      append([]ladder.Port{port("EN", "BOOL")}, in...),
		Outputs:     append([]ladder.Port{port("ENO", "BOOL")}, out...),
		Description: desc,
	}
}

func timer(name, desc string) Definition {
	return fb(name, CategoryTimer, desc,
		[]ladder.Port{port("IN", "BOOL"), port("PT", "TIME")},
		[]ladder.Port{port("Q", "BOOL"), port("ET", "TIME")})
}

func binary(name string, cat Category, desc, typ string) Definition {
	return fn(name, cat, desc,
		[]ladder.Port{port("IN1", "ANY_NUM"), port("IN2", "ANY_NUM")},
		[]ladder.Port{port("OUT", typ)})
}

var catalog = map[string]Definition{
	"TON": timer("TON", "On-delay timer"),
	"TOF": timer("TOF", "Off-delay timer"),
	"TP":  timer("TP", "Pulse timer"),

	"CTU": fb("CTU", CategoryCounter, "Up counter",
		[]ladder.Port{port("CU", "BOOL"), port("R", "BOOL"), port("PV", "INT")},
		[]ladder.Port{port("Q", "BOOL"), port("CV", "INT")}),
	"CTD": fb("CTD", CategoryCounter, "Down counter",
		[]ladder.Port{port("CD", "BOOL"), port("LD", "BOOL"), port("PV", "INT")},
		[]ladder.Port{port("Q", "BOOL"), port("CV", "INT")}),
	"CTUD": fb("CTUD", CategoryCounter, "Up-down counter",
		[]ladder.Port{port("CU", "BOOL"), port("CD", "BOOL"), port("R", "BOOL"), port("LD", "BOOL"), port("PV", "INT")},
		[]ladder.Port{port("QU", "BOOL"), port("QD", "BOOL"), port("CV", "INT")}),

	"R_TRIG": fb("R_TRIG", CategoryTrigger, "Rising edge detector",
		[]ladder.Port{port("CLK", "BOOL")}, []ladder.Port{port("Q", "BOOL")}),
	"F_TRIG": fb("F_TRIG", CategoryTrigger, "Falling edge detector",
		[]ladder.Port{port("CLK", "BOOL")}, []ladder.Port{port("Q", "BOOL")}),

	"SR": fb("SR", CategoryBistable, "Set-dominant bistable",
		[]ladder.Port{port("S1", "BOOL"), port("R", "BOOL")}, []ladder.Port{port("Q1", "BOOL")}),
	"RS": fb("RS", CategoryBistable, "Reset-dominant bistable",
		[]ladder.Port{port("S", "BOOL"), port("R1", "BOOL")}, []ladder.Port{port("Q1", "BOOL")}),

	"ADD": binary("ADD", CategoryArithmetic, "Addition", "ANY_NUM"),
	"SUB": binary("SUB", CategoryArithmetic, "Subtraction", "ANY_NUM"),
	"MUL": binary("MUL", CategoryArithmetic, "Multiplication", "ANY_NUM"),
	"DIV": binary("DIV", CategoryArithmetic, "Division", "ANY_NUM"),
	"MOD": binary("MOD", CategoryArithmetic, "Modulo", "ANY_INT"),
	"MOVE": fn("MOVE", CategoryArithmetic, "Assignment",
		[]ladder.Port{port("IN", "ANY")}, []ladder.Port{port("OUT", "ANY")}),

	"GT": binary("GT", CategoryComparison, "Greater than", "BOOL"),
	"GE": binary("GE", CategoryComparison, "Greater or equal", "BOOL"),
	"EQ": binary("EQ", CategoryComparison, "Equal", "BOOL"),
	"NE": binary("NE", CategoryComparison, "Not equal", "BOOL"),
	"LE": binary("LE", CategoryComparison, "Less or equal", "BOOL"),
	"LT": binary("LT", CategoryComparison, "Less than", "BOOL"),

	"SEL": fn("SEL", CategorySelection, "Binary selection",
		[]ladder.Port{port("G", "BOOL"), port("IN0", "ANY"), port("IN1", "ANY")},
		[]ladder.Port{port("OUT", "ANY")}),
	"MAX": binary("MAX", CategorySelection, "Maximum", "ANY_NUM"),
	"MIN": binary("MIN", CategorySelection, "Minimum", "ANY_NUM"),
	"LIMIT": fn("LIMIT", CategorySelection, "Limiter",
		[]ladder.Port{port("MN", "ANY_NUM"), port("IN", "ANY_NUM"), port("MX", "ANY_NUM")},
		[]ladder.Port{port("OUT", "ANY_NUM")}),
}

// Lookup returns the definition of the standard block name. Names are
// matched case-insensitively.
func Lookup(name string) (Definition, bool) {
	d, ok := catalog[strings.ToUpper(name)]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// Names returns the names of all catalog entries, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(catalog))
}

// All returns every definition, sorted by category and then name.
func All() []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, name := range Names() {
		out = append(out, catalog[name].clone())
	}
	slices.SortStableFunc(out, func(a, b Definition) int {
		return strings.Compare(string(a.Category), string(b.Category))
	})
	return out
}

func (d Definition) clone() Definition {
	d.Inputs = slices.Clone(d.Inputs)
	d.Outputs = slices.Clone(d.Outputs)
	return d
}

// Data returns the block payload for an instance of d. The instance name is
// dropped for functions, which have no state to name.
func (d Definition) Data(instance string) ladder.BlockData {
	bd := ladder.BlockData{
		TypeName:      d.Name,
		FunctionBlock: d.FunctionBlock,
		Inputs:        slices.Clone(d.Inputs),
		Outputs:       slices.Clone(d.Outputs),
	}
	if d.FunctionBlock {
		bd.InstanceName = instance
	}
	return bd
}

// Node builds a block node for d. An empty id is left for the insertion
// engine to fill in.
func (d Definition) Node(id, instance string) ladder.Node {
	return ladder.NewBlock(id, d.Data(instance))
}

// Node looks up name and builds a block node for it.
func Node(id, name, instance string) (ladder.Node, bool) {
	d, ok := Lookup(name)
	if !ok {
		return ladder.Node{}, false
	}
	return d.Node(id, instance), true
}
