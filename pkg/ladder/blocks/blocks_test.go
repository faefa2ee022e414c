package blocks

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		fb     bool
		power  [2]string
		inputs int
	}{
		{"TON", true, [2]string{"IN", "Q"}, 2},
		{"ton", true, [2]string{"IN", "Q"}, 2},
		{"CTUD", true, [2]string{"CU", "QU"}, 5},
		{"R_TRIG", true, [2]string{"CLK", "Q"}, 1},
		{"RS", true, [2]string{"S", "Q1"}, 2},
		{"ADD", false, [2]string{"EN", "ENO"}, 3},
		{"MOVE", false, [2]string{"EN", "ENO"}, 2},
		{"LIMIT", false, [2]string{"EN", "ENO"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.name)
			}
			if d.FunctionBlock != tt.fb {
				t.Errorf("FunctionBlock = %v, want %v", d.FunctionBlock, tt.fb)
			}
			if got := [2]string{d.Inputs[0].Name, d.Outputs[0].Name}; got != tt.power {
				t.Errorf("power ports = %v, want %v", got, tt.power)
			}
			if len(d.Inputs) != tt.inputs {
				t.Errorf("len(Inputs) = %d, want %d", len(d.Inputs), tt.inputs)
			}
		})
	}

	if _, ok := Lookup("NOPE"); ok {
		t.Error("Lookup(NOPE) found something")
	}
}

func TestCatalogIsComplete(t *testing.T) {
	want := []string{
		"ADD", "CTD", "CTU", "CTUD", "DIV", "EQ", "F_TRIG", "GE", "GT",
		"LE", "LIMIT", "LT", "MAX", "MIN", "MOD", "MOVE", "MUL", "NE",
		"RS", "R_TRIG", "SEL", "SR", "SUB", "TOF", "TON", "TP",
	}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
	if got := len(All()); got != len(want) {
		t.Errorf("len(All()) = %d, want %d", got, len(want))
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	d, _ := Lookup("TON")
	d.Inputs[0].Name = "X"
	again, _ := Lookup("TON")
	if again.Inputs[0].Name != "IN" {
		t.Error("Lookup shares port slices with the catalog")
	}
}

func TestNode(t *testing.T) {
	n, ok := Node("t1", "TON", "Timer1")
	if !ok {
		t.Fatal("Node(TON) not found")
	}
	if n.Kind != ladder.KindBlock {
		t.Fatalf("Kind = %s", n.Kind)
	}
	d, _ := n.Block()
	if d.InstanceName != "Timer1" || d.TypeName != "TON" {
		t.Errorf("data = %+v", d)
	}
	if _, ok := n.Handle(ladder.BlockInputHandleID("PT")); !ok {
		t.Error("missing PT handle")
	}

	add, _ := Node("a1", "ADD", "ignored")
	if d, _ := add.Block(); d.InstanceName != "" {
		t.Errorf("function got instance name %q", d.InstanceName)
	}
}
