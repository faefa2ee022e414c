package edit

import (
	"slices"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// VariableID returns the id of the synthetic variable bound to a block port.
func VariableID(blockID string, dir ladder.VariableDirection, port string) string {
	return "var_" + blockID + "_" + string(dir) + "_" + port
}

// bindVariables gives every non-power port of a block a synthetic variable
// wired to that port. Variables already bound to the block are kept, renamed
// if bindings says so, and rewired to the block; this also pulls them back
// from a drag ghost.
func bindVariables(r *ladder.Rung, blockID string, bindings map[string]string) error {
	n, ok := r.Node(blockID)
	if !ok {
		return nil
	}
	d, ok := n.Block()
	if !ok {
		return nil
	}
	for i, p := range d.Inputs {
		if i == 0 {
			continue
		}
		if err := bindPort(r, blockID, ladder.VariableInput, p.Name, bindings); err != nil {
			return err
		}
	}
	for i, p := range d.Outputs {
		if i == 0 {
			continue
		}
		if err := bindPort(r, blockID, ladder.VariableOutput, p.Name, bindings); err != nil {
			return err
		}
	}
	return nil
}

func bindPort(r *ladder.Rung, blockID string, dir ladder.VariableDirection, port string, bindings map[string]string) error {
	varID := ""
	for _, id := range r.VariablesOf(blockID) {
		v, _ := r.Node(id)
		if d, _ := v.Variable(); d.Port == port && d.Direction == dir {
			varID = id
			break
		}
	}

	if varID == "" {
		varID = VariableID(blockID, dir, port)
		v := ladder.NewVariable(varID, ladder.VariableData{
			Name:      bindings[port],
			Direction: dir,
			BlockID:   blockID,
			Port:      port,
		})
		if err := r.InsertNode(r.Index(blockID)+1, v); err != nil {
			return err
		}
	} else {
		v, _ := r.Node(varID)
		if name, ok := bindings[port]; ok {
			d, _ := v.Variable()
			d.Name = name
			v.Data = d
		}
		r.Edges = slices.DeleteFunc(r.Edges, func(e ladder.Edge) bool {
			return e.Source == varID || e.Target == varID
		})
	}

	if dir == ladder.VariableInput {
		r.Wire(ladder.NewEdge(varID, ladder.HandleOut, blockID, ladder.BlockInputHandleID(port)))
	} else {
		r.Wire(ladder.NewEdge(blockID, ladder.BlockOutputHandleID(port), varID, ladder.HandleIn))
	}
	return nil
}
