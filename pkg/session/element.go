package session

import (
	"slices"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/blocks"
)

// Element describes an element to insert, as requested by a toolbar drop.
//
// Variant selects the contact or coil modifier ("negated", "set", ...) or
// the block type ("TON", "ADD", ...). Variable is the variable a contact or
// coil is bound to, or the instance name of a function block. Bindings
// names the variables of a block's other ports, keyed by port name.
type Element struct {
	Kind     ladder.Kind       `json:"kind"`
	Variant  string            `json:"variant,omitempty"`
	Variable string            `json:"variable,omitempty"`
	Bindings map[string]string `json:"bindings,omitempty"`
}

var (
	contactModifiers = []ladder.ContactModifier{
		ladder.ContactNormal, ladder.ContactNegated, ladder.ContactRising, ladder.ContactFalling,
	}
	coilModifiers = []ladder.CoilModifier{
		ladder.CoilNormal, ladder.CoilNegated, ladder.CoilSet, ladder.CoilReset,
		ladder.CoilRising, ladder.CoilFalling,
	}
)

// Node builds the node for e. The id is left empty for the insertion engine
// to assign.
func (e Element) Node() (ladder.Node, error) {
	switch e.Kind {
	case ladder.KindContact:
		mod := ladder.ContactModifier(e.Variant)
		if mod != "" && !slices.Contains(contactModifiers, mod) {
			return ladder.Node{}, perrors.New(perrors.ErrCodeInvalidElement, "unknown contact modifier %q", e.Variant)
		}
		if err := validateVariable(e.Variable); err != nil {
			return ladder.Node{}, err
		}
		return ladder.NewContact("", e.Variable, mod), nil
	case ladder.KindCoil:
		mod := ladder.CoilModifier(e.Variant)
		if mod != "" && !slices.Contains(coilModifiers, mod) {
			return ladder.Node{}, perrors.New(perrors.ErrCodeInvalidElement, "unknown coil modifier %q", e.Variant)
		}
		if err := validateVariable(e.Variable); err != nil {
			return ladder.Node{}, err
		}
		return ladder.NewCoil("", e.Variable, mod), nil
	case ladder.KindBlock:
		return e.block()
	default:
		return ladder.Node{}, perrors.New(perrors.ErrCodeInvalidElement, "cannot insert a %q", e.Kind)
	}
}

func (e Element) block() (ladder.Node, error) {
	def, ok := blocks.Lookup(e.Variant)
	if !ok {
		return ladder.Node{}, perrors.New(perrors.ErrCodeInvalidBlock, "unknown block type %q", e.Variant)
	}
	if def.FunctionBlock {
		if err := perrors.ValidateIdentifier(e.Variable); err != nil {
			return ladder.Node{}, perrors.Wrap(perrors.ErrCodeInvalidBlock, err, "%s needs an instance name", def.Name)
		}
	}
	for port, name := range e.Bindings {
		in := slices.IndexFunc(def.Inputs, func(p ladder.Port) bool { return p.Name == port })
		out := slices.IndexFunc(def.Outputs, func(p ladder.Port) bool { return p.Name == port })
		switch {
		case in > 0:
			// Inputs also take literals such as T#2s.
		case out > 0:
			if err := validateVariable(name); err != nil {
				return ladder.Node{}, err
			}
		default:
			return ladder.Node{}, perrors.New(perrors.ErrCodeInvalidBlock, "%s has no bindable port %q", def.Name, port)
		}
	}
	return def.Node("", e.Variable), nil
}

func validateVariable(name string) error {
	if name == "" {
		return nil
	}
	return perrors.ValidateVariableName(name)
}
