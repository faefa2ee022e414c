package plcopen

import (
	"encoding/xml"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// elementaryTypes are the IEC types that can be declared directly. Generic
// port types such as ANY_NUM cannot, so variables bound only to generic
// ports are left to the caller's declarations.
var elementaryTypes = []string{
	"BOOL", "BYTE", "WORD", "DWORD", "LWORD",
	"SINT", "INT", "DINT", "LINT", "USINT", "UINT", "UDINT", "ULINT",
	"REAL", "LREAL", "TIME", "DATE", "TOD", "DT", "STRING",
}

// declarations collects the local variables the rungs refer to: contact and
// coil variables as BOOL, function block instances with their type, and
// block port variables with the port type when it is elementary. Names that
// are not plain identifiers, such as literals and direct addresses, are not
// declared. The first declaration of a name wins.
func declarations(rungs []*ladder.Rung, logger *log.Logger) []Variable {
	var out []Variable
	types := map[string]string{}
	declare := func(name, typ string, derived bool) {
		if perrors.ValidateIdentifier(name) != nil {
			return
		}
		key := strings.ToUpper(name)
		if prev, ok := types[key]; ok {
			if prev != typ {
				logger.Warn("conflicting variable types", "variable", name, "declared", prev, "used", typ)
			}
			return
		}
		types[key] = typ
		v := Variable{Name: name}
		if derived {
			v.Type.Derived = &Derived{Name: typ}
		} else {
			v.Type.Elementary = &Elementary{XMLName: xml.Name{Local: typ}}
		}
		out = append(out, v)
	}

	for _, r := range rungs {
		for _, n := range r.Nodes {
			switch d := n.Data.(type) {
			case ladder.ContactData:
				declare(d.Variable, "BOOL", false)
			case ladder.CoilData:
				declare(d.Variable, "BOOL", false)
			case ladder.BlockData:
				if d.FunctionBlock {
					declare(d.InstanceName, d.TypeName, true)
				}
			case ladder.VariableData:
				if typ := portType(r, d); slices.Contains(elementaryTypes, typ) {
					declare(d.Name, typ, false)
				}
			}
		}
	}
	return out
}

func portType(r *ladder.Rung, v ladder.VariableData) string {
	n, ok := r.Node(v.BlockID)
	if !ok {
		return ""
	}
	b, ok := n.Block()
	if !ok {
		return ""
	}
	ports := b.Outputs
	if v.Direction == ladder.VariableInput {
		ports = b.Inputs
	}
	for _, p := range ports {
		if p.Name == v.Port {
			return strings.ToUpper(p.Type)
		}
	}
	return ""
}
