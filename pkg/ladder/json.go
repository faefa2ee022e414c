package ladder

import (
	"encoding/json"
	"fmt"
)

type nodeJSON struct {
	nodeAlias
	Data json.RawMessage `json:"data,omitempty"`
}

type nodeAlias Node

// MarshalJSON encodes the node with its payload under "data".
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{nodeAlias: nodeAlias(n)}
	if n.Data != nil {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return nil, err
		}
		out.Data = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node and picks the payload type from its kind.
func (n *Node) UnmarshalJSON(b []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*n = Node(in.nodeAlias)
	data, err := decodeData(n.Kind, in.Data)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	n.Data = data
	return nil
}

func decodeData(k Kind, raw json.RawMessage) (Data, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch k {
	case KindPowerRail:
		return decodeAs[RailData](raw)
	case KindContact:
		return decodeAs[ContactData](raw)
	case KindCoil:
		return decodeAs[CoilData](raw)
	case KindBlock:
		return decodeAs[BlockData](raw)
	case KindParallelOpen, KindParallelClose:
		return decodeAs[ParallelData](raw)
	case KindVariable:
		return decodeAs[VariableData](raw)
	case KindPlaceholder, KindParallelPlaceholder:
		return decodeAs[PlaceholderData](raw)
	default:
		return nil, fmt.Errorf("unknown node kind %q", k)
	}
}

func decodeAs[T Data](raw json.RawMessage) (Data, error) {
	var d T
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}
