package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UnmarshalJSON parses the configuration wire encoding of a condition tree.
//
// The grammar is the nested-array form used by experimentation datafiles:
//
//	["and", <cond>, <cond>, ...]
//	["or",  <cond>, ...]
//	["not", <cond>]
//	{"name": "plan", "match": "exact", "value": "pro"}
//
// An array without a leading operator string is treated as an implicit "or".
// A JSON string is treated as a condition document encoded inside a string,
// which some datafile revisions emit for audience conditions.
func (t *Tree) UnmarshalJSON(data []byte) error {
	parsed, err := parseNode(data)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func parseNode(data []byte) (*Tree, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Join(ErrInvalidCondition, err)
	}
	return buildNode(raw)
}

func buildNode(raw any) (*Tree, error) {
	switch v := raw.(type) {
	case string:
		// Double-encoded subdocument.
		return parseNode([]byte(v))

	case []any:
		if len(v) == 0 {
			return nil, errors.Join(ErrInvalidCondition, errors.New("empty condition list"))
		}
		op := OpOr
		children := v
		if s, ok := v[0].(string); ok {
			switch Operator(s) {
			case OpAnd, OpOr, OpNot:
				op = Operator(s)
				children = v[1:]
			default:
				return nil, errors.Join(ErrUnknownOperator, fmt.Errorf("operator %q", s))
			}
		}
		if op == OpNot && len(children) != 1 {
			return nil, errors.Join(ErrInvalidCondition,
				fmt.Errorf("not takes exactly one operand, got %d", len(children)))
		}
		node := &Tree{Op: op, Children: make([]*Tree, 0, len(children))}
		for _, child := range children {
			built, err := buildNode(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, built)
		}
		return node, nil

	case map[string]any:
		return buildLeaf(v)

	default:
		return nil, errors.Join(ErrInvalidCondition, fmt.Errorf("unexpected node of type %T", raw))
	}
}

func buildLeaf(obj map[string]any) (*Tree, error) {
	name, _ := obj["name"].(string)
	if name == "" {
		return nil, errors.Join(ErrInvalidCondition, errors.New("leaf condition missing attribute name"))
	}

	kind := MatchExact
	if m, ok := obj["match"].(string); ok && m != "" {
		kind = MatchKind(m)
	}
	if _, ok := validKinds[kind]; !ok {
		return nil, errors.Join(ErrUnknownMatchKind, fmt.Errorf("match %q", kind))
	}

	value := obj["value"]
	// json.Number keeps integer-valued expectations exact in the document;
	// the evaluator compares numerically, so normalize to float64 here.
	if num, ok := value.(json.Number); ok {
		f, err := num.Float64()
		if err != nil {
			return nil, errors.Join(ErrInvalidCondition, err)
		}
		value = f
	}

	return &Tree{Leaf: &Match{Name: name, Kind: kind, Value: value}}, nil
}
