package egg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tree is a plain-data view of a syntax tree, in the shape
// {type, value | name | operator + args}, used to show parse results.
type Tree struct {
	Type     string      `yaml:"type"`
	Value    interface{} `yaml:"value,omitempty"`
	Name     string      `yaml:"name,omitempty"`
	Operator *Tree       `yaml:"operator,omitempty"`
	Args     []*Tree     `yaml:"args,omitempty"`
}

// TreeOf converts a syntax tree to its plain-data view.
func TreeOf(node Node) *Tree {
	switch n := node.(type) {
	case ValueNode:
		switch v := n.val.(type) {
		case NumberValue:
			return &Tree{Type: "value", Value: float64(v)}
		case StringValue:
			return &Tree{Type: "value", Value: string(v)}
		default:
			return &Tree{Type: "value", Value: v.String()}
		}
	case IdentifierNode:
		return &Tree{Type: "identifier", Name: n.name}
	case ApplyNode:
		args := make([]*Tree, len(n.args))
		for i, a := range n.args {
			args[i] = TreeOf(a)
		}
		return &Tree{Type: "apply", Operator: TreeOf(n.operator), Args: args}
	default:
		return &Tree{Type: fmt.Sprintf("unknown %T", node)}
	}
}

// MarshalTree renders node's plain-data view as YAML.
func MarshalTree(node Node) ([]byte, error) {
	return yaml.Marshal(TreeOf(node))
}

// UnmarshalTree reads a YAML tree dump back into a syntax tree.
func UnmarshalTree(data []byte) (Node, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, Err{
			ErrSyntax,
			fmt.Sprintf("could not decode syntax tree: %s", err),
			err,
		}
	}
	return t.Node()
}

// Node rebuilds the syntax tree t describes. Rebuilt nodes carry no
// source positions.
func (t *Tree) Node() (Node, error) {
	if t == nil {
		return nil, Err{ErrSyntax, "missing syntax tree node", nil}
	}

	switch t.Type {
	case "value":
		switch v := t.Value.(type) {
		case string:
			return ValueNode{val: StringValue(v)}, nil
		case int:
			return ValueNode{val: NumberValue(v)}, nil
		case float64:
			return ValueNode{val: NumberValue(v)}, nil
		default:
			return nil, Err{
				ErrSyntax,
				fmt.Sprintf("value node holds unsupported literal %v", t.Value),
				nil,
			}
		}
	case "identifier":
		if t.Name == "" {
			return nil, Err{ErrSyntax, "identifier node has no name", nil}
		}
		return IdentifierNode{name: t.Name}, nil
	case "apply":
		operator, err := t.Operator.Node()
		if err != nil {
			return nil, err
		}

		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i], err = a.Node()
			if err != nil {
				return nil, err
			}
		}
		return ApplyNode{operator: operator, args: args}, nil
	default:
		return nil, Err{
			ErrSyntax,
			fmt.Sprintf("unknown syntax tree node type %q", t.Type),
			nil,
		}
	}
}
