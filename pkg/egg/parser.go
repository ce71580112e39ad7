package egg

import (
	"fmt"
	"strings"
)

// Node represents an abstract syntax tree (AST) node in an Egg program.
//
// String renders the node back to Egg source, so that parsing the result
// yields an equivalent tree.
type Node interface {
	String() string
	Position() position
	Eval(*Context, *Scope) (Value, error)
}

// a string representation of the Position of a given node,
//	appropriate for an error message
func poss(n Node) string {
	return n.Position().String()
}

// ValueNode is a string or number literal.
type ValueNode struct {
	val Value
	position
}

func (n ValueNode) String() string {
	if s, isString := n.val.(StringValue); isString {
		return "\"" + string(s) + "\""
	}
	return n.val.String()
}

func (n ValueNode) Position() position {
	return n.position
}

// Value returns the literal the node holds.
func (n ValueNode) Value() Value {
	return n.val
}

type IdentifierNode struct {
	name string
	position
}

func (n IdentifierNode) String() string {
	return n.name
}

func (n IdentifierNode) Position() position {
	return n.position
}

func (n IdentifierNode) Name() string {
	return n.name
}

// ApplyNode is the application of operator to args. Depending on the
// operator it is either a function call or a special form.
type ApplyNode struct {
	operator Node
	args     []Node
}

func (n ApplyNode) String() string {
	args := make([]string, len(n.args))
	for i, a := range n.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.operator, strings.Join(args, ", "))
}

func (n ApplyNode) Position() position {
	return n.operator.Position()
}

func (n ApplyNode) Operator() Node {
	return n.operator
}

func (n ApplyNode) Args() []Node {
	return n.args
}

type parser struct {
	*scanner
}

// Parse turns Egg source into a syntax tree. The source must hold
// exactly one expression, optionally surrounded by whitespace.
func Parse(source string) (Node, error) {
	p := parser{newScanner(source)}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.done() {
		return nil, Err{
			ErrSyntax,
			fmt.Sprintf("unexpected text after program at %s: %q", p.position, p.rest()),
			nil,
		}
	}

	parseLog.Debugf("parse -> %s", expr)
	return expr, nil
}

func (p *parser) parseExpression() (Node, error) {
	p.skipSpace()

	tok, err := p.scanAtom()
	if err != nil {
		return nil, err
	}

	var atom Node
	switch tok.kind {
	case StringLiteral:
		atom = ValueNode{StringValue(tok.str), tok.position}
	case NumberLiteral:
		atom = ValueNode{NumberValue(tok.num), tok.position}
	case Identifier:
		atom = IdentifierNode{tok.str, tok.position}
	default:
		return nil, Err{
			ErrAssert,
			fmt.Sprintf("unknown token %s", tok),
			nil,
		}
	}

	return p.parseApply(atom)
}

// parseApply wraps expr in as many applications as follow it, so that
// f(a)(b)(c) nests three ApplyNodes with f(a) innermost.
func (p *parser) parseApply(expr Node) (Node, error) {
	for {
		p.skipSpace()
		if r, ok := p.peek(); !ok || r != '(' {
			return expr, nil
		}

		open := p.position
		p.next() // (
		p.skipSpace()

		args := make([]Node, 0)
		for {
			r, ok := p.peek()
			if !ok {
				return nil, Err{
					ErrSyntax,
					fmt.Sprintf("expected ')' to close argument list opened at %s", open),
					ErrUnexpectedEnd,
				}
			}
			if r == ')' {
				p.next()
				break
			}

			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			p.skipSpace()
			r, ok = p.peek()
			switch {
			case !ok:
				return nil, Err{
					ErrSyntax,
					fmt.Sprintf("expected ',' or ')' in argument list opened at %s", open),
					ErrUnexpectedEnd,
				}
			case r == ',':
				p.next()
				p.skipSpace()
			case r != ')':
				return nil, Err{
					ErrSyntax,
					fmt.Sprintf("expected ',' or ')' at %s, found %q", p.position, p.rest()),
					nil,
				}
			}
		}

		expr = ApplyNode{
			operator: expr,
			args:     args,
		}
	}
}
