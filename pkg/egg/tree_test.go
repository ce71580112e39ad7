package egg

import (
	"strings"
	"testing"
)

func TestTreeOf(t *testing.T) {
	node, err := Parse(`f(1, "s", x)`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	tree := TreeOf(node)
	if tree.Type != "apply" {
		t.Fatalf("root type = %q, want apply", tree.Type)
	}
	if tree.Operator == nil || tree.Operator.Type != "identifier" || tree.Operator.Name != "f" {
		t.Errorf("operator = %+v, want identifier f", tree.Operator)
	}
	if len(tree.Args) != 3 {
		t.Fatalf("got %d args, want 3", len(tree.Args))
	}
	if tree.Args[0].Type != "value" || tree.Args[0].Value != float64(1) {
		t.Errorf("args[0] = %+v", tree.Args[0])
	}
	if tree.Args[1].Type != "value" || tree.Args[1].Value != "s" {
		t.Errorf("args[1] = %+v", tree.Args[1])
	}
	if tree.Args[2].Type != "identifier" || tree.Args[2].Name != "x" {
		t.Errorf("args[2] = %+v", tree.Args[2])
	}
}

func TestMarshalTree(t *testing.T) {
	node, err := Parse("+(a, 10)")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	out, err := MarshalTree(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"type: apply", "operator:", "name: a", "value: 10"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
}

func TestTreeRoundTrip(t *testing.T) {
	programs := []string{
		"10",
		`"10"`,
		`"true"`,
		"x",
		"f()",
		"f(4)(5)",
		`do(define(pow, fun(base, exp, if(==(exp, 0), 1, *(base, pow(base, -(exp, 1)))))), print(pow(2, 10)))`,
	}

	for _, src := range programs {
		node, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", src, err)
		}

		out, err := MarshalTree(node)
		if err != nil {
			t.Fatalf("MarshalTree(%q): unexpected error: %v", src, err)
		}

		back, err := UnmarshalTree(out)
		if err != nil {
			t.Fatalf("UnmarshalTree of %q: unexpected error: %v\n%s", src, err, out)
		}

		if back.String() != node.String() {
			t.Errorf("round trip changed %s into %s", node, back)
		}
	}
}

func TestUnmarshalTreeEvaluates(t *testing.T) {
	dump := `
type: apply
operator:
  type: identifier
  name: '*'
args:
  - type: value
    value: 6
  - type: value
    value: 7
`
	node, err := UnmarshalTree([]byte(dump))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eng, _ := newTestEngine()
	val, err := eng.Evaluate(node, eng.Global())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !val.Equals(NumberValue(42)) {
		t.Errorf("got %s, want 42", val)
	}
}

func TestUnmarshalTreeErrors(t *testing.T) {
	dumps := []string{
		"type: [",
		"type: mystery",
		"type: identifier",
		"type: apply",
		"type: value\nvalue: [1, 2]",
		"type: apply\noperator:\n  type: identifier\n  name: f\nargs:\n  - type: bogus",
	}

	for _, dump := range dumps {
		if _, err := UnmarshalTree([]byte(dump)); Reason(err) != ErrSyntax {
			t.Errorf("UnmarshalTree(%q) err = %v, want syntax error", dump, err)
		}
	}
}
