package egg

import (
	"errors"
	"testing"
)

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"10", NumberValue(10)},
		{"0", NumberValue(0)},
		{"  42  ", NumberValue(42)},
		{`"hi"`, StringValue("hi")},
		{`""`, StringValue("")},
		{`"with spaces, (parens) and # signs"`, StringValue("with spaces, (parens) and # signs")},
		{"\"two\nlines\"", StringValue("two\nlines")},
	}

	for _, tc := range tests {
		node, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.input, err)
			continue
		}

		v, ok := node.(ValueNode)
		if !ok {
			t.Errorf("Parse(%q): got %T, want ValueNode", tc.input, node)
			continue
		}
		if !v.Value().Equals(tc.want) {
			t.Errorf("Parse(%q): got %s, want %s", tc.input, v.Value(), tc.want)
		}
	}
}

func TestParseIdentifiers(t *testing.T) {
	tests := []string{"x", "define", "+", "==", "-1", "a1", "héllo", "x.y", "<"}

	for _, input := range tests {
		node, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", input, err)
			continue
		}

		ident, ok := node.(IdentifierNode)
		if !ok {
			t.Errorf("Parse(%q): got %T, want IdentifierNode", input, node)
			continue
		}
		if ident.Name() != input {
			t.Errorf("Parse(%q): got name %q", input, ident.Name())
		}
	}
}

func TestParseApply(t *testing.T) {
	node, err := Parse("+(a, 10)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	apply, ok := node.(ApplyNode)
	if !ok {
		t.Fatalf("got %T, want ApplyNode", node)
	}
	if op, ok := apply.Operator().(IdentifierNode); !ok || op.Name() != "+" {
		t.Errorf("operator = %s, want +", apply.Operator())
	}
	if len(apply.Args()) != 2 {
		t.Fatalf("got %d args, want 2", len(apply.Args()))
	}
	if arg, ok := apply.Args()[0].(IdentifierNode); !ok || arg.Name() != "a" {
		t.Errorf("args[0] = %s, want a", apply.Args()[0])
	}
	if arg, ok := apply.Args()[1].(ValueNode); !ok || !arg.Value().Equals(NumberValue(10)) {
		t.Errorf("args[1] = %s, want 10", apply.Args()[1])
	}
}

func TestParseEmptyArgs(t *testing.T) {
	for _, input := range []string{"f()", "f( )", "f(\n)"} {
		node, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", input, err)
			continue
		}
		apply, ok := node.(ApplyNode)
		if !ok || len(apply.Args()) != 0 {
			t.Errorf("Parse(%q) = %s, want an application with no args", input, node)
		}
	}
}

func TestParseChainedApply(t *testing.T) {
	node, err := Parse("f(a)(b)(c)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// outermost application takes c, its operator takes b, and so on
	wantArgs := []string{"c", "b", "a"}
	for depth, want := range wantArgs {
		apply, ok := node.(ApplyNode)
		if !ok {
			t.Fatalf("depth %d: got %T, want ApplyNode", depth, node)
		}
		if len(apply.Args()) != 1 || apply.Args()[0].String() != want {
			t.Fatalf("depth %d: args = %v, want [%s]", depth, apply.Args(), want)
		}
		node = apply.Operator()
	}

	if ident, ok := node.(IdentifierNode); !ok || ident.Name() != "f" {
		t.Errorf("innermost operator = %s, want f", node)
	}
}

func TestParseWhitespaceTolerance(t *testing.T) {
	a, err := Parse("do(define(x,1),print(x))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse("  do (\n\tdefine( x , 1 ) ,\n\tprint (x)\n)  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.String() != b.String() {
		t.Errorf("trees differ: %s vs %s", a, b)
	}
}

func TestParseTrailingComma(t *testing.T) {
	node, err := Parse("f(a, b,)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(node.(ApplyNode).Args()); got != 2 {
		t.Errorf("got %d args, want 2", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input      string
		incomplete bool
		desc       string
	}{
		{"", true, "empty input"},
		{"   ", true, "only whitespace"},
		{"f(", true, "unclosed argument list"},
		{"f(a", true, "missing close paren"},
		{"f(a,", true, "dangling comma"},
		{`"abc`, true, "unterminated string"},
		{"f(a b)", false, "missing separator"},
		{"f(,)", false, "leading comma"},
		{"f(a,,b)", false, "doubled comma"},
		{"x y", false, "trailing identifier"},
		{"f(a))", false, "extra close paren"},
		{")", false, "lone close paren"},
		{"1abc", false, "identifier starting with a digit"},
		{"10x", false, "number run into letters"},
		{"1_", false, "number run into underscore"},
		{"1.5", false, "decimal point"},
		{"# comment", false, "hash is not a comment"},
		{"x # comment", false, "hash after expression"},
		{"f(#)", false, "hash inside args"},
	}

	for _, tc := range tests {
		_, err := Parse(tc.input)
		if err == nil {
			t.Errorf("%s: Parse(%q) succeeded, want syntax error", tc.desc, tc.input)
			continue
		}
		if Reason(err) != ErrSyntax {
			t.Errorf("%s: Parse(%q) reason = %d, want ErrSyntax", tc.desc, tc.input, Reason(err))
		}
		if got := errors.Is(err, ErrUnexpectedEnd); got != tc.incomplete {
			t.Errorf("%s: Parse(%q) incomplete = %v, want %v (%v)", tc.desc, tc.input, got, tc.incomplete, err)
		}
	}
}

func TestParseNumberBoundary(t *testing.T) {
	// a number ends at a non-word character, which then has to make
	// sense on its own
	node, err := Parse("+(1,2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.String() != "+(1, 2)" {
		t.Errorf("got %s", node)
	}

	if _, err := Parse("1+"); Reason(err) != ErrSyntax {
		t.Errorf("Parse(\"1+\") err = %v, want trailing text syntax error", err)
	}
}

func TestParsePositions(t *testing.T) {
	node, err := Parse("do(\n  define(x, 1),\n  y)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := node.(ApplyNode).Args()
	if got := args[0].Position().String(); got != "2:3" {
		t.Errorf("define position = %s, want 2:3", got)
	}
	if got := args[1].Position().String(); got != "3:3" {
		t.Errorf("y position = %s, want 3:3", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	programs := []string{
		"10",
		`"hello world"`,
		"x",
		"f()",
		"f(4)(5)",
		`do(define(sum, fun(array, do(define(i, 0), define(sum, 0), while(<(i, length(array)), do(define(sum, +(sum, element(array, i))), define(i, +(i, 1)))), sum))), print(sum(array(1, 2, 3))))`,
		"if(==(exp, 0), 1, *(base, pow(base, -(exp, 1))))",
		`print("a, (b)")`,
	}

	for _, src := range programs {
		first, err := Parse(src)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", src, err)
			continue
		}

		second, err := Parse(first.String())
		if err != nil {
			t.Errorf("reparse of %q: unexpected error: %v", first.String(), err)
			continue
		}

		if first.String() != second.String() {
			t.Errorf("round trip changed tree: %s -> %s", first, second)
		}
	}
}
