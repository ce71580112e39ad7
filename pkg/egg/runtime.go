package egg

import (
	"fmt"
	"unicode/utf8"
)

// NativeFunctionValue represents a function whose implementation is written
// in Go and bound into a scope by the host.
type NativeFunctionValue struct {
	name  string
	arity int
	exec  func(*Context, []Value) (Value, error)
}

// NewNativeFunction wraps a Go function for binding into an Egg scope.
// arity is the exact argument count, or -1 for any.
func NewNativeFunction(
	name string,
	arity int,
	exec func(*Context, []Value) (Value, error),
) NativeFunctionValue {
	return NativeFunctionValue{name, arity, exec}
}

func (v NativeFunctionValue) String() string {
	return fmt.Sprintf("Native Function (%s)", v.name)
}

func (v NativeFunctionValue) Equals(other Value) bool {
	if ov, ok := other.(NativeFunctionValue); ok {
		return v.name == ov.name
	}

	return false
}

func (v NativeFunctionValue) Arity() int {
	return v.arity
}

func (v NativeFunctionValue) Call(ctx *Context, args []Value) (Value, error) {
	return v.exec(ctx, args)
}

// loadEnvironment binds all builtins (functions and constants) into the
// given global scope.
func loadEnvironment(global *Scope) {
	global.Define("true", BooleanValue(true))
	global.Define("false", BooleanValue(false))

	loadFunc := func(name string, arity int, exec func(*Context, []Value) (Value, error)) {
		global.Define(name, NativeFunctionValue{name, arity, exec})
	}

	// operators
	loadFunc("+", 2, eggAdd)
	loadFunc("-", 2, eggSubtract)
	loadFunc("*", 2, eggMultiply)
	loadFunc("/", 2, eggDivide)
	loadFunc("==", 2, eggEqual)
	loadFunc("<", 2, eggLessThan)
	loadFunc(">", 2, eggGreaterThan)

	// side effects
	loadFunc("print", 1, eggPrint)

	// sequences
	loadFunc("array", -1, eggArray)
	loadFunc("length", 1, eggLength)
	loadFunc("element", 2, eggElement)
}

func operandsErr(op string, in []Value) error {
	return Err{
		ErrType,
		fmt.Sprintf("values %s and %s do not support %s", in[0], in[1], op),
		nil,
	}
}

func eggAdd(ctx *Context, in []Value) (Value, error) {
	left, leftIsNum := in[0].(NumberValue)
	right, rightIsNum := in[1].(NumberValue)
	if leftIsNum && rightIsNum {
		return left + right, nil
	}

	_, leftIsStr := in[0].(StringValue)
	_, rightIsStr := in[1].(StringValue)
	if leftIsStr || rightIsStr {
		return StringValue(in[0].String() + in[1].String()), nil
	}

	return nil, operandsErr("addition", in)
}

// numberOperands unpacks the two number operands of an arithmetic builtin.
func numberOperands(op string, in []Value) (NumberValue, NumberValue, error) {
	left, leftIsNum := in[0].(NumberValue)
	right, rightIsNum := in[1].(NumberValue)
	if !leftIsNum || !rightIsNum {
		return 0, 0, operandsErr(op, in)
	}
	return left, right, nil
}

func eggSubtract(ctx *Context, in []Value) (Value, error) {
	left, right, err := numberOperands("subtraction", in)
	if err != nil {
		return nil, err
	}
	return left - right, nil
}

func eggMultiply(ctx *Context, in []Value) (Value, error) {
	left, right, err := numberOperands("multiplication", in)
	if err != nil {
		return nil, err
	}
	return left * right, nil
}

func eggDivide(ctx *Context, in []Value) (Value, error) {
	left, right, err := numberOperands("division", in)
	if err != nil {
		return nil, err
	}
	// division by zero follows IEEE 754 and yields ±Inf or NaN
	return left / right, nil
}

func eggEqual(ctx *Context, in []Value) (Value, error) {
	return BooleanValue(in[0].Equals(in[1])), nil
}

// compare orders two numbers or two strings. NaN is neither less nor
// greater than anything.
func compare(in []Value) (int, error) {
	switch left := in[0].(type) {
	case NumberValue:
		if right, ok := in[1].(NumberValue); ok {
			switch {
			case left < right:
				return -1, nil
			case left > right:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case StringValue:
		if right, ok := in[1].(StringValue); ok {
			switch {
			case left < right:
				return -1, nil
			case left > right:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	return 0, operandsErr("comparison", in)
}

func eggLessThan(ctx *Context, in []Value) (Value, error) {
	c, err := compare(in)
	if err != nil {
		return nil, err
	}
	return BooleanValue(c < 0), nil
}

func eggGreaterThan(ctx *Context, in []Value) (Value, error) {
	c, err := compare(in)
	if err != nil {
		return nil, err
	}
	return BooleanValue(c > 0), nil
}

func eggPrint(ctx *Context, in []Value) (Value, error) {
	if _, err := fmt.Fprintln(ctx.Engine.stdout(), in[0].String()); err != nil {
		return nil, Err{
			ErrSystem,
			fmt.Sprintf("print() could not write output: %s", err),
			err,
		}
	}

	return in[0], nil
}

func eggArray(ctx *Context, in []Value) (Value, error) {
	elems := make([]Value, len(in))
	copy(elems, in)
	return NewArray(elems...), nil
}

func eggLength(ctx *Context, in []Value) (Value, error) {
	switch seq := in[0].(type) {
	case *ArrayValue:
		return NumberValue(seq.Len()), nil
	case StringValue:
		return NumberValue(utf8.RuneCountInString(string(seq))), nil
	}

	return nil, Err{
		ErrType,
		fmt.Sprintf("length() takes an array or string, but got %s", in[0]),
		nil,
	}
}

func eggElement(ctx *Context, in []Value) (Value, error) {
	n, isNum := in[1].(NumberValue)
	if !isNum || !isIntable(n) {
		return nil, Err{
			ErrType,
			fmt.Sprintf("element() takes an integer index, but got %s", in[1]),
			nil,
		}
	}
	idx := int(n)

	switch seq := in[0].(type) {
	case *ArrayValue:
		if idx < 0 || idx >= seq.Len() {
			return nil, indexErr(idx, seq.Len())
		}
		return seq.Index(idx), nil
	case StringValue:
		runes := []rune(string(seq))
		if idx < 0 || idx >= len(runes) {
			return nil, indexErr(idx, len(runes))
		}
		return StringValue(string(runes[idx])), nil
	}

	return nil, Err{
		ErrType,
		fmt.Sprintf("element() takes an array or string, but got %s", in[0]),
		nil,
	}
}

func indexErr(idx, length int) error {
	return Err{
		ErrRuntime,
		fmt.Sprintf("index %d out of range for sequence of length %d", idx, length),
		nil,
	}
}
