package egg

import (
	"fmt"
)

// specialForm receives the unevaluated argument nodes of an application
// and decides for itself what to evaluate, and in which scope.
type specialForm func(ctx *Context, args []Node, scope *Scope) (Value, error)

// defaultForms builds the table of special forms. Each Engine keeps its
// own copy and never modifies it.
func defaultForms() map[string]specialForm {
	return map[string]specialForm{
		"if":     evalIf,
		"while":  evalWhile,
		"do":     evalDo,
		"define": evalDefine,
		"set":    evalSet,
		"fun":    evalFun,
	}
}

func evalIf(ctx *Context, args []Node, scope *Scope) (Value, error) {
	if len(args) != 3 {
		return nil, Err{
			ErrSyntax,
			fmt.Sprintf("wrong number of args to if: expected 3, got %d", len(args)),
			nil,
		}
	}

	cond, err := args[0].Eval(ctx, scope)
	if err != nil {
		return nil, err
	}

	if !isFalse(cond) {
		return args[1].Eval(ctx, scope)
	}
	return args[2].Eval(ctx, scope)
}

func evalWhile(ctx *Context, args []Node, scope *Scope) (Value, error) {
	if len(args) != 2 {
		return nil, Err{
			ErrSyntax,
			fmt.Sprintf("wrong number of args to while: expected 2, got %d", len(args)),
			nil,
		}
	}

	for {
		if err := ctx.step(); err != nil {
			return nil, err
		}

		cond, err := args[0].Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		if isFalse(cond) {
			break
		}

		if _, err := args[1].Eval(ctx, scope); err != nil {
			return nil, err
		}
	}

	// while has no useful result, but every form must produce a value
	return BooleanValue(false), nil
}

func evalDo(ctx *Context, args []Node, scope *Scope) (Value, error) {
	var value Value = BooleanValue(false)
	for _, arg := range args {
		var err error
		value, err = arg.Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
	}

	return value, nil
}

// bindingTarget checks the (name, value) argument shape shared by
// define and set, returning the name.
func bindingTarget(form string, args []Node) (string, error) {
	if len(args) != 2 {
		return "", Err{
			ErrSyntax,
			fmt.Sprintf("incorrect use of %s: expected 2 args, got %d", form, len(args)),
			nil,
		}
	}

	ident, isIdent := args[0].(IdentifierNode)
	if !isIdent {
		return "", Err{
			ErrSyntax,
			fmt.Sprintf("incorrect use of %s: %s is not a name [%s]",
				form, args[0], poss(args[0])),
			nil,
		}
	}

	return ident.name, nil
}

func evalDefine(ctx *Context, args []Node, scope *Scope) (Value, error) {
	name, err := bindingTarget("define", args)
	if err != nil {
		return nil, err
	}

	value, err := args[1].Eval(ctx, scope)
	if err != nil {
		return nil, err
	}

	scope.Define(name, value)
	return value, nil
}

func evalSet(ctx *Context, args []Node, scope *Scope) (Value, error) {
	name, err := bindingTarget("set", args)
	if err != nil {
		return nil, err
	}

	value, err := args[1].Eval(ctx, scope)
	if err != nil {
		return nil, err
	}

	if !scope.Update(name, value) {
		return nil, Err{
			ErrReference,
			fmt.Sprintf("could not find %s in any scope [%s]", name, poss(args[0])),
			nil,
		}
	}
	return value, nil
}

func evalFun(ctx *Context, args []Node, scope *Scope) (Value, error) {
	if len(args) == 0 {
		return nil, Err{
			ErrSyntax,
			"functions need a body",
			nil,
		}
	}

	params := make([]string, len(args)-1)
	for i, arg := range args[:len(args)-1] {
		ident, isIdent := arg.(IdentifierNode)
		if !isIdent {
			return nil, Err{
				ErrSyntax,
				fmt.Sprintf("parameter names must be words, got %s [%s]", arg, poss(arg)),
				nil,
			}
		}
		params[i] = ident.name
	}

	return &FunctionValue{
		defn: ApplyNode{
			operator: IdentifierNode{"fun", args[0].Position()},
			args:     args,
		},
		params: params,
		body:   args[len(args)-1],
		scope:  scope,
	}, nil
}
