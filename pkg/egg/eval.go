package egg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const maxPrintLen = 120

// defaultMaxDepth bounds nested function calls when LimitsConfig.MaxDepth
// is left at zero, well before the Go stack would overflow.
const defaultMaxDepth = 100000

// Value represents any value in the Egg programming language.
// Each value corresponds to some primitive or host value created
// during the execution of an Egg program.
type Value interface {
	String() string
	// Equals reports whether the given value is equal to the receiving
	// value, as tested by the == builtin.
	Equals(Value) bool
}

// Callable is implemented by every value that may appear as the operator
// of an application: functions created with fun and native host functions.
type Callable interface {
	Value
	// Arity is the exact number of arguments the callable accepts,
	// or -1 if it takes any number.
	Arity() int
	Call(*Context, []Value) (Value, error)
}

func isIntable(n NumberValue) bool {
	return !math.IsInf(float64(n), 0) && n == NumberValue(int64(n))
}

// Utility func to get a consistent string representation of numbers
func nToS(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if i := int64(f); f == float64(i) {
		return strconv.FormatInt(i, 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NumberValue represents the number type in the Egg language.
type NumberValue float64

func (v NumberValue) String() string {
	return nToS(float64(v))
}

func (v NumberValue) Equals(other Value) bool {
	if ov, ok := other.(NumberValue); ok {
		return v == ov
	}

	return false
}

// StringValue is an immutable Egg string.
type StringValue string

func (v StringValue) String() string {
	return string(v)
}

func (v StringValue) Equals(other Value) bool {
	if ov, ok := other.(StringValue); ok {
		return v == ov
	}

	return false
}

// BooleanValue is either `true` or `false`
type BooleanValue bool

func (v BooleanValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BooleanValue) Equals(other Value) bool {
	if ov, ok := other.(BooleanValue); ok {
		return v == ov
	}

	return false
}

// isFalse reports whether v is exactly the boolean false. It is the only
// value conditionals treat as false.
func isFalse(v Value) bool {
	b, isBool := v.(BooleanValue)
	return isBool && !bool(b)
}

// ArrayValue is the ordered sequence built by the array builtin.
// Arrays compare by identity.
type ArrayValue struct {
	elems []Value
}

// NewArray returns an array holding the given values.
func NewArray(elems ...Value) *ArrayValue {
	return &ArrayValue{elems: elems}
}

func (v *ArrayValue) Len() int {
	return len(v.elems)
}

func (v *ArrayValue) Index(i int) Value {
	return v.elems[i]
}

func (v *ArrayValue) String() string {
	entries := make([]string, len(v.elems))
	for i, e := range v.elems {
		if s, isString := e.(StringValue); isString {
			entries[i] = "\"" + string(s) + "\""
		} else {
			entries[i] = e.String()
		}
	}
	return "[" + strings.Join(entries, ", ") + "]"
}

func (v *ArrayValue) Equals(other Value) bool {
	ov, ok := other.(*ArrayValue)
	return ok && v == ov
}

// FunctionValue is a function defined in an Egg program by fun. It closes
// over the scope it was defined in.
type FunctionValue struct {
	defn   ApplyNode
	params []string
	body   Node
	scope  *Scope
}

func (v *FunctionValue) String() string {
	// ellipsize function body at a reasonable length,
	// so as not to be too verbose in repl environments
	fstr := v.defn.String()
	if len(fstr) > maxPrintLen {
		fstr = fstr[:maxPrintLen] + ".."
	}
	return fstr
}

func (v *FunctionValue) Equals(other Value) bool {
	ov, ok := other.(*FunctionValue)
	return ok && v == ov
}

func (v *FunctionValue) Arity() int {
	return len(v.params)
}

// Call binds args to the function's parameters in a fresh child of the
// defining scope and evaluates the body there.
func (v *FunctionValue) Call(ctx *Context, args []Value) (Value, error) {
	if len(args) != len(v.params) {
		return nil, Err{
			ErrType,
			fmt.Sprintf("wrong number of arguments: function takes %d, got %d [%s]",
				len(v.params), len(args), poss(v.defn)),
			nil,
		}
	}

	if err := ctx.enter(); err != nil {
		return nil, err
	}
	defer ctx.leave()

	callScope := NewScope(v.scope)
	for i, name := range v.params {
		callScope.Define(name, args[i])
	}

	return v.body.Eval(ctx, callScope)
}

func (n ValueNode) Eval(ctx *Context, scope *Scope) (Value, error) {
	return n.val, nil
}

func (n IdentifierNode) Eval(ctx *Context, scope *Scope) (Value, error) {
	val, prs := scope.Get(n.name)
	if !prs {
		return nil, Err{
			ErrReference,
			fmt.Sprintf("undefined binding: %s [%s]", n.name, poss(n)),
			nil,
		}
	}
	return val, nil
}

func (n ApplyNode) Eval(ctx *Context, scope *Scope) (Value, error) {
	if err := ctx.step(); err != nil {
		return nil, err
	}

	if ident, isIdent := n.operator.(IdentifierNode); isIdent {
		if form, isForm := ctx.Engine.forms[ident.name]; isForm {
			return form(ctx, n.args, scope)
		}
	}

	fn, err := n.operator.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}

	argResults := make([]Value, len(n.args))
	for i, arg := range n.args {
		argResults[i], err = arg.Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
	}

	return ctx.call(fn, argResults, n)
}

// call applies fn to args, checking that fn is callable and that the
// argument count matches its declared arity.
func (ctx *Context) call(fn Value, args []Value, site Node) (Value, error) {
	callee, isCallable := fn.(Callable)
	if !isCallable {
		return nil, Err{
			ErrType,
			fmt.Sprintf("applying a non-function value %s [%s]", fn, poss(site)),
			nil,
		}
	}

	if arity := callee.Arity(); arity >= 0 && arity != len(args) {
		return nil, Err{
			ErrType,
			fmt.Sprintf("wrong number of arguments: %s takes %d, got %d [%s]",
				callee, arity, len(args), poss(site)),
			nil,
		}
	}

	return callee.Call(ctx, args)
}

// ValueTable is used anytime a map of names to Egg Values is needed,
// and notably backs every Scope.
type ValueTable map[string]Value

// Scope holds the bindings local to a program run or function call, and
// refers to the scope it is nested in. The global scope has no parent.
type Scope struct {
	parent *Scope
	vt     ValueTable
}

// NewScope returns an empty scope nested in parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		vt:     ValueTable{},
	}
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

// Get a value from the scope chain
func (s *Scope) Get(name string) (Value, bool) {
	for s != nil {
		val, ok := s.vt[name]
		if ok {
			return val, true
		}

		s = s.parent
	}

	return nil, false
}

// Define binds name in this scope, shadowing any outer binding.
func (s *Scope) Define(name string, val Value) {
	s.vt[name] = val
}

// Update rebinds name in the nearest scope that owns it. It reports
// false, changing nothing, if no scope in the chain does.
func (s *Scope) Update(name string, val Value) bool {
	for s != nil {
		if _, ok := s.vt[name]; ok {
			s.vt[name] = val
			return true
		}

		s = s.parent
	}

	return false
}

func (s *Scope) String() string {
	if s == nil {
		return "<nil>"
	}

	names := make([]string, 0, len(s.vt))
	for k := range s.vt {
		names = append(names, k)
	}
	sort.Strings(names)

	entries := make([]string, 0, len(names))
	for _, k := range names {
		vstr := s.vt[k].String()
		if len(vstr) > maxPrintLen {
			vstr = vstr[:maxPrintLen] + ".."
		}
		entries = append(entries, fmt.Sprintf("%s -> %s", k, vstr))
	}

	return fmt.Sprintf("{\n\t%s\n} -prnt-> %s", strings.Join(entries, "\n\t"), s.parent)
}

// Engine is a single global context of Egg program execution.
//
// An Engine owns the global scope shared by every program it runs, along
// with the table of special forms. A single evaluation may run within an
// Engine at any given moment, which is ensured by an internal lock.
//
// The zero Engine is ready to use; its global scope is built on first use.
type Engine struct {
	// Stdout receives everything Egg programs print. Defaults to os.Stdout.
	Stdout io.Writer

	// If FatalError is true, an error logged by a Context halts the process
	FatalError bool
	Debug      DebugConfig
	Limits     LimitsConfig

	global   *Scope
	forms    map[string]specialForm
	initOnce sync.Once

	// Only a single evaluation may touch the scopes at any moment.
	evalLock sync.Mutex
}

// DebugConfig defines any debugging flags referenced at runtime
type DebugConfig struct {
	Parse bool
	Dump  bool
}

// LimitsConfig bounds how much work a single evaluation may do.
type LimitsConfig struct {
	// MaxSteps caps applications plus while iterations. Zero means no cap.
	MaxSteps int
	// MaxDepth caps nested function calls. Zero means defaultMaxDepth.
	MaxDepth int
}

func (eng *Engine) init() {
	eng.initOnce.Do(func() {
		eng.forms = defaultForms()
		eng.global = NewScope(nil)
		loadEnvironment(eng.global)
	})
}

// Global returns the engine's global scope, the root of every scope chain
// evaluated by this engine.
func (eng *Engine) Global() *Scope {
	eng.init()
	return eng.global
}

func (eng *Engine) stdout() io.Writer {
	if eng.Stdout == nil {
		return os.Stdout
	}
	return eng.Stdout
}

// CreateContext creates and initializes a new Context tied to a given Engine.
// Its Frame is a fresh child of the global scope.
func (eng *Engine) CreateContext() *Context {
	eng.init()

	ctx := &Context{
		ID:     uuid.NewString(),
		Engine: eng,
		Frame:  NewScope(eng.global),
	}
	ctx.resetWd()

	evalLog.Debugf("created context %s", ctx.ID)
	return ctx
}

// Evaluate evaluates node in the given scope, which should descend from
// the engine's global scope.
func (eng *Engine) Evaluate(node Node, scope *Scope) (Value, error) {
	return eng.CreateContext().evaluate(context.Background(), node, scope)
}

// Run parses source once and evaluates it in a fresh child of the global
// scope, so top-level definitions do not outlive the run.
func (eng *Engine) Run(source string) (Value, error) {
	return eng.RunContext(context.Background(), source)
}

// RunContext is Run, abandoning evaluation with an ErrRuntime error once
// cx is done.
func (eng *Engine) RunContext(cx context.Context, source string) (Value, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}

	ctx := eng.CreateContext()
	return ctx.evaluate(cx, node, ctx.Frame)
}

// Context represents a single, isolated execution context with its own
// top-level scope, cwd (working directory) and evaluation counters.
type Context struct {
	// ID identifies the context in diagnostic logs
	ID string
	// Cwd is an always-absolute path to current working dir
	Cwd string
	// currently executing file's path, if any
	File   string
	Engine *Engine
	// Frame is the Context's top-level scope, a child of the global scope
	Frame *Scope

	cx    context.Context
	steps int
	depth int
}

// LogErr logs an Err (interpreter error) according to the configurations
// specified in the Context's Engine.
func (ctx *Context) LogErr(e Err) {
	msg := e.message
	if ctx.File != "" {
		msg = e.message + " in " + ctx.File
	}

	if ctx.Engine.FatalError {
		LogErr(e.reason, msg)
	} else {
		LogSafeErr(e.reason, msg)
	}
}

// Dump prints the current state of the Context's top-level scope
func (ctx *Context) Dump() {
	LogInteractive("frame dump", ctx.Frame.String())
}

func (ctx *Context) resetWd() {
	var err error
	ctx.Cwd, err = os.Getwd()
	if err != nil {
		log.Warningf("could not identify current working directory: %s", err)
	}
}

// LoadFunc binds a Go-implemented function in the Context's top-level
// scope. arity is the exact argument count, or -1 for any.
func (ctx *Context) LoadFunc(
	name string,
	arity int,
	exec func(*Context, []Value) (Value, error),
) {
	ctx.Frame.Define(name, NativeFunctionValue{name, arity, exec})
}

// evaluate runs node in scope under the engine lock, with fresh counters.
func (ctx *Context) evaluate(cx context.Context, node Node, scope *Scope) (Value, error) {
	ctx.Engine.evalLock.Lock()
	defer ctx.Engine.evalLock.Unlock()

	ctx.cx = cx
	ctx.steps = 0
	ctx.depth = 0
	defer func() {
		ctx.cx = nil
	}()

	return node.Eval(ctx, scope)
}

// step accounts for one unit of evaluation work and fails once the step
// budget is spent or the evaluation has been cancelled.
func (ctx *Context) step() error {
	ctx.steps++
	if limit := ctx.Engine.Limits.MaxSteps; limit > 0 && ctx.steps > limit {
		evalLog.Infof("context %s ran out of its %d step budget", ctx.ID, limit)
		return Err{
			ErrRuntime,
			fmt.Sprintf("evaluation exceeded its budget of %d steps", limit),
			ErrBudgetExceeded,
		}
	}

	if ctx.cx != nil {
		if err := ctx.cx.Err(); err != nil {
			return Err{
				ErrRuntime,
				fmt.Sprintf("evaluation cancelled: %s", err),
				err,
			}
		}
	}

	return nil
}

func (ctx *Context) enter() error {
	limit := ctx.Engine.Limits.MaxDepth
	if limit <= 0 {
		limit = defaultMaxDepth
	}

	if ctx.depth >= limit {
		return Err{
			ErrRuntime,
			fmt.Sprintf("function calls nested deeper than %d", limit),
			ErrDepthExceeded,
		}
	}
	ctx.depth++
	return nil
}

func (ctx *Context) leave() {
	ctx.depth--
}

// Eval evaluates a parsed program in the Context's top-level scope, so
// definitions persist across calls on the same Context.
func (ctx *Context) Eval(node Node) (Value, error) {
	return ctx.evaluate(context.Background(), node, ctx.Frame)
}

// Exec runs an Egg program read from an io.Reader in the Context's
// top-level scope, logging any error it fails with.
// This is the main way to invoke Egg programs from Go hosts.
func (ctx *Context) Exec(input io.Reader) (Value, error) {
	return ctx.ExecContext(context.Background(), input)
}

// ExecContext is Exec, abandoning evaluation once cx is done.
func (ctx *Context) ExecContext(cx context.Context, input io.Reader) (Value, error) {
	source, err := io.ReadAll(input)
	if err != nil {
		e := Err{
			ErrSystem,
			fmt.Sprintf("could not read program: %s", err),
			err,
		}
		ctx.LogErr(e)
		return nil, e
	}

	node, err := Parse(string(source))
	if err == nil {
		if ctx.Engine.Debug.Parse {
			LogInteractive("parse ->", node.String())
		}

		var val Value
		val, err = ctx.evaluate(cx, node, ctx.Frame)
		if ctx.Engine.Debug.Dump {
			ctx.Dump()
		}
		if err == nil {
			return val, nil
		}
	}

	var e Err
	if errors.As(err, &e) {
		ctx.LogErr(e)
	} else {
		LogSafeErr(ErrUnknown, err.Error())
	}
	return nil, err
}

// ExecPath is a convenience function to Exec() a program file in a given Context.
func (ctx *Context) ExecPath(filePath string) (Value, error) {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(ctx.Cwd, filePath)
	}

	ctx.Cwd = filepath.Dir(filePath)
	ctx.File = filePath

	file, err := os.Open(filePath)
	if err != nil {
		e := Err{
			ErrSystem,
			fmt.Sprintf("could not open %s for execution:\n\t-> %s", filePath, err),
			err,
		}
		ctx.LogErr(e)
		return nil, e
	}
	defer file.Close()

	return ctx.Exec(file)
}
