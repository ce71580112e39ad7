package egg

import (
	"errors"
)

// Error reasons are enumerated here to be used in the Err struct,
// the error type shared across all Egg APIs. ErrSyntax, ErrReference and
// ErrType are the language's own error kinds; the rest belong to the host.
const (
	ErrUnknown   = 0
	ErrSyntax    = 1
	ErrReference = 2
	ErrType      = 3
	ErrRuntime   = 4
	ErrSystem    = 40
	ErrAssert    = 100
)

var (
	// ErrUnexpectedEnd is wrapped by syntax errors raised because the
	// input ended early, inside a string or an argument list.
	ErrUnexpectedEnd = errors.New("unexpected end of input")

	// ErrBudgetExceeded is wrapped when an evaluation runs past
	// LimitsConfig.MaxSteps.
	ErrBudgetExceeded = errors.New("step budget exceeded")

	// ErrDepthExceeded is wrapped when function calls nest deeper than
	// LimitsConfig.MaxDepth.
	ErrDepthExceeded = errors.New("maximum call depth exceeded")
)

// Err represents every error the Egg parser, evaluator and builtins
// may return.
type Err struct {
	reason  int
	message string
	cause   error
}

func (e Err) Error() string {
	return e.message
}

// Reason reports which kind of failure the error is.
func (e Err) Reason() int {
	return e.reason
}

func (e Err) Unwrap() error {
	return e.cause
}

// Reason returns the reason code of err if it is (or wraps) an Err,
// and ErrUnknown otherwise.
func Reason(err error) int {
	var e Err
	if errors.As(err, &e) {
		return e.reason
	}
	return ErrUnknown
}

func reasonName(reason int) string {
	switch reason {
	case ErrSyntax:
		return "syntax error"
	case ErrReference:
		return "reference error"
	case ErrType:
		return "type error"
	case ErrRuntime:
		return "runtime error"
	case ErrSystem:
		return "system error"
	case ErrAssert:
		return "invariant violation"
	default:
		return "error"
	}
}
