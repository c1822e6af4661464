package formula

import (
	"errors"
	"fmt"
)

// Kind classifies a formula failure.
type Kind string

// All failure kinds.
const (
	KindSyntax  Kind = "syntax"  // script does not parse or references unknown names
	KindRuntime Kind = "runtime" // evaluation raised an error
	KindResult  Kind = "result"  // script returned a non-numeric or non-finite value
	KindLimit   Kind = "limit"   // an execution bound was exceeded
)

// Sentinel errors wrapped by *Error.
var (
	ErrTimeout        = errors.New("evaluation exceeded its time limit")
	ErrStepLimit      = errors.New("evaluation exceeded its step budget")
	ErrTooDeep        = errors.New("expression is nested too deeply")
	ErrScriptTooLarge = errors.New("script is too large")
	ErrNotFinite      = errors.New("result is not a finite number")
	ErrInvalidRange   = errors.New("interpolation: max must be greater than min")
	ErrEmptyScript    = errors.New("script is empty")
)

// Error is returned for every compile or evaluation failure.
// Line and Column are 1-based and zero when unknown.
type Error struct {
	Kind   Kind
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// position is a 1-based source location.
type position struct {
	line, col int
}

func syntaxErrorf(pos position, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Line: pos.line, Column: pos.col, Msg: fmt.Sprintf(format, args...)}
}

func runtimeErrorf(pos position, format string, args ...any) *Error {
	return &Error{Kind: KindRuntime, Line: pos.line, Column: pos.col, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, pos position, err error) *Error {
	return &Error{Kind: kind, Line: pos.line, Column: pos.col, Msg: err.Error(), Err: err}
}

// KindOf returns the kind of err when it is a *Error, or "" otherwise.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
