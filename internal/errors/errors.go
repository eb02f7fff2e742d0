// Package errors implements the error taxonomy from SPEC_FULL.md §7:
// IOFailure, ParseFailure, ConfigFailure, CompileFailure, TestFailure,
// TaskFailure, and DependencyResolutionFailure. Every taxonomy error wraps
// its cause with github.com/go-errors/errors so a stack trace is available
// (logged only at trace level, never printed to the user), and independent
// failures collected across a run are aggregated with
// github.com/hashicorp/go-multierror.
package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/hashicorp/go-multierror"
)

// Kind identifies which branch of the taxonomy an error belongs to.
type Kind string

const (
	IOFailure                   Kind = "io"
	ParseFailure                Kind = "parse"
	ConfigFailure               Kind = "config"
	CompileFailure              Kind = "compile"
	TestFailure                 Kind = "test"
	TaskFailure                 Kind = "task"
	DependencyResolutionFailure Kind = "dependency-resolution"
)

// Error is a tagged, human-readable failure with an optional stack trace
// captured at the point it was created (via go-errors/errors). Stack()
// is never printed by the CLI except at trace log level.
type Error struct {
	cause   error
	message string
	stack   *goerrors.Error
	Kind    Kind
}

func newTagged(kind Kind, message string, cause error) *Error {
	var stack *goerrors.Error
	if cause != nil {
		stack = goerrors.Wrap(cause, 1)
	} else {
		stack = goerrors.Errorf("%s", message)
	}

	return &Error{Kind: kind, message: message, cause: cause, stack: stack}
}

func (e *Error) Error() string {
	if e.message != "" {
		return e.message
	}

	if e.cause != nil {
		return e.cause.Error()
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// StackTrace renders the captured stack trace, for trace-level logging only.
func (e *Error) StackTrace() string {
	if e.stack == nil {
		return ""
	}

	return string(e.stack.Stack())
}

func newf(kind Kind, format string, args ...any) *Error {
	return newTagged(kind, sprintf(format, args...), nil)
}

func wrap(kind Kind, message string, cause error) *Error {
	return newTagged(kind, message, cause)
}

func NewIOFailure(message string, cause error) *Error { return wrap(IOFailure, message, cause) }
func NewParseFailure(message string, cause error) *Error {
	return wrap(ParseFailure, message, cause)
}
func NewConfigFailure(message string, cause error) *Error {
	return wrap(ConfigFailure, message, cause)
}
func NewCompileFailure(message string, cause error) *Error {
	return wrap(CompileFailure, message, cause)
}
func NewTestFailure(message string, cause error) *Error { return wrap(TestFailure, message, cause) }
func NewTaskFailure(message string, cause error) *Error { return wrap(TaskFailure, message, cause) }
func NewDependencyResolutionFailure(message string, cause error) *Error {
	return wrap(DependencyResolutionFailure, message, cause)
}

// New and Errorf default to TaskFailure, for call sites that don't need a
// more specific taxonomy tag.
func New(message string) *Error                       { return newTagged(TaskFailure, message, nil) }
func Errorf(format string, args ...any) *Error        { return newf(TaskFailure, format, args...) }
func IOFailuref(format string, args ...any) *Error     { return newf(IOFailure, format, args...) }
func ParseFailuref(format string, args ...any) *Error  { return newf(ParseFailure, format, args...) }
func ConfigFailuref(format string, args ...any) *Error { return newf(ConfigFailure, format, args...) }
func TaskFailuref(format string, args ...any) *Error   { return newf(TaskFailure, format, args...) }

// Is reports whether err is (or wraps) a tagged Error of the given Kind.
func Is(err error, kind Kind) bool {
	var tagged *Error
	if stderrors.As(err, &tagged) {
		return tagged.Kind == kind
	}

	return false
}

// Append accumulates non-nil errors into a *multierror.Error, mirroring the
// parallel scheduler's accumulated failure list (SPEC_FULL.md §4.F) and
// multi-project load errors (§7).
func Append(dst error, errs ...error) error {
	return multierror.Append(dst, errs...)
}

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
