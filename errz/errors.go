// Package errz defines the error types returned by the compiler and the VM.
//
// Compile errors are recovered: the compiler records each one, keeps going,
// and returns them together as a *CompileErrors. Runtime errors are fatal:
// the VM stops at the first *RuntimeError.
package errz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// FriendlyError is an interface for errors that have a human friendly message
// in addition to the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// CompileError is a single positioned compile diagnostic.
type CompileError struct {
	Filename string
	Line     int
	// Where describes the offending token, e.g. " at '+'" or " at end".
	// Empty for lexical errors.
	Where   string
	Message string
}

// Error renders the diagnostic as "[line N] Error at 'x': message".
func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

// FriendlyErrorMessage prefixes the diagnostic with the filename, if known.
func (e *CompileError) FriendlyErrorMessage() string {
	if e.Filename == "" {
		return e.Error()
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Error())
}

// CompileErrors aggregates the diagnostics reported during one compilation.
type CompileErrors struct {
	merr *multierror.Error
}

// Append adds a diagnostic to the aggregate.
func (e *CompileErrors) Append(err *CompileError) {
	e.merr = multierror.Append(e.merr, err)
	e.merr.ErrorFormat = formatCompileErrors
}

// Len returns the number of diagnostics.
func (e *CompileErrors) Len() int {
	if e == nil || e.merr == nil {
		return 0
	}
	return e.merr.Len()
}

// Errors returns the diagnostics in the order they were reported.
func (e *CompileErrors) Errors() []*CompileError {
	if e.Len() == 0 {
		return nil
	}
	wrapped := e.merr.WrappedErrors()
	out := make([]*CompileError, 0, len(wrapped))
	for _, err := range wrapped {
		var ce *CompileError
		if errors.As(err, &ce) {
			out = append(out, ce)
		}
	}
	return out
}

// ErrorOrNil returns nil if no diagnostics were recorded.
func (e *CompileErrors) ErrorOrNil() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}

// Error renders one diagnostic per line.
func (e *CompileErrors) Error() string {
	if e.Len() == 0 {
		return "no compile errors"
	}
	return e.merr.Error()
}

// FriendlyErrorMessage renders one diagnostic per line, with filenames.
func (e *CompileErrors) FriendlyErrorMessage() string {
	lines := make([]string, 0, e.Len())
	for _, err := range e.Errors() {
		lines = append(lines, err.FriendlyErrorMessage())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual diagnostics to errors.Is and errors.As.
func (e *CompileErrors) Unwrap() []error {
	if e.Len() == 0 {
		return nil
	}
	return e.merr.WrappedErrors()
}

func formatCompileErrors(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
