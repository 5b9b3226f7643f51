package errz

import (
	"bytes"
	"fmt"
)

// ErrorKind represents the category of a runtime error.
type ErrorKind int

const (
	// ErrType indicates an operand of the wrong type.
	ErrType ErrorKind = iota
	// ErrInternal indicates malformed bytecode or a broken VM invariant.
	ErrInternal
	// ErrLimit indicates that an execution limit was exceeded.
	ErrLimit
	// ErrCancelled indicates that the run was cancelled through its context.
	ErrCancelled
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrType:
		return "type error"
	case ErrInternal:
		return "internal error"
	case ErrLimit:
		return "limit error"
	case ErrCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// RuntimeError is raised by the VM. It is fatal to the run that produced it.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Cause   error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns the error prefixed with its kind.
func (e *RuntimeError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Kind.String())
	msg.WriteString(": ")
	msg.WriteString(e.Message)
	if e.Line > 0 {
		msg.WriteString(fmt.Sprintf(" (line %d)", e.Line))
	}
	if e.Cause != nil {
		msg.WriteString("\ncaused by: ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// NewRuntimeErrorf creates a new RuntimeError with a formatted message.
func NewRuntimeErrorf(kind ErrorKind, line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// WithCause wraps the error with a cause.
func (e *RuntimeError) WithCause(cause error) *RuntimeError {
	e.Cause = cause
	return e
}
