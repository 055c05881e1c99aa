// Package enginerr implements the engine's error taxonomy: the five error
// kinds the engine distinguishes and how each is recovered from. A typed
// Kind plus structured fields and a composed Error() string, generalized
// from a source-location-carrying language error shape to the engine's
// method/class/resource-bound error shapes.
package enginerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the five error kinds the engine distinguishes.
type Kind string

const (
	// ResourceBoundExceeded — one of address-visits / call-depth /
	// method-visits / execution-time. Recovered: the method is skipped.
	ResourceBoundExceeded Kind = "ResourceBoundExceeded"
	// UnhandledVirtualException — an exception the interpreter could not
	// attribute to any handler and cannot represent. Aborts the run.
	UnhandledVirtualException Kind = "UnhandledVirtualException"
	// MalformedInstruction — operands didn't match the opcode's declared
	// shape. Fatal to the current method; run continues.
	MalformedInstruction Kind = "MalformedInstruction"
	// IOError at the read/write boundary. Fatal to the run.
	IOError Kind = "IOError"
	// ConfigError at CLI parse time. Exit with usage.
	ConfigError Kind = "ConfigError"
)

// EngineError carries a Kind plus enough context to log and recover
// correctly, per each kind's own recovery policy.
type EngineError struct {
	Kind    Kind
	Message string
	Method  string // method signature, when applicable
	Bound   string // which specific bound was exceeded, for ResourceBoundExceeded
	cause   error
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Method != "" {
		msg += fmt.Sprintf(" (method %s)", e.Method)
	}
	if e.Bound != "" {
		msg += fmt.Sprintf(" [bound=%s]", e.Bound)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.cause }

// Recoverable reports whether the run should continue past this error with
// only the current method (or nothing, for ConfigError/IOError) skipped.
func (e *EngineError) Recoverable() bool {
	switch e.Kind {
	case ResourceBoundExceeded, MalformedInstruction:
		return true
	default:
		return false
	}
}

func NewResourceBound(method, bound, message string) *EngineError {
	return &EngineError{Kind: ResourceBoundExceeded, Method: method, Bound: bound, Message: message}
}

func NewUnhandledException(method, message string) *EngineError {
	return &EngineError{Kind: UnhandledVirtualException, Method: method, Message: message}
}

func NewMalformedInstruction(method, message string) *EngineError {
	return &EngineError{Kind: MalformedInstruction, Method: method, Message: message}
}

func WrapIO(cause error, message string) *EngineError {
	return &EngineError{Kind: IOError, Message: message, cause: errors.Wrap(cause, message)}
}

func NewConfigError(message string) *EngineError {
	return &EngineError{Kind: ConfigError, Message: message}
}

// IsKind reports whether err is an *EngineError of the given Kind, unwrapping
// through errors.Wrap chains as needed.
func IsKind(err error, k Kind) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind == k
	}
	return false
}
