// Package errors provides the structured error type and exit codes used by
// livetest.
package errors

import (
	"fmt"

	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindInput
	KindEnvironment
	// KindUnreachable marks a broken internal invariant. These are raised
	// with panic, never returned.
	KindUnreachable
)

// ReportError is the base error type for livetest.
type ReportError struct {
	Kind    ErrorKind
	Message string
	Worker  string // Worker (assembly or package) if applicable
	Cause   error  // Underlying error
}

func (e *ReportError) Error() string {
	msg := e.Message
	if e.Kind == KindUnreachable {
		msg = "unreachable: " + msg
	}
	if e.Worker != "" {
		msg = fmt.Sprintf("[%s] %s", e.Worker, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *ReportError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return livetest.ExitConfigError
	default:
		return livetest.ExitFailure
	}
}

// New creates a new runtime error.
func New(message string) *ReportError {
	return &ReportError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *ReportError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *ReportError {
	return &ReportError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *ReportError {
	return Config(fmt.Sprintf(format, args...))
}

// Input creates an error for unreadable or malformed event input.
func Input(message string, cause error) *ReportError {
	return &ReportError{
		Kind:    KindInput,
		Message: message,
		Cause:   cause,
	}
}

// Environment creates a new environment error.
func Environment(message string) *ReportError {
	return &ReportError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Unreachable creates the value a broken invariant panics with.
func Unreachable(message string) *ReportError {
	return &ReportError{
		Kind:    KindUnreachable,
		Message: message,
	}
}

// Unreachablef creates an unreachable-state error with formatting.
func Unreachablef(format string, args ...interface{}) *ReportError {
	return Unreachable(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *ReportError {
	return &ReportError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WorkerError creates an error for a specific worker.
func WorkerError(worker, message string) *ReportError {
	return &ReportError{
		Kind:    KindRuntime,
		Worker:  worker,
		Message: message,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return livetest.ExitSuccess
	}
	if re, ok := err.(*ReportError); ok {
		return re.ExitCode()
	}
	return livetest.ExitFailure
}
