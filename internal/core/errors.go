// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Errorf wraps a formatted cause into base.
func Errorf(base *Error, format string, args ...any) *Error {
	return WrapError(base, fmt.Errorf(format, args...))
}

// Predefined errors
var (
	// Engine errors
	ErrConfiguration         = &Error{Code: "CONFIGURATION", Message: "invalid engine configuration"}
	ErrUnsupportedConvention = &Error{Code: "UNSUPPORTED_CONVENTION", Message: "unsupported day-count convention"}
	ErrMissingInflationData  = &Error{Code: "MISSING_INFLATION_DATA", Message: "no inflation data available"}
	ErrInflationAnchor       = &Error{Code: "INFLATION_ANCHOR", Message: "cashflows dated before inflation anchor"}
	ErrNonConvergence        = &Error{Code: "NON_CONVERGENCE", Message: "solver did not converge"}
	ErrInvalidSchedule       = &Error{Code: "INVALID_SCHEDULE", Message: "invalid cashflow schedule"}
	ErrInvalidInput          = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrNotFound              = &Error{Code: "NOT_FOUND", Message: "not found"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}
)
