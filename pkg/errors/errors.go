// Package errors provides structured error types for unolayout.
//
// Every error that crosses a package boundary in the component library
// carries a machine-readable [Code], so the CLI and the recipe builder can
// tell a bad parameter from a geometry that cannot be drawn.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (parameters, recipes, config, paths)
//   - UNKNOWN_*: lookups that did not resolve (components, ports)
//   - INFEASIBLE_GEOMETRY: parameters are well-formed but the shape cannot
//     be constructed (a route segment shorter than its bends, a negative
//     solved straight length)
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "numCouplers must be 1 or 2, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidRecipe, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidRecipe    Code = "INVALID_RECIPE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidCellName  Code = "INVALID_CELL_NAME"

	// Lookup errors
	ErrCodeUnknownComponent Code = "UNKNOWN_COMPONENT"
	ErrCodeUnknownPort      Code = "UNKNOWN_PORT"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Geometry errors
	ErrCodeInfeasibleGeometry Code = "INFEASIBLE_GEOMETRY"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.Cause
		e = nil
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Parameter returns an INVALID_PARAMETER error naming the offending
// parameter of a generator.
func Parameter(component, param string, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidParameter,
		Message: fmt.Sprintf("%s: %s: %s", component, param, fmt.Sprintf(format, args...)),
	}
}

// Infeasible returns an INFEASIBLE_GEOMETRY error.
func Infeasible(format string, args ...any) *Error {
	return New(ErrCodeInfeasibleGeometry, format, args...)
}
