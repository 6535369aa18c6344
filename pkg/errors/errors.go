// Package errors provides structured error types for the npm bridge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NPM_*: Failures of the npm executable itself
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNpmNotFound, "npm executable not found")
//	if errors.Is(err, errors.ErrCodeNpmNotFound) {
//	    // Handle missing npm
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "parse %s", path)
//
// A non-zero npm exit status is reported as *CommandFailedError, which also
// answers to Is(err, ErrCodeCommandFailed):
//
//	var failed *errors.CommandFailedError
//	if stderrors.As(err, &failed) {
//	    os.Exit(failed.ExitCode)
//	}
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
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// npm errors
	ErrCodeNpmNotFound   Code = "NPM_NOT_FOUND"
	ErrCodeCommandFailed Code = "NPM_COMMAND_FAILED"

	// Execution errors
	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeCanceled Code = "CANCELED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error or *CommandFailedError
// with a matching code. The outermost coded error wins.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case *CommandFailedError:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// CommandFailedError reports an npm process that ran to completion with a
// non-zero exit status.
type CommandFailedError struct {
	Command  string // Shell command line that was executed
	ExitCode int    // Exit status reported by the process
}

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("npm command failed with exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("npm command failed with exit status %d: %s", e.ExitCode, e.Command)
}

// Code returns the error code for this error type.
func (e *CommandFailedError) Code() Code {
	return ErrCodeCommandFailed
}

// ExitCode extracts the npm exit status from err.
// The second result is false when err carries no *CommandFailedError.
func ExitCode(err error) (int, bool) {
	var e *CommandFailedError
	if errors.As(err, &e) {
		return e.ExitCode, true
	}
	return 0, false
}
