// Package errors provides structured error types for hmaputil.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INPUT_*: Problems with the source heightmap
//   - TRACK_MASK_*: Problems with the optional track mask
//   - *_INVALID: Request validation failures
//   - OUTPUT_*: Artifact write failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeBoundsInvalid, "upper bound %.2f is lower than lower bound %.2f", up, low)
//	if errors.Is(err, errors.ErrCodeBoundsInvalid) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInputUnreadable, origErr, "unable to read %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Source heightmap errors
	ErrCodeInputMissing     Code = "INPUT_MISSING"
	ErrCodeInputUnreadable  Code = "INPUT_UNREADABLE"
	ErrCodeInputWrongFormat Code = "INPUT_WRONG_FORMAT"

	// Request validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeBoundsInvalid     Code = "BOUNDS_INVALID"
	ErrCodeMultiplierInvalid Code = "MULTIPLIER_INVALID"

	// Track mask errors
	ErrCodeTrackMaskSizeMismatch Code = "TRACK_MASK_SIZE_MISMATCH"
	ErrCodeTrackMaskUnreadable   Code = "TRACK_MASK_UNREADABLE"

	// Output errors
	ErrCodeOutputWriteFailed Code = "OUTPUT_WRITE_FAILED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
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
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a pipeline run.
// An unreadable track mask only degrades the run (the overlay is skipped).
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeTrackMaskUnreadable
}

// IsValidation reports whether err was caused by the caller's input rather
// than by the environment. The HTTP API maps these to 400 responses.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInputMissing, ErrCodeInputWrongFormat, ErrCodeInvalidInput,
		ErrCodeBoundsInvalid, ErrCodeMultiplierInvalid, ErrCodeTrackMaskSizeMismatch:
		return true
	}
	return false
}
