// Package errors provides structured error types for ladderkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - BROKEN_GRAPH: A rung whose structure violates the ladder invariants
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidElement, "unknown element type: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidElement) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "failed to decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidElement  Code = "INVALID_ELEMENT"
	ErrCodeInvalidVariable Code = "INVALID_VARIABLE"
	ErrCodeInvalidBlock    Code = "INVALID_BLOCK"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Graph integrity errors
	ErrCodeBrokenGraph Code = "BROKEN_GRAPH"
	ErrCodeConflict    Code = "CONFLICT"

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

// BrokenGraphError reports a rung whose structure cannot be interpreted,
// such as a parallel close without a matching open or an element with no
// outgoing wire. NodeID names the first node found in a bad state.
type BrokenGraphError struct {
	NodeID string
	Reason string
}

// BrokenGraph builds a BrokenGraphError for the node with the given id.
func BrokenGraph(nodeID, format string, args ...any) *BrokenGraphError {
	return &BrokenGraphError{NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *BrokenGraphError) Error() string {
	if e.NodeID == "" {
		return "broken graph: " + e.Reason
	}
	return fmt.Sprintf("broken graph at node %s: %s", e.NodeID, e.Reason)
}

// Unwrap exposes the error as an *Error with ErrCodeBrokenGraph so that
// Is and GetCode classify it without knowing the concrete type.
func (e *BrokenGraphError) Unwrap() error {
	return &Error{Code: ErrCodeBrokenGraph, Message: e.Reason}
}

// IsBrokenGraph reports whether err carries a BrokenGraphError and returns it.
func IsBrokenGraph(err error) (*BrokenGraphError, bool) {
	var e *BrokenGraphError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
