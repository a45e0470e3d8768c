// Package errors provides structured error types for decksmith.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / NAME_MISMATCH: Catalog lookups that did not produce the requested card
//   - FETCH_FAILED / NETWORK_*: Remote resources that could not be loaded
//   - EMPTY_ARTIFACT: A whole export run failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
//
// The typed errors [FetchError], [EmptyArtifactError] and [NameMismatchError]
// carry extra context and report their code through [GetCode] and [Is] like
// any *Error.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidDeck   Code = "INVALID_DECK"
	ErrCodeInvalidRef    Code = "INVALID_IMAGE_REF"
	ErrCodeInvalidSet    Code = "INVALID_SET"

	// Catalog lookup errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNameMismatch Code = "NAME_MISMATCH"

	// Acquisition errors
	ErrCodeFetch         Code = "FETCH_FAILED"
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeRateLimited   Code = "RATE_LIMITED"
	ErrCodeEmptyArtifact Code = "EMPTY_ARTIFACT"

	// Internal errors
	ErrCodeCanceled Code = "CANCELED"
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

// coded is implemented by the typed domain errors.
type coded interface {
	error
	ErrorCode() Code
}

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() Code { return e.Code }

// Is reports whether err has the given error code.
// It walks the error chain and reports the outermost coded error.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// As is errors.As from the standard library, re-exported so callers that
// import this package under the name errors can still match error types.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var empty *EmptyArtifactError
	if errors.As(err, &empty) {
		return fmt.Sprintf("could not build the %s", empty.Artifact)
	}
	return err.Error()
}

// =============================================================================
// Domain errors
// =============================================================================

// FetchError reports that a single image or catalog lookup failed.
type FetchError struct {
	Ref   string // image reference or lookup key
	Cause error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.Ref, e.Cause)
	}
	return "fetch " + e.Ref
}

func (e *FetchError) Unwrap() error   { return e.Cause }
func (e *FetchError) ErrorCode() Code { return ErrCodeFetch }

// Fetch wraps cause as a FetchError for ref. A nil cause yields nil.
func Fetch(ref string, cause error) error {
	if cause == nil {
		return nil
	}
	return &FetchError{Ref: ref, Cause: cause}
}

// EmptyArtifactError reports that every unit of an export run failed.
type EmptyArtifactError struct {
	Artifact string   // "archive" or "document"
	Failures []string // labels of the failed units
}

func (e *EmptyArtifactError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("no images acquired for %s", e.Artifact)
	}
	return fmt.Sprintf("no images acquired for %s (failed: %s)", e.Artifact, strings.Join(e.Failures, ", "))
}

func (e *EmptyArtifactError) ErrorCode() Code { return ErrCodeEmptyArtifact }

// NameMismatchError is returned by strict collection lookups when the
// catalog answers with a differently named card.
type NameMismatchError struct {
	Want string
	Got  string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("card name mismatch: expected %q, got %q", e.Want, e.Got)
}

func (e *NameMismatchError) ErrorCode() Code { return ErrCodeNameMismatch }
