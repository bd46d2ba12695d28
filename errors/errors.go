// Package errors provides error handling for toon-ls.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrDocumentNotOpen) {
//	    // handle unknown document
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across toon-ls.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrDocumentNotOpen indicates a request referenced a document the
	// store is not tracking
	ErrDocumentNotOpen = New("document not open")

	// ErrNotAKey indicates a rename was requested at a position that is
	// not an object key
	ErrNotAKey = New("position is not on a key")

	// ErrInvalidKeyName indicates a rename target that is not a legal key
	ErrInvalidKeyName = New("invalid key name")

	// ErrPoolStopped indicates work was submitted to a stopped worker pool
	ErrPoolStopped = New("worker pool stopped")

	// ErrQueueFull indicates the worker pool queue rejected a task
	ErrQueueFull = New("worker pool queue full")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = New("operation timed out")
)

// IsDocumentNotOpenError checks if an error is or wraps ErrDocumentNotOpen
func IsDocumentNotOpenError(err error) bool {
	return err != nil && Is(err, ErrDocumentNotOpen)
}

// NewDocumentNotOpenError creates a document-not-open error naming the URI
func NewDocumentNotOpenError(uri string) error {
	return Wrapf(ErrDocumentNotOpen, "%s", uri)
}
