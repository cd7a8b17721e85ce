// Package errors provides error handling for the viewer core.
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
//	if errors.Is(err, errors.ErrTransport) {
//	    // handle transport failure
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
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
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

// Sentinel errors for the navigation graph and asset cache.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrTransport indicates a network/transport failure fetching asset bytes.
	// Fatal for image fetches, absorbed for mesh fetches.
	ErrTransport = New("transport failure")

	// ErrDecode indicates a payload could not be decoded into the target
	// asset type (raster image or mesh buffer)
	ErrDecode = New("decode failure")

	// ErrNotFound indicates the requested node does not exist in the graph
	ErrNotFound = New("node not found")

	// ErrEdgesSet indicates an attempt to assign a node's edge list twice
	ErrEdgesSet = New("edges already set")

	// ErrCancelled indicates an in-flight asset fetch was abandoned by the caller
	ErrCancelled = New("fetch cancelled")
)

// IsTransportError checks if an error is or wraps ErrTransport
func IsTransportError(err error) bool {
	return err != nil && Is(err, ErrTransport)
}

// IsDecodeError checks if an error is or wraps ErrDecode
func IsDecodeError(err error) bool {
	return err != nil && Is(err, ErrDecode)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsCancelledError checks if an error is or wraps ErrCancelled
func IsCancelledError(err error) bool {
	return err != nil && Is(err, ErrCancelled)
}

// NewTransportError creates a transport error with a formatted message
func NewTransportError(format string, args ...interface{}) error {
	return Wrap(ErrTransport, Newf(format, args...).Error())
}

// NewDecodeError creates a decode error with a formatted message
func NewDecodeError(format string, args ...interface{}) error {
	return Wrap(ErrDecode, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
