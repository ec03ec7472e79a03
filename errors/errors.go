// Package errors provides error handling for minigen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing CLI output
//   - Assertion failures for internal invariant violations
//
// Usage:
//
//	// Wrap with context
//	if err := scanner.Scan(ctx, patterns); err != nil {
//	    return errors.Wrap(err, "failed to scan packages")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run 'minigen generate' to refresh generated files")
//
//	// Check protocol errors
//	if errors.Is(err, errors.ErrOutOfOrderRound) {
//	    // host kept sending rounds after the final one
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

	// CombineErrors keeps the first error and attaches the second as secondary.
	CombineErrors = crdb.CombineErrors
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
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Assertions mark internal invariant violations, never user mistakes.
var (
	AssertionFailedf   = crdb.AssertionFailedf
	IsAssertionFailure = crdb.IsAssertionFailure
)

// Sentinel errors shared across minigen.
// Use these with errors.Is() and wrap them with errors.Wrap() to add context.
var (
	// ErrOutOfOrderRound indicates the host delivered a round after the final one
	ErrOutOfOrderRound = New("round delivered after final round")

	// ErrReentrantRound indicates ProcessRound was entered while another round was in flight
	ErrReentrantRound = New("round processing is already in progress")

	// ErrSessionAborted indicates the session was abandoned by the host
	ErrSessionAborted = New("session aborted")

	// ErrUnknownKind indicates a kind or annotation is not present in the kind table
	ErrUnknownKind = New("unknown generation kind")

	// ErrInvalidKindTable indicates a kind table failed validation
	ErrInvalidKindTable = New("invalid kind table")

	// ErrConflict indicates an artifact identity was written twice with different content
	ErrConflict = New("artifact conflict")

	// ErrStale indicates generated files on disk differ from freshly rendered output
	ErrStale = New("generated files are out of date")
)

// IsProtocolError reports whether err is a host round-contract violation.
// Protocol errors abort the whole session.
func IsProtocolError(err error) bool {
	return err != nil && IsAny(err, ErrOutOfOrderRound, ErrReentrantRound, ErrSessionAborted)
}

// NewKindTableError creates an invalid-kind-table error with a formatted message
func NewKindTableError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidKindTable, Newf(format, args...).Error())
}
