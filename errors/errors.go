// Package errors provides error handling for PromptCrafter.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
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
//	// Add hints for users
//	return errors.WithHint(err, "set OPENAI_API_KEY in the environment")
//
//	// Check errors
//	if errors.Is(err, errors.ErrBudgetExceeded) {
//	    // stop the run
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
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Common sentinel errors for use across PromptCrafter.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrNotConfigured indicates a required credential or setting is missing
	ErrNotConfigured = New("not configured")

	// ErrPlaceholderMismatch indicates template placeholders and configured
	// params do not agree
	ErrPlaceholderMismatch = New("placeholder mismatch")

	// ErrBudgetExceeded indicates the configured spend limit has been reached
	ErrBudgetExceeded = New("budget exceeded")

	// ErrRateLimited indicates the call was rejected by the local rate limiter
	ErrRateLimited = New("rate limit exceeded")

	// ErrEmptyResponse indicates the model returned no usable content
	ErrEmptyResponse = New("empty model response")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsNotConfiguredError checks if an error is or wraps ErrNotConfigured.
func IsNotConfiguredError(err error) bool {
	return err != nil && Is(err, ErrNotConfigured)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
