// Package errors provides structured error handling with error codes for shop-auth.
//
// This package standardizes error handling across all services with typed error
// codes, automatic HTTP status code mapping, and a uniform JSON error envelope
// for the HTTP boundary.
//
// # Basic Usage
//
//	import "github.com/shopcore/shop-auth/pkg/errors"
//
//	// Create a simple error
//	err := errors.New(errors.ErrCodeUserNotFound, "User not found")
//
//	// Wrap an existing error
//	err := errors.Wrap(dbErr, errors.ErrCodeStoreUnavailable, "failed to query users")
//
//	// Check a code
//	if errors.IsCode(err, errors.ErrCodeConflict) { ... }
//
// # Error Classification
//
// Storage adapters translate store-specific failures (unique violations,
// foreign key violations, connection faults) into these codes so that business
// logic never pattern-matches on driver messages. Handlers call WriteError to
// render whatever reaches the boundary as the uniform envelope:
//
//	{statusCode, timestamp, path, method, message, error}
//
// Messages on ErrCodeSignupFailed and ErrCodeConflict paths are deliberately
// generic: they must not reveal whether an email address is already registered.
package errors
