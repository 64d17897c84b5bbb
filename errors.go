// errors.go: structured error handling for strata cache operations
//
// Built on go-errors, enabling rich error context, categorization, and
// standardized error codes for all cache operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for strata cache operations.
const (
	// Configuration errors
	ErrCodeInvalidConfig      errors.ErrorCode = "STRATA_INVALID_CONFIG"
	ErrCodeInvalidMaxCapacity errors.ErrorCode = "STRATA_INVALID_MAX_CAPACITY"
	ErrCodeInvalidSegments    errors.ErrorCode = "STRATA_INVALID_SEGMENTS"

	// Operation errors
	ErrCodePredicatesDisabled errors.ErrorCode = "STRATA_PREDICATES_DISABLED"
	ErrCodeEmptyKey           errors.ErrorCode = "STRATA_EMPTY_KEY"
	ErrCodeTableFull          errors.ErrorCode = "STRATA_TABLE_FULL"

	// Initializer errors
	ErrCodeInitFailure     errors.ErrorCode = "STRATA_INIT_FAILURE"
	ErrCodeInvalidInit     errors.ErrorCode = "STRATA_INVALID_INIT"
	ErrCodePanicRecovered  errors.ErrorCode = "STRATA_PANIC_RECOVERED"
)

// NewErrPredicatesDisabled reports that InvalidateEntriesIf was called on
// a cache built with WithInvalidationPredicatesEnabled(false).
func NewErrPredicatesDisabled() error {
	return errors.NewWithField(ErrCodePredicatesDisabled, "invalidation predicates are disabled for this cache", "operation", "InvalidateEntriesIf")
}

// NewErrEmptyKey reports an operation invoked with a zero-value key where
// the cache's key type treats the zero value as meaningless. None of the
// cache's own operations return this error.
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, "key cannot be empty", "operation", operation)
}

// NewErrInvalidConfig reports a caller-supplied configuration that is
// structurally invalid, e.g. attaching hot reload to a segmented cache.
func NewErrInvalidConfig(reason string) error {
	return errors.NewWithField(ErrCodeInvalidConfig, "invalid cache configuration", "reason", reason)
}

// NewErrInvalidSegments reports a segmented cache constructed with zero
// segments. strata panics on this condition (spec: misconfiguration), but
// the error value is kept so the panic carries a structured payload.
func NewErrInvalidSegments() error {
	return errors.NewWithField(ErrCodeInvalidSegments, "num_segments must be greater than 0", "num_segments", 0)
}

// NewErrInitFailure wraps a failed init()/GetOrTryInsertWith evaluator.
// The returned error is shared identically (same pointer) across every
// concurrent waiter on that key.
func NewErrInitFailure(cause error) error {
	return errors.Wrap(cause, ErrCodeInitFailure, "value initializer failed")
}

// NewErrInvalidInit reports a nil initializer function.
func NewErrInvalidInit() error {
	return errors.NewWithField(ErrCodeInvalidInit, "init function must not be nil", "operation", "GetOrTryInsertWith")
}

// NewErrPanicRecovered reports a panic recovered from a user-supplied
// initializer. A panicking invalidation predicate produces no error; it
// is treated as a non-match.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, "panic recovered in cache operation", map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// IsPredicatesDisabled reports whether err is (or wraps) a predicates-disabled error.
func IsPredicatesDisabled(err error) bool {
	return errors.HasCode(err, ErrCodePredicatesDisabled)
}

// IsInitFailure reports whether err is (or wraps) an initializer-failure error.
func IsInitFailure(err error) bool {
	return errors.HasCode(err, ErrCodeInitFailure)
}

// GetErrorCode extracts the structured error code from err, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context map from err, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var strataErr *errors.Error
	if goerrors.As(err, &strataErr) {
		return strataErr.Context
	}
	return nil
}
