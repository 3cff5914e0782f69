// Package domain defines the core domain models for Ignite.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Error codes follow the IG-<AREA>-<NNNN> convention.
//
// @req RQ-0104
// @design DS-0104
type DomainError struct {
	Code    string // Error code (e.g., "IG-SNAP-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
//
// @design DS-0104
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
//
// @design DS-0104
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
//
// @design DS-0104
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrSnapshotNotFound indicates no snapshot with the given name exists.
	ErrSnapshotNotFound = NewDomainError("IG-SNAP-4040", "snapshot not found")

	// ErrSnapshotExists indicates a snapshot with the given name is already registered.
	ErrSnapshotExists = NewDomainError("IG-SNAP-4090", "snapshot already exists")

	// ErrSnapshotNameInvalid indicates the snapshot name violates naming rules.
	ErrSnapshotNameInvalid = NewDomainError("IG-SNAP-4001", "invalid snapshot name")

	// ErrCorruptPage indicates a page failed checksum validation.
	ErrCorruptPage = NewDomainError("IG-SNAP-5001", "page checksum violation")

	// ErrMetafileCorrupt indicates a snapshot metafile failed integrity validation.
	ErrMetafileCorrupt = NewDomainError("IG-SNAP-5002", "metafile integrity violation")
)

// ============================================================================
// Check Errors (CHK)
// ============================================================================

var (
	// ErrCheckNotFound indicates the check operation id is unknown.
	ErrCheckNotFound = NewDomainError("IG-CHK-4040", "check operation not found")

	// ErrNodeTimedOut indicates a node did not reply before the dispatch deadline.
	ErrNodeTimedOut = NewDomainError("IG-CHK-4080", "node did not reply before deadline")

	// ErrNodeUnreachable indicates a node could not be reached at all.
	ErrNodeUnreachable = NewDomainError("IG-CHK-5030", "node unreachable")

	// ErrCheckCancelled indicates the check run was cancelled before completion.
	ErrCheckCancelled = NewDomainError("IG-CHK-4990", "check cancelled")
)

// ============================================================================
// Cluster Errors (CLUS)
// ============================================================================

var (
	// ErrClusterInactive indicates the cluster state does not permit the operation.
	ErrClusterInactive = NewDomainError("IG-CLUS-4003", "cluster is not active")

	// ErrNotLeader indicates the operation must run on the raft leader.
	ErrNotLeader = NewDomainError("IG-CLUS-4210", "node is not the cluster leader")

	// ErrNodeNotFound indicates the node id is not part of the topology.
	ErrNodeNotFound = NewDomainError("IG-CLUS-4040", "node not found in topology")

	// ErrGroupNotFound indicates the cache group is not registered.
	ErrGroupNotFound = NewDomainError("IG-CLUS-4041", "cache group not registered")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates a missing or invalid management API token.
	ErrUnauthorized = NewDomainError("IG-AUTH-4010", "missing or invalid auth token")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("IG-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("IG-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("IG-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("IG-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("IG-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("IG-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("IG-ARG-1002", "missing required argument")
)
