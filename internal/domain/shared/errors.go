package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONCURRENT_MODIFICATION"
	CodeInvalidState  = "INVALID_STATE"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeTransientIO   = "TRANSIENT_IO"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNotFound).
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or inconsistent input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewDuplicateError reports a violated uniqueness invariant.
func NewDuplicateError(message string) *DomainError {
	return NewDomainError(CodeAlreadyExists, message)
}

// NewNotFoundError reports a missing referenced record.
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewConflictError reports a failed compare-and-swap on an aggregate version.
func NewConflictError(resource string) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf("%s was modified by another process, please retry", resource))
}

// NewInvalidStateError reports a transition that is not allowed from the current status.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewTransientError wraps an infrastructure failure (store or storage unreachable, timeouts).
func NewTransientError(operation string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeTransientIO,
		Message: fmt.Sprintf("%s failed, please retry", operation),
		Err:     cause,
	}
}

// CodeOf extracts the domain error code, or "" for non-domain errors.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsDuplicate reports whether err is a duplicate error
func IsDuplicate(err error) bool { return CodeOf(err) == CodeAlreadyExists }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConflict reports whether err is an optimistic concurrency conflict
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

// IsTransient reports whether err is a retryable infrastructure failure
func IsTransient(err error) bool { return CodeOf(err) == CodeTransientIO }

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)
