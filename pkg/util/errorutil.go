package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewNotFound reports a missing ticket or roster record.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewCorruptRecord reports a ticket document that cannot be parsed.
func NewCorruptRecord(id string, err error) error {
	return &DomainError{
		Code:       "CORRUPT_RECORD",
		Message:    "error decoding ticket data",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"ticket_id": id},
		Err:        err,
	}
}

// NewStorageError reports a failed write to the ledger or document store.
func NewStorageError(backend string, err error) error {
	return &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    fmt.Sprintf("%s write failed", backend),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"backend": backend},
		Err:        err,
	}
}

// NewNoCandidates reports an empty moderator candidate set.
func NewNoCandidates() error {
	return NewDomainError("NO_CANDIDATES", "no moderators match the required role", http.StatusConflict, nil)
}

// NewTooManyCandidates reports a candidate set beyond the selection capacity.
func NewTooManyCandidates(count, limit int) error {
	return NewDomainError("TOO_MANY_CANDIDATES", "too many moderators for selection", http.StatusConflict,
		map[string]any{"count": count, "limit": limit})
}

// NewPermissionDenied reports an actor lacking the required role.
func NewPermissionDenied(message string) error {
	return NewDomainError("PERMISSION_DENIED", message, http.StatusForbidden, nil)
}

// NewAlreadyActioned reports a duplicate accept or reject attempt.
func NewAlreadyActioned(status string) error {
	return NewDomainError("ALREADY_ACTIONED", fmt.Sprintf("this ticket has already been %s", status),
		http.StatusConflict, map[string]any{"status": status})
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
