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

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

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

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

// NewEnrichmentFailure marks a failed call to the external rewriting
// service. The submit operation aborts before anything is persisted.
func NewEnrichmentFailure(err error) error {
	return &DomainError{
		Code:       "ENRICHMENT_FAILED",
		Message:    "message enrichment service unavailable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewPersistenceError marks a rejected storage write.
func NewPersistenceError(err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_FAILED",
		Message:    "failed to persist ticket update",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewMissingRecipient reports that a notification could not be sent because
// the ticket has no customer email. The reply itself is already saved.
func NewMissingRecipient(ticketID string) error {
	return &DomainError{
		Code:       "MISSING_RECIPIENT",
		Message:    "ticket has no customer email address",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"ticket_id": ticketID},
	}
}

// NewNotificationFailure reports a failed email dispatch after the reply was
// committed.
func NewNotificationFailure(err error) error {
	return &DomainError{
		Code:       "NOTIFICATION_FAILED",
		Message:    "reply saved but customer notification failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
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
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
