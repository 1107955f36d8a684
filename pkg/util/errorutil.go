package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the lifecycle engine.
const (
	CodeInvalidPriority        = "INVALID_PRIORITY"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeAttemptNotFound        = "ATTEMPT_NOT_FOUND"
	CodeTicketNotFound         = "TICKET_NOT_FOUND"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInternalError          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Retryable  bool
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

// NewInvalidPriority reports an unknown ticket priority.
func NewInvalidPriority(priority string) error {
	return NewDomainError(CodeInvalidPriority, fmt.Sprintf("invalid priority %q", priority),
		http.StatusBadRequest, map[string]any{"priority": priority})
}

// NewInvalidTransition reports a disallowed status transition.
func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("invalid transition %s -> %s", from, to),
		http.StatusConflict, map[string]any{"from": from, "to": to})
}

// NewAttemptNotFound reports a missing resolution attempt.
func NewAttemptNotFound(ticketID string, attemptNumber int) error {
	return NewDomainError(CodeAttemptNotFound,
		fmt.Sprintf("attempt %d not found for ticket %s", attemptNumber, ticketID),
		http.StatusNotFound, map[string]any{"ticket_id": ticketID, "attempt_number": attemptNumber})
}

// NewTicketNotFound reports a missing ticket.
func NewTicketNotFound(ticketID string) error {
	return NewDomainError(CodeTicketNotFound, fmt.Sprintf("ticket %s not found", ticketID),
		http.StatusNotFound, map[string]any{"ticket_id": ticketID})
}

// NewConcurrentModification reports a stale-version write. The caller should
// re-read the ticket and retry the mutation.
func NewConcurrentModification(ticketID string) error {
	return &DomainError{
		Code:       CodeConcurrentModification,
		Message:    fmt.Sprintf("ticket %s was modified concurrently", ticketID),
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"ticket_id": ticketID},
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
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
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
