package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced by the sales engine.
const (
	CodeNoTicketSelected  = "NO_TICKET_SELECTED"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInternalError     = "INTERNAL_ERROR"
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
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewNoTicketSelected signals a ticket-scoped operation without a current ticket.
// Recoverable: the caller should select or create a ticket and retry.
func NewNoTicketSelected() error {
	return NewDomainError(CodeNoTicketSelected, "no ticket selected", http.StatusConflict, nil)
}

// NewInsufficientStock signals a quantity increase beyond tracked stock.
// Recoverable: the caller may retry with the force flag after confirmation.
func NewInsufficientStock(productID string, requested, available int) error {
	return NewDomainError(CodeInsufficientStock, "amount in stock is smaller than set amount", http.StatusConflict, map[string]any{
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	})
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNoTicketSelected reports whether err carries the NO_TICKET_SELECTED code.
func IsNoTicketSelected(err error) bool {
	return hasCode(err, CodeNoTicketSelected)
}

// IsInsufficientStock reports whether err carries the INSUFFICIENT_STOCK code.
func IsInsufficientStock(err error) bool {
	return hasCode(err, CodeInsufficientStock)
}

func hasCode(err error, code string) bool {
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
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
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
