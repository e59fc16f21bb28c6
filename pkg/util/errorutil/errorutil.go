package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
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

// NewInvalidCredentials never says which field was wrong.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized, nil)
}

func NewUnauthenticated(message, redirectTo string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, redirectDetails(redirectTo))
}

func NewAlreadyAuthenticated(redirectTo string) error {
	return NewDomainError("ALREADY_AUTHENTICATED", "Already authenticated", http.StatusBadRequest, redirectDetails(redirectTo))
}

// NewRateLimited wraps the limiter's sentinel so callers can match it with errors.Is.
func NewRateLimited(err error) error {
	de := NewDomainError("RATE_LIMITED", "Too many requests. Please try again later.", http.StatusTooManyRequests, nil)
	de.Err = err
	return de
}

func NewTradeFailed(err error) error {
	de := NewDomainError("TRADE_FAILED", "Failed to get authentication token", http.StatusBadGateway, nil)
	de.Err = err
	if err != nil {
		de.Details = map[string]any{"details": err.Error()}
	}
	return de
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func redirectDetails(redirectTo string) map[string]any {
	if redirectTo == "" {
		return nil
	}
	return map[string]any{"redirectTo": redirectTo}
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
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{
			Code:       codeForStatus(fiberErr.Code),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_FAILED"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}
