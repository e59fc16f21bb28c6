package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/credentials"
	"github.com/spec-kit/embed-login/internal/events"
	"github.com/spec-kit/embed-login/internal/service"
	"github.com/spec-kit/embed-login/internal/vendor"
	apperrors "github.com/spec-kit/embed-login/pkg/util/errorutil"
)

// mapAuthError turns service errors into API errors. loginPath is the
// redirect hint for unauthenticated outcomes.
func mapAuthError(err error, loginPath string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credentials.ErrMissingFields):
		return apperrors.NewValidationError("Username and password are required", nil)
	case errors.Is(err, auth.ErrInvalidCredential):
		return apperrors.NewInvalidCredentials()
	case auth.IsVerificationFailure(err), errors.Is(err, service.ErrUnverifiedIdentity):
		return apperrors.NewUnauthenticated("Invalid or expired token", loginPath)
	case errors.Is(err, vendor.ErrTradeFailed):
		return apperrors.NewTradeFailed(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// loginFailureMessage is the user-facing text for a failed form login.
func loginFailureMessage(err error) (int, string) {
	switch {
	case errors.Is(err, credentials.ErrMissingFields):
		return fiber.StatusBadRequest, "Username and password are required"
	case errors.Is(err, auth.ErrInvalidCredential):
		return fiber.StatusUnauthorized, "Invalid username or password"
	default:
		return fiber.StatusInternalServerError, "Login failed. Please try again."
	}
}

// requestContext carries the request deadline, identity and client address
// into the service layer.
func requestContext(c *fiber.Ctx) context.Context {
	return events.WithClientIP(c.UserContext(), c.IP())
}
