package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/api/dto"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/service"
	apperrors "github.com/spec-kit/embed-login/pkg/util/errorutil"
)

// SessionPaths are the redirect targets of the cookie session variant.
type SessionPaths struct {
	Login   string
	Landing string
	Home    string
}

// SessionHandler exposes the cookie session endpoints used by the
// server-rendered site.
type SessionHandler struct {
	auth   *service.AuthService
	cookie auth.CookieConfig
	paths  SessionPaths
}

// NewSessionHandler constructs handler.
func NewSessionHandler(authService *service.AuthService, cookie auth.CookieConfig, paths SessionPaths) *SessionHandler {
	return &SessionHandler{auth: authService, cookie: cookie, paths: paths}
}

// Login handles POST /ssr/auth/login with a form or JSON body. Success sets
// the session cookie and redirects to the remembered page. Failure answers
// with the login page model.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, err := h.auth.Login(requestContext(c), domain.VariantSession, req.Username, req.Password)
	if err != nil {
		status, message := loginFailureMessage(err)
		if status >= fiber.StatusInternalServerError {
			return apperrors.NewInternalError(err)
		}
		return c.Status(status).JSON(dto.PageView{
			Page:     "login",
			Title:    loginTitle,
			Error:    message,
			Username: req.Username,
		})
	}

	auth.SetSessionCookie(c, h.cookie, token.Value)
	target := auth.ConsumeReturnTo(c, h.paths.Landing, h.cookie.Secure)
	return c.Redirect(target, fiber.StatusFound)
}

// Logout handles POST /ssr/auth/logout. The record is deleted and the
// cookie cleared even when the session was already gone.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if value := c.Cookies(h.cookie.Name); value != "" {
		if err := h.auth.Logout(requestContext(c), domain.VariantSession, value); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	auth.ClearSessionCookie(c, h.cookie)
	return c.Redirect(h.paths.Home, fiber.StatusFound)
}

// Me handles GET /ssr/api/me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	return c.JSON(dto.MeResponse{User: dto.NewUserResponse(claims)})
}

// GetJWT handles GET /ssr/api/get-jwt.
func (h *SessionHandler) GetJWT(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	token, err := h.auth.VendorToken(requestContext(c), domain.VariantSession, claims)
	if err != nil {
		return mapAuthError(err, h.paths.Login)
	}
	return c.JSON(dto.VendorTokenResponse{
		JWT:  token.Value,
		Mock: token.Mock,
		User: dto.NewUserResponse(claims),
	})
}
