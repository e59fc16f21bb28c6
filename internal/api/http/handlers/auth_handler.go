package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/api/dto"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/service"
	apperrors "github.com/spec-kit/embed-login/pkg/util/errorutil"
)

// AuthHandler exposes the bearer token endpoints used by the single-page app.
type AuthHandler struct {
	auth      *service.AuthService
	loginPath string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, loginPath string) *AuthHandler {
	return &AuthHandler{auth: authService, loginPath: loginPath}
}

// Login handles POST /api/auth.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, err := h.auth.Login(requestContext(c), domain.VariantBearer, req.Username, req.Password)
	if err != nil {
		return mapAuthError(err, h.loginPath)
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		User:      dto.NewUserResponse(&token.Claims),
		Token:     token.Value,
		ExpiresAt: token.Claims.ExpiresAt,
		Message:   "Login successful",
	})
}

// Status handles GET /api/auth.
func (h *AuthHandler) Status(c *fiber.Ctx) error {
	claims, ok := auth.IdentityFromFiber(c)
	return c.JSON(dto.AuthStatusResponse{
		User:          dto.NewUserResponse(claims),
		Authenticated: ok,
	})
}

// Refresh handles GET /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	value, _ := auth.BearerToken(c)
	token, err := h.auth.Refresh(requestContext(c), domain.VariantBearer, value)
	if err != nil {
		return mapAuthError(err, h.loginPath)
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		User:      dto.NewUserResponse(&token.Claims),
		Token:     token.Value,
		ExpiresAt: token.Claims.ExpiresAt,
		Message:   "Refresh successful",
	})
}

// Logout handles DELETE /api/auth. Bearer tokens are discarded by the client.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	value, _ := auth.BearerToken(c)
	if err := h.auth.Logout(requestContext(c), domain.VariantBearer, value); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Logout successful"})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	return c.JSON(dto.MeResponse{User: dto.NewUserResponse(claims)})
}
