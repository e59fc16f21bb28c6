package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/api/dto"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/service"
	"github.com/spec-kit/embed-login/internal/vendor"
	apperrors "github.com/spec-kit/embed-login/pkg/util/errorutil"
)

// TokenValidator checks embed tokens with the vendor.
type TokenValidator interface {
	Validate(ctx context.Context, token, origin string) vendor.ValidationResult
}

// VendorHandler exposes the chat vendor endpoints.
type VendorHandler struct {
	auth      *service.AuthService
	validator TokenValidator
	release   dto.ReleaseResponse
	loginPath string
	now       func() time.Time
}

// NewVendorHandler constructs handler.
func NewVendorHandler(authService *service.AuthService, validator TokenValidator, release dto.ReleaseResponse, loginPath string) *VendorHandler {
	return &VendorHandler{
		auth:      authService,
		validator: validator,
		release:   release,
		loginPath: loginPath,
		now:       time.Now,
	}
}

// GetJWT trades the caller's identity for a fresh vendor token.
func (h *VendorHandler) GetJWT(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	token, err := h.auth.VendorToken(requestContext(c), domain.VariantBearer, claims)
	if err != nil {
		return mapAuthError(err, h.loginPath)
	}
	return c.JSON(dto.VendorTokenResponse{
		JWT:  token.Value,
		Mock: token.Mock,
		User: dto.NewUserResponse(claims),
	})
}

// Release handles GET /api/divinci/release.
func (h *VendorHandler) Release(c *fiber.Ctx) error {
	return c.JSON(h.release)
}

// DebugTokens handles GET /api/debug/tokens.
func (h *VendorHandler) DebugTokens(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	_, present := auth.BearerToken(c)
	return c.JSON(dto.DebugTokensResponse{
		CurrentUser:  dto.NewUserResponse(claims),
		TokenPresent: present,
		Timestamp:    h.now().UTC(),
	})
}

// Validate handles POST /api/debug/validate.
func (h *VendorHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.JWT) == "" {
		return apperrors.NewValidationError("jwt is required", nil)
	}
	origin := req.Origin
	if origin == "" {
		origin = c.Get(fiber.HeaderOrigin)
	}
	return c.JSON(h.validator.Validate(requestContext(c), req.JWT, origin))
}
