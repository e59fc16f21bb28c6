package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/embed-login/internal/api/dto"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/service"
)

const loginTitle = "Login - SSR Demo"

// PagesHandler builds the view models of the server-rendered pages.
type PagesHandler struct {
	auth    *service.AuthService
	release dto.ReleaseResponse
	logger  *zap.Logger
}

// NewPagesHandler constructs handler.
func NewPagesHandler(authService *service.AuthService, release dto.ReleaseResponse, logger *zap.Logger) *PagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagesHandler{auth: authService, release: release, logger: logger}
}

// Home handles GET /ssr/.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	return h.render(c, "home", "SSR External Login Demo")
}

// Login handles GET /ssr/login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return c.JSON(dto.PageView{Page: "login", Title: loginTitle})
}

// Example handles GET /ssr/example.
func (h *PagesHandler) Example(c *fiber.Ctx) error {
	return h.render(c, "example", "Example - SSR Demo")
}

// Protected handles GET /ssr/protected. A vendor token is traded on every
// render; a failed trade degrades to an error message on the page.
func (h *PagesHandler) Protected(c *fiber.Ctx) error {
	claims, _ := auth.IdentityFromFiber(c)
	view := dto.PageView{
		Page:  "protected",
		Title: "Protected Page - SSR Demo",
		User:  dto.NewUserResponse(claims),
	}

	token, err := h.auth.VendorToken(requestContext(c), domain.VariantSession, claims)
	if err != nil {
		h.logger.Warn("failed to get vendor token for page", zap.String("path", c.Path()), zap.Error(err))
		view.Error = "Failed to load chat. Please try again."
		return c.JSON(view)
	}

	view.Chat = &dto.ChatView{
		ReleaseID:      h.release.ReleaseID,
		EmbedScriptURL: h.release.EmbedScriptURL,
		JWT:            token.Value,
		Mock:           token.Mock,
	}
	return c.JSON(view)
}

func (h *PagesHandler) render(c *fiber.Ctx, page, title string) error {
	claims, _ := auth.IdentityFromFiber(c)
	return c.JSON(dto.PageView{Page: page, Title: title, User: dto.NewUserResponse(claims)})
}
