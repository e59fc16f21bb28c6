package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/embed-login/pkg/util/errorutil"
)

// Extractor pulls the raw token value out of a request.
type Extractor func(c *fiber.Ctx) (string, bool)

// BearerToken reads an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// CookieValue reads the named cookie.
func CookieValue(name string) Extractor {
	return func(c *fiber.Ctx) (string, bool) {
		value := c.Cookies(name)
		return value, value != ""
	}
}

// Style selects how a rejected request is answered.
type Style int

const (
	// StyleAPI answers with a structured JSON auth error.
	StyleAPI Style = iota
	// StylePage answers with a redirect.
	StylePage
)

// GuardConfig wires a Guard to one transport variant.
type GuardConfig struct {
	Verifier    Verifier
	Extract     Extractor
	LoginPath   string
	LandingPath string
	// ReturnTo enables remembering the requested page on login redirects.
	ReturnTo     bool
	CookieSecure bool
}

// Guard applies the access policies to requests of one variant.
type Guard struct {
	verifier     Verifier
	extract      Extractor
	loginPath    string
	landingPath  string
	returnTo     bool
	cookieSecure bool
	logger       *zap.Logger
}

// NewGuard constructs a Guard.
func NewGuard(cfg GuardConfig, logger *zap.Logger) *Guard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		verifier:     cfg.Verifier,
		extract:      cfg.Extract,
		loginPath:    cfg.LoginPath,
		landingPath:  cfg.LandingPath,
		returnTo:     cfg.ReturnTo,
		cookieSecure: cfg.CookieSecure,
		logger:       logger,
	}
}

// Resolve verifies the request's token and attaches the identity when valid.
func (g *Guard) Resolve(c *fiber.Ctx) Outcome {
	value, ok := g.extract(c)
	outcome := Resolve(c.UserContext(), g.verifier, value, ok)
	if outcome.Authenticated() {
		attachIdentity(c, outcome.Claims)
	} else if outcome.Err != nil {
		g.logger.Debug("identity verification failed", zap.String("path", c.Path()), zap.String("reason", outcome.Err.Error()))
	}
	return outcome
}

// RequireAuth rejects requests without a valid identity.
func (g *Guard) RequireAuth(style Style) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outcome := g.Resolve(c)
		if AuthPolicy(outcome) == Proceed {
			return c.Next()
		}
		if style == StylePage {
			if g.returnTo && c.Method() == fiber.MethodGet {
				RememberReturnTo(c, c.OriginalURL(), g.cookieSecure)
			}
			return c.Redirect(g.loginPath, fiber.StatusFound)
		}
		message := "Authentication required"
		if outcome.Err != nil {
			message = "Invalid or expired token"
		}
		return apperrors.NewUnauthenticated(message, g.loginPath)
	}
}

// RequireGuest rejects requests that are already authenticated.
func (g *Guard) RequireGuest(style Style) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outcome := g.Resolve(c)
		if GuestPolicy(outcome) == Proceed {
			return c.Next()
		}
		if style == StylePage {
			return c.Redirect(g.landingPath, fiber.StatusFound)
		}
		return apperrors.NewAlreadyAuthenticated(g.landingPath)
	}
}

// OptionalAuth attaches the identity when one verifies and always proceeds.
func (g *Guard) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		g.Resolve(c)
		return c.Next()
	}
}
