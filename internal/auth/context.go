package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-login/internal/domain"
)

const identityKey = "auth_identity"

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying the verified claims.
func WithIdentity(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// IdentityFromContext returns the claims attached by the auth middleware, or nil.
func IdentityFromContext(ctx context.Context) *domain.Claims {
	claims, _ := ctx.Value(contextKey{}).(*domain.Claims)
	return claims
}

// IdentityFromFiber retrieves the identity attached to the request, if any.
func IdentityFromFiber(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(identityKey).(*domain.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func attachIdentity(c *fiber.Ctx, claims *domain.Claims) {
	c.Locals(identityKey, claims)
	c.SetUserContext(WithIdentity(c.UserContext(), claims))
}
