package auth

import (
	"context"

	"github.com/spec-kit/embed-login/internal/domain"
)

// Token is an issued identity artifact: a signed bearer token or an opaque
// session id, together with the claims it stands for.
type Token struct {
	Value  string
	Claims domain.Claims
}

// Verifier resolves a token value to its claims.
type Verifier interface {
	Verify(ctx context.Context, value string) (*domain.Claims, error)
}

// Authority issues, verifies, refreshes and revokes identity tokens for one
// transport variant.
type Authority interface {
	Verifier
	Issue(ctx context.Context, cred domain.Credential) (Token, error)
	Refresh(ctx context.Context, value string) (Token, error)
	Revoke(ctx context.Context, value string) error
	Variant() domain.Variant
}
