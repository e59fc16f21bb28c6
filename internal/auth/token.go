package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/embed-login/internal/domain"
)

// TokenManager issues and validates self-contained HS256 bearer tokens.
// The server keeps no state for them.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) { tm.now = now }
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Variant implements Authority.
func (tm *TokenManager) Variant() domain.Variant {
	return domain.VariantBearer
}

// Issue signs a token for an already verified credential.
func (tm *TokenManager) Issue(_ context.Context, cred domain.Credential) (Token, error) {
	claims := domain.NewClaims(cred, tm.clock(), tm.ttl)
	return tm.sign(claims)
}

// Refresh re-signs a still valid token with a new validity window.
func (tm *TokenManager) Refresh(ctx context.Context, value string) (Token, error) {
	claims, err := tm.Verify(ctx, value)
	if err != nil {
		return Token{}, err
	}
	return tm.RefreshClaims(*claims)
}

// RefreshClaims reissues claims for the same subject. The new expiry is
// strictly later than the old one.
func (tm *TokenManager) RefreshClaims(existing domain.Claims) (Token, error) {
	now := tm.clock()
	if existing.ExpiredAt(now) {
		return Token{}, ErrExpired
	}
	renewed := existing.Renewed(now, tm.ttl)
	if !renewed.ExpiresAt.After(existing.ExpiresAt) {
		renewed.ExpiresAt = existing.ExpiresAt.Add(time.Second)
	}
	return tm.sign(renewed)
}

// Revoke is a no-op: bearer tokens are discarded by the client.
func (tm *TokenManager) Revoke(context.Context, string) error {
	return nil
}

// Verify validates structure, signature and expiry and returns the claims.
func (tm *TokenManager) Verify(_ context.Context, value string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.UserID == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing identity claims", ErrMalformed)
	}

	out := domain.Claims{
		SubjectID:   claims.UserID,
		Username:    claims.Username,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
		IssuedAt:    claims.IssuedAt.Time.UTC(),
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}
	return &out, nil
}

func (tm *TokenManager) sign(claims domain.Claims) (Token, error) {
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return Token{}, errors.New("token expiry must be after issue time")
	}
	payload := &Claims{
		ID:       claims.SubjectID,
		UserID:   claims.SubjectID,
		Username: claims.Username,
		Name:     claims.DisplayName,
		Picture:  claims.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: tokenString, Claims: claims}, nil
}

// clock returns the current time at the one-second resolution tokens carry,
// so issued claims compare equal to verified ones.
func (tm *TokenManager) clock() time.Time {
	return tm.now().UTC().Truncate(time.Second)
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
