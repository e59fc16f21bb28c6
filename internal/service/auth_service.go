package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/credentials"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/events"
	"github.com/spec-kit/embed-login/internal/observability"
	"github.com/spec-kit/embed-login/internal/vendor"
)

// ErrUnverifiedIdentity is returned when a vendor token is requested without
// a verified identity.
var ErrUnverifiedIdentity = errors.New("vendor token requires a verified identity")

// VendorTrader exchanges verified claims for a vendor chat token.
type VendorTrader interface {
	Trade(ctx context.Context, claims domain.Claims) (domain.VendorToken, error)
}

// AuthService coordinates login, logout, refresh, identity lookup and
// vendor token trading for both transport variants.
type AuthService struct {
	credentials *credentials.Store
	authorities map[domain.Variant]auth.Authority
	traders     map[domain.Variant]VendorTrader
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Credentials *credentials.Store
	Bearer      auth.Authority
	Sessions    auth.Authority
	// Trader serves the session variant, and the bearer variant unless
	// BearerTrader is set. It must not substitute mock tokens.
	Trader VendorTrader
	// BearerTrader may fall back to mock tokens when the vendor is unreachable.
	BearerTrader VendorTrader
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	authorities := make(map[domain.Variant]auth.Authority, 2)
	if deps.Bearer != nil {
		authorities[deps.Bearer.Variant()] = deps.Bearer
	}
	if deps.Sessions != nil {
		authorities[deps.Sessions.Variant()] = deps.Sessions
	}
	if deps.BearerTrader == nil {
		deps.BearerTrader = deps.Trader
	}
	traders := map[domain.Variant]VendorTrader{
		domain.VariantBearer:  deps.BearerTrader,
		domain.VariantSession: deps.Trader,
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &AuthService{
		credentials: deps.Credentials,
		authorities: authorities,
		traders:     traders,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Clock,
	}
}

// Authority exposes the token authority of a variant for middleware usage.
func (s *AuthService) Authority(variant domain.Variant) (auth.Authority, error) {
	a, ok := s.authorities[variant]
	if !ok {
		return nil, fmt.Errorf("no authority configured for %q", variant)
	}
	return a, nil
}

// Login checks the credential and issues a token (bearer) or a session id
// (session). Nothing is issued on failure.
func (s *AuthService) Login(ctx context.Context, variant domain.Variant, username, password string) (auth.Token, error) {
	authority, err := s.Authority(variant)
	if err != nil {
		return auth.Token{}, err
	}

	cred, err := s.credentials.Authenticate(username, password)
	if err != nil {
		s.publish(ctx, events.Event{
			Type:    events.EventLoginFailed,
			Variant: variant,
			Payload: events.LoginFailedPayload{Username: username, Reason: err.Error()},
		})
		return auth.Token{}, err
	}

	token, err := authority.Issue(ctx, cred)
	if err != nil {
		return auth.Token{}, fmt.Errorf("issue %s token: %w", variant, err)
	}
	s.publish(ctx, events.Event{Type: events.EventLoginSucceeded, Variant: variant, SubjectID: token.Claims.SubjectID})
	return token, nil
}

// Logout revokes value. For bearer tokens this is a no-op on the server.
func (s *AuthService) Logout(ctx context.Context, variant domain.Variant, value string) error {
	authority, err := s.Authority(variant)
	if err != nil {
		return err
	}
	subject := ""
	if claims, err := authority.Verify(ctx, value); err == nil {
		subject = claims.SubjectID
	}
	if err := authority.Revoke(ctx, value); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.EventLogout, Variant: variant, SubjectID: subject})
	return nil
}

// CurrentIdentity returns the claims behind value, or nil when it does not verify.
func (s *AuthService) CurrentIdentity(ctx context.Context, variant domain.Variant, value string) *domain.Claims {
	authority, err := s.Authority(variant)
	if err != nil || value == "" {
		return nil
	}
	claims, err := authority.Verify(ctx, value)
	if err != nil {
		return nil
	}
	return claims
}

// Refresh reissues a still valid token with a new expiry for the same subject.
func (s *AuthService) Refresh(ctx context.Context, variant domain.Variant, value string) (auth.Token, error) {
	authority, err := s.Authority(variant)
	if err != nil {
		return auth.Token{}, err
	}
	token, err := authority.Refresh(ctx, value)
	if err != nil {
		return auth.Token{}, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTokenRefreshed,
		Variant:   variant,
		SubjectID: token.Claims.SubjectID,
		Payload:   events.TokenRefreshedPayload{ExpiresAt: token.Claims.ExpiresAt},
	})
	return token, nil
}

// VendorToken trades a verified identity for a vendor chat token. Nothing is
// cached: every call makes exactly one outbound request. Only the bearer
// variant may receive a mock token.
func (s *AuthService) VendorToken(ctx context.Context, variant domain.Variant, identity *domain.Claims) (domain.VendorToken, error) {
	if identity == nil || identity.SubjectID == "" {
		return domain.VendorToken{}, ErrUnverifiedIdentity
	}
	if identity.ExpiredAt(s.now()) {
		return domain.VendorToken{}, auth.ErrExpired
	}
	trader, ok := s.traders[variant]
	if !ok || trader == nil {
		return domain.VendorToken{}, fmt.Errorf("no vendor trader configured for %q", variant)
	}

	token, err := trader.Trade(ctx, *identity)
	if err != nil {
		payload := events.VendorTradeFailedPayload{Message: err.Error()}
		var tradeErr *vendor.TradeError
		if errors.As(err, &tradeErr) {
			payload.StatusCode = tradeErr.StatusCode
		}
		s.metrics.RecordTrade("failed")
		s.publish(ctx, events.Event{Type: events.EventVendorTradeFailed, Variant: variant, SubjectID: identity.SubjectID, Payload: payload})
		return domain.VendorToken{}, err
	}

	if token.Mock {
		s.metrics.RecordTrade("mock")
	} else {
		s.metrics.RecordTrade("ok")
	}
	s.publish(ctx, events.Event{
		Type:      events.EventVendorTokenTraded,
		Variant:   variant,
		SubjectID: identity.SubjectID,
		Payload:   events.VendorTokenTradedPayload{Mock: token.Mock},
	})
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if event.ClientIP == "" {
		event.ClientIP = events.ClientIPFromContext(ctx)
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
