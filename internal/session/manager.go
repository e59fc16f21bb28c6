package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
)

// Manager issues and resolves session ids. It implements auth.Authority for
// the cookie variant.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager builds a manager over store. Records live for ttl.
func NewManager(store Store, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	m := &Manager{store: store, ttl: ttl, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Variant implements auth.Authority.
func (m *Manager) Variant() domain.Variant {
	return domain.VariantSession
}

// TTL returns the session lifetime, which is also the cookie Max-Age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session record for a verified credential.
func (m *Manager) Issue(ctx context.Context, cred domain.Credential) (auth.Token, error) {
	now := m.now()
	record := domain.SessionRecord{
		ID:        m.newID(),
		Claims:    domain.NewClaims(cred, now, m.ttl),
		CreatedAt: now,
	}
	if err := m.store.Put(ctx, record, m.ttl); err != nil {
		return auth.Token{}, err
	}
	return auth.Token{Value: record.ID, Claims: record.Claims}, nil
}

// Verify looks the session up. Records past their expiry are evicted and
// reported as expired.
func (m *Manager) Verify(ctx context.Context, id string) (*domain.Claims, error) {
	if id == "" {
		return nil, auth.ErrMalformed
	}
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Claims.ExpiredAt(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, auth.ErrExpired
	}
	claims := record.Claims
	return &claims, nil
}

// Refresh extends a live session for the same subject. A concurrent Revoke
// may land between the read and the write; the store resolves that as
// last-writer-wins.
func (m *Manager) Refresh(ctx context.Context, id string) (auth.Token, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return auth.Token{}, err
	}
	now := m.now()
	if record.Claims.ExpiredAt(now) {
		_ = m.store.Delete(ctx, id)
		return auth.Token{}, auth.ErrExpired
	}

	renewed := record.Claims.Renewed(now, m.ttl)
	if !renewed.ExpiresAt.After(record.Claims.ExpiresAt) {
		renewed.ExpiresAt = record.Claims.ExpiresAt.Add(time.Millisecond)
	}
	record.Claims = renewed
	if err := m.store.Put(ctx, *record, renewed.ExpiresAt.Sub(now)); err != nil {
		return auth.Token{}, err
	}
	return auth.Token{Value: id, Claims: renewed}, nil
}

// Revoke deletes the session. Deleting an unknown id is not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, auth.ErrNotFound) {
		return err
	}
	return nil
}
