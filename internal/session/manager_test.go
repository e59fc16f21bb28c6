package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/session"
)

var alice = domain.Credential{
	Username:    "alice",
	Password:    "password123",
	DisplayName: "Alice Johnson",
	AvatarURL:   "https://i.pravatar.cc/150?img=1",
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newManager(t *testing.T) (*session.Manager, *session.MemoryStore, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	// The store never expires records on its own here so that the manager's
	// expiry check is what the tests observe.
	store := session.NewMemoryStore(func() time.Time { return time.Time{} })
	return session.NewManager(store, 24*time.Hour, session.WithClock(c.Now)), store, c
}

func TestManager_IssueAndVerify(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, "alice", token.Claims.SubjectID)
	assert.Equal(t, 24*time.Hour, token.Claims.ExpiresAt.Sub(token.Claims.IssuedAt))

	claims, err := m.Verify(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.SubjectID)
	assert.Equal(t, "Alice Johnson", claims.DisplayName)
}

func TestManager_IssueGeneratesDistinctIDs(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := m.Issue(ctx, alice)
		require.NoError(t, err)
		require.False(t, seen[token.Value], "duplicate session id")
		seen[token.Value] = true
	}
}

func TestManager_VerifyUnknown(t *testing.T) {
	m, _, _ := newManager(t)
	_, err := m.Verify(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestManager_VerifyEmpty(t *testing.T) {
	m, _, _ := newManager(t)
	_, err := m.Verify(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrMalformed)
}

func TestManager_ExpiredSessionIsEvicted(t *testing.T) {
	m, store, c := newManager(t)
	ctx := context.Background()
	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	c.t = c.t.Add(24 * time.Hour)
	_, err = m.Verify(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrExpired)
	assert.Equal(t, 0, store.Len())

	_, err = m.Verify(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestManager_RevokeIsPermanent(t *testing.T) {
	m, _, c := newManager(t)
	ctx := context.Background()
	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token.Value))
	_, err = m.Verify(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	c.t = c.t.Add(time.Minute)
	_, err = m.Verify(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	_, err = m.Refresh(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestManager_Refresh(t *testing.T) {
	m, _, c := newManager(t)
	ctx := context.Background()
	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	refreshed, err := m.Refresh(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.Value, refreshed.Value)
	assert.Equal(t, token.Claims.SubjectID, refreshed.Claims.SubjectID)
	assert.True(t, refreshed.Claims.ExpiresAt.After(token.Claims.ExpiresAt))

	claims, err := m.Verify(ctx, token.Value)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Equal(refreshed.Claims.ExpiresAt))
}

func TestManager_RefreshSameInstantStillExtends(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	refreshed, err := m.Refresh(ctx, token.Value)
	require.NoError(t, err)
	assert.True(t, refreshed.Claims.ExpiresAt.After(token.Claims.ExpiresAt))
}

func TestManager_RefreshAfterExpiry(t *testing.T) {
	m, _, c := newManager(t)
	ctx := context.Background()
	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	c.t = c.t.Add(25 * time.Hour)
	_, err = m.Refresh(ctx, token.Value)
	assert.ErrorIs(t, err, auth.ErrExpired)
}
