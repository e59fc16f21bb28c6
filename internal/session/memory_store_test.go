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
	"github.com/spec-kit/embed-login/internal/session/sessiontest"
)

func TestMemoryStore(t *testing.T) {
	sessiontest.RunStoreTests(t, func(t *testing.T) session.Store {
		return session.NewMemoryStore(nil)
	})
}

func TestMemoryStore_EvictsExpiredOnRead(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.SessionRecord{ID: "s1", CreatedAt: now}, time.Minute))
	require.Equal(t, 1, store.Len())

	now = now.Add(time.Minute)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, auth.ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SweepsUnreadExpiredRecords(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	for _, id := range []string{"abandoned-1", "abandoned-2"} {
		require.NoError(t, store.Put(ctx, domain.SessionRecord{ID: id, CreatedAt: now}, 30*time.Second))
	}
	require.NoError(t, store.Put(ctx, domain.SessionRecord{ID: "live", CreatedAt: now}, time.Hour))

	// Inside the sweep interval nothing is scanned.
	now = now.Add(45 * time.Second)
	require.NoError(t, store.Put(ctx, domain.SessionRecord{ID: "s2", CreatedAt: now}, time.Hour))
	assert.Equal(t, 4, store.Len())

	// Past it, the next write drops records nobody read back.
	now = now.Add(time.Minute)
	require.NoError(t, store.Put(ctx, domain.SessionRecord{ID: "s3", CreatedAt: now}, time.Hour))
	assert.Equal(t, 3, store.Len())

	_, err := store.Get(ctx, "live")
	assert.NoError(t, err)
}
