// Package sessiontest holds a conformance suite every session.Store backend must pass.
package sessiontest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
	"github.com/spec-kit/embed-login/internal/session"
)

// StoreFactory creates a fresh, empty store for one test.
type StoreFactory func(t *testing.T) session.Store

// RunStoreTests runs the store suite against the backend built by factory.
func RunStoreTests(t *testing.T, factory StoreFactory) {
	t.Run("PutThenGet", func(t *testing.T) { testPutThenGet(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("DeleteIsTerminal", func(t *testing.T) { testDeleteIsTerminal(t, factory) })
	t.Run("DeleteMissing", func(t *testing.T) { testDeleteMissing(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("RejectsNonPositiveTTL", func(t *testing.T) { testRejectsNonPositiveTTL(t, factory) })
	t.Run("ConcurrentDistinctIDs", func(t *testing.T) { testConcurrentDistinctIDs(t, factory) })
}

func record(id, user string) domain.SessionRecord {
	now := time.UnixMilli(time.Now().UnixMilli())
	return domain.SessionRecord{
		ID: id,
		Claims: domain.Claims{
			SubjectID:   user,
			Username:    user,
			DisplayName: "Test " + user,
			AvatarURL:   "https://i.pravatar.cc/150?img=9",
			IssuedAt:    now,
			ExpiresAt:   now.Add(24 * time.Hour),
		},
		CreatedAt: now,
	}
}

func uniqueID(t *testing.T, suffix string) string {
	return fmt.Sprintf("sessiontest-%d-%s", time.Now().UnixNano(), suffix)
}

func testPutThenGet(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := context.Background()
	rec := record(uniqueID(t, "a"), "alice")

	require.NoError(t, store.Put(ctx, rec, time.Hour))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Claims.SubjectID, got.Claims.SubjectID)
	assert.Equal(t, rec.Claims.DisplayName, got.Claims.DisplayName)
	assert.Equal(t, rec.Claims.AvatarURL, got.Claims.AvatarURL)
	assert.True(t, rec.Claims.ExpiresAt.Equal(got.Claims.ExpiresAt))
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func testGetMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)
	_, err := store.Get(context.Background(), uniqueID(t, "missing"))
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func testDeleteIsTerminal(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := context.Background()
	rec := record(uniqueID(t, "d"), "bob")
	require.NoError(t, store.Put(ctx, rec, time.Hour))

	require.NoError(t, store.Delete(ctx, rec.ID))
	_, err := store.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func testDeleteMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)
	assert.NoError(t, store.Delete(context.Background(), uniqueID(t, "never")))
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := context.Background()
	rec := record(uniqueID(t, "o"), "charlie")
	require.NoError(t, store.Put(ctx, rec, time.Hour))

	rec.Claims.ExpiresAt = rec.Claims.ExpiresAt.Add(time.Hour)
	require.NoError(t, store.Put(ctx, rec, 2*time.Hour))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, rec.Claims.ExpiresAt.Equal(got.Claims.ExpiresAt))
}

func testRejectsNonPositiveTTL(t *testing.T, factory StoreFactory) {
	store := factory(t)
	assert.Error(t, store.Put(context.Background(), record(uniqueID(t, "ttl"), "alice"), 0))
}

func testConcurrentDistinctIDs(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := context.Background()

	const n = 32
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uniqueID(t, fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := record(ids[i], fmt.Sprintf("user%d", i))
			assert.NoError(t, store.Put(ctx, rec, time.Hour))
			got, err := store.Get(ctx, ids[i])
			if assert.NoError(t, err) {
				assert.Equal(t, rec.Claims.SubjectID, got.Claims.SubjectID)
			}
		}(i)
	}
	wg.Wait()
}
