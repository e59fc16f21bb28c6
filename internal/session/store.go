// Package session implements the cookie variant: opaque session ids backed by
// server-side records in a TTL key-value store.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spec-kit/embed-login/internal/domain"
)

// Store persists session records with a time-to-live. Get returns
// auth.ErrNotFound for absent, expired or deleted records. Writes to the same
// id are last-writer-wins.
type Store interface {
	Put(ctx context.Context, record domain.SessionRecord, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

const keyPrefix = "session:"

// Key returns the storage key for a session id.
func Key(id string) string {
	return keyPrefix + id
}

// storedRecord is the persisted shape of a session record.
type storedRecord struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Picture   string `json:"picture,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

func encodeRecord(record domain.SessionRecord) ([]byte, error) {
	return json.Marshal(storedRecord{
		UserID:    record.Claims.SubjectID,
		Username:  record.Claims.Username,
		Name:      record.Claims.DisplayName,
		Picture:   record.Claims.AvatarURL,
		CreatedAt: record.CreatedAt.UnixMilli(),
		IssuedAt:  record.Claims.IssuedAt.UnixMilli(),
		ExpiresAt: record.Claims.ExpiresAt.UnixMilli(),
	})
}

func decodeRecord(id string, data []byte) (*domain.SessionRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &domain.SessionRecord{
		ID: id,
		Claims: domain.Claims{
			SubjectID:   stored.UserID,
			Username:    stored.Username,
			DisplayName: stored.Name,
			AvatarURL:   stored.Picture,
			IssuedAt:    time.UnixMilli(stored.IssuedAt).UTC(),
			ExpiresAt:   time.UnixMilli(stored.ExpiresAt).UTC(),
		},
		CreatedAt: time.UnixMilli(stored.CreatedAt).UTC(),
	}, nil
}
