package domain

import "time"

// SessionRecord is the server-side state behind a session cookie.
type SessionRecord struct {
	ID        string
	Claims    Claims
	CreatedAt time.Time
}
