package domain

import "time"

// Variant identifies which transport carries an identity.
type Variant string

const (
	VariantBearer  Variant = "bearer"
	VariantSession Variant = "session"
)

// Claims is the identity bound to a token or a session record.
type Claims struct {
	SubjectID   string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"name"`
	AvatarURL   string    `json:"picture,omitempty"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewClaims builds claims for a credential valid for ttl starting at now.
func NewClaims(cred Credential, now time.Time, ttl time.Duration) Claims {
	return Claims{
		SubjectID:   cred.SubjectID(),
		Username:    cred.Username,
		DisplayName: cred.DisplayName,
		AvatarURL:   cred.AvatarURL,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

// ExpiredAt reports whether the claims are no longer valid at t.
func (c Claims) ExpiredAt(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}

// Renewed returns a copy with a fresh validity window for the same subject.
func (c Claims) Renewed(now time.Time, ttl time.Duration) Claims {
	c.IssuedAt = now
	c.ExpiresAt = now.Add(ttl)
	return c
}
