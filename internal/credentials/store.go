// Package credentials holds the static username/password table that backs login.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
)

var ErrMissingFields = errors.New("username and password are required")

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

const (
	minPasswordLen = 6
	maxPasswordLen = 100
)

// DefaultCredentials is the demo user table.
func DefaultCredentials() []domain.Credential {
	return []domain.Credential{
		{Username: "alice", Password: "password123", DisplayName: "Alice Johnson", AvatarURL: "https://i.pravatar.cc/150?img=1"},
		{Username: "bob", Password: "secret456", DisplayName: "Bob Smith", AvatarURL: "https://i.pravatar.cc/150?img=2"},
		{Username: "charlie", Password: "test789", DisplayName: "Charlie Brown", AvatarURL: "https://i.pravatar.cc/150?img=3"},
	}
}

// Source loads credentials once at startup.
type Source interface {
	LoadCredentials(ctx context.Context) ([]domain.Credential, error)
}

// Store is an immutable username-keyed credential table.
type Store struct {
	byUsername map[string]domain.Credential
}

// NewStore indexes creds by username. Duplicate usernames are rejected.
func NewStore(creds []domain.Credential) (*Store, error) {
	byUsername := make(map[string]domain.Credential, len(creds))
	for _, cred := range creds {
		if cred.Username == "" {
			return nil, errors.New("credential with empty username")
		}
		if _, dup := byUsername[cred.Username]; dup {
			return nil, fmt.Errorf("duplicate credential %q", cred.Username)
		}
		byUsername[cred.Username] = cred
	}
	return &Store{byUsername: byUsername}, nil
}

// Load builds a store from src.
func Load(ctx context.Context, src Source) (*Store, error) {
	creds, err := src.LoadCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(creds) == 0 {
		return nil, errors.New("credential source returned no users")
	}
	return NewStore(creds)
}

// Len returns the number of users.
func (s *Store) Len() int {
	return len(s.byUsername)
}

// ValidateInput checks the shape of login input before any lookup. Only
// missing fields are reported as such; a malformed username or password is
// indistinguishable from a wrong pair.
func ValidateInput(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}
	if !usernamePattern.MatchString(username) {
		return auth.ErrInvalidCredential
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return auth.ErrInvalidCredential
	}
	return nil
}

// Authenticate returns the credential for a matching username/password pair.
// Any mismatch yields auth.ErrInvalidCredential.
func (s *Store) Authenticate(username, password string) (domain.Credential, error) {
	if err := ValidateInput(username, password); err != nil {
		return domain.Credential{}, err
	}
	cred, ok := s.byUsername[username]
	if !ok {
		// Burn a comparison so unknown users cost the same as bad passwords.
		_ = auth.ComparePassword(username, password)
		return domain.Credential{}, auth.ErrInvalidCredential
	}
	if err := auth.ComparePassword(cred.Password, password); err != nil {
		return domain.Credential{}, auth.ErrInvalidCredential
	}
	return cred, nil
}
