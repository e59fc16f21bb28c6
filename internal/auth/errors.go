package auth

import "errors"

// Verification failures. All of them mean "unauthenticated" to callers
// outside this package.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrNotFound         = errors.New("session not found")
)

// ErrInvalidCredential is returned at login for any username/password mismatch.
var ErrInvalidCredential = errors.New("invalid credential")

// IsVerificationFailure reports whether err is one of the verification failures.
func IsVerificationFailure(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrNotFound)
}
