package auth

import (
	"context"

	"github.com/spec-kit/embed-login/internal/domain"
)

// Outcome is the result of resolving the identity of one request.
type Outcome struct {
	Claims *domain.Claims
	// Err holds the verification failure, if one was attempted.
	Err error
}

// Authenticated reports whether a valid identity was found.
func (o Outcome) Authenticated() bool {
	return o.Claims != nil
}

// Resolve verifies value (which may be empty) into an Outcome. Verification
// failures never escape as errors.
func Resolve(ctx context.Context, v Verifier, value string, present bool) Outcome {
	if !present || value == "" {
		return Outcome{}
	}
	claims, err := v.Verify(ctx, value)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Claims: claims}
}

// Decision is what an access policy does with a request.
type Decision int

const (
	Proceed Decision = iota
	Reject
)

// Policy maps an Outcome to a Decision.
type Policy func(Outcome) Decision

// AuthPolicy rejects requests without a valid identity.
func AuthPolicy(o Outcome) Decision {
	if o.Authenticated() {
		return Proceed
	}
	return Reject
}

// GuestPolicy rejects requests that already carry a valid identity.
func GuestPolicy(o Outcome) Decision {
	if o.Authenticated() {
		return Reject
	}
	return Proceed
}

// OptionalPolicy always proceeds.
func OptionalPolicy(Outcome) Decision {
	return Proceed
}
