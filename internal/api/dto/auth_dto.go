package dto

import (
	"time"

	"github.com/spec-kit/embed-login/internal/domain"
)

// LoginRequest payload for login. Form fields use the same names.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// UserResponse is the public view of an identity.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
}

// NewUserResponse maps claims to the public view. Nil claims map to nil.
func NewUserResponse(claims *domain.Claims) *UserResponse {
	if claims == nil {
		return nil
	}
	return &UserResponse{
		ID:       claims.SubjectID,
		Username: claims.Username,
		Name:     claims.DisplayName,
		Picture:  claims.AvatarURL,
	}
}

// AuthResponse standard response for bearer login and refresh.
type AuthResponse struct {
	Success   bool          `json:"success"`
	User      *UserResponse `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Message   string        `json:"message"`
}

// AuthStatusResponse reports whether the request carried a valid identity.
type AuthStatusResponse struct {
	User          *UserResponse `json:"user"`
	Authenticated bool          `json:"authenticated"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MeResponse wraps the current user.
type MeResponse struct {
	User *UserResponse `json:"user"`
}
