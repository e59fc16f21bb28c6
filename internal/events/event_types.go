package events

import (
	"time"

	"github.com/spec-kit/embed-login/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventLogout            EventType = "logout"
	EventTokenRefreshed    EventType = "token_refreshed"
	EventVendorTokenTraded EventType = "vendor_token_traded"
	EventVendorTradeFailed EventType = "vendor_trade_failed"
)

// Event represents an auth lifecycle event. Payloads never carry secrets.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Variant   domain.Variant `json:"variant"`
	SubjectID string         `json:"subject_id,omitempty"`
	ClientIP  string         `json:"client_ip,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   interface{}    `json:"payload,omitempty"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// TokenRefreshedPayload payload.
type TokenRefreshedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// VendorTokenTradedPayload payload.
type VendorTokenTradedPayload struct {
	Mock bool `json:"mock"`
}

// VendorTradeFailedPayload payload.
type VendorTradeFailedPayload struct {
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}
