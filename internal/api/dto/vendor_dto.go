package dto

import "time"

// VendorTokenResponse carries a traded chat token. Mock is true only for
// the offline fallback token.
type VendorTokenResponse struct {
	JWT  string        `json:"jwt"`
	Mock bool          `json:"mock"`
	User *UserResponse `json:"user"`
}

// ReleaseResponse describes the embed widget to load.
type ReleaseResponse struct {
	ReleaseID      string `json:"releaseId"`
	EmbedScriptURL string `json:"embedScriptUrl"`
}

// DebugTokensResponse reports what the server sees for the caller.
type DebugTokensResponse struct {
	CurrentUser  *UserResponse `json:"currentUser"`
	TokenPresent bool          `json:"tokenPresent"`
	Timestamp    time.Time     `json:"timestamp"`
}

// ValidateRequest asks the vendor to check an embed token.
type ValidateRequest struct {
	JWT    string `json:"jwt"`
	Origin string `json:"origin"`
}
