package domain

// VendorToken is the chat token obtained for one subject. Mock tokens are
// produced only by the offline fallback and are never real vendor tokens.
type VendorToken struct {
	Value     string
	SubjectID string
	Mock      bool
}
