package domain

// Credential is one entry of the static user table. Password is an opaque
// secret: plaintext or a bcrypt hash.
type Credential struct {
	Username    string
	Password    string
	DisplayName string
	AvatarURL   string
}

// SubjectID is the stable identity key derived from a credential.
func (c Credential) SubjectID() string {
	return c.Username
}
