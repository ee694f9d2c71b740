package token

// Credential is the token triple issued by the identity provider. It is
// replaced as a whole on login and refresh, never field by field.
type Credential struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// Complete reports whether all three tokens are present. Only complete
// credentials are adopted or persisted.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.IDToken != ""
}

// IsZero reports whether no token is set.
func (c Credential) IsZero() bool {
	return c == Credential{}
}
