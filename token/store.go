package token

// Store persists a Credential across process restarts.
type Store interface {
	// Load returns errors.ErrNotFound when nothing is stored and
	// errors.ErrIncompleteCredential when only some keys are present.
	Load() (Credential, error)
	Save(cred Credential) error
	Clear() error
}

// StorageKeys are the three keys a credential is persisted under.
type StorageKeys struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// KeysFor returns the keys for an application prefix, e.g. kubeatlas_token.
func KeysFor(app string) StorageKeys {
	return StorageKeys{
		AccessToken:  app + "_token",
		RefreshToken: app + "_refresh_token",
		IDToken:      app + "_id_token",
	}
}

// Values flattens a credential into its key/value layout.
func (k StorageKeys) Values(c Credential) map[string]string {
	return map[string]string{
		k.AccessToken:  c.AccessToken,
		k.RefreshToken: c.RefreshToken,
		k.IDToken:      c.IDToken,
	}
}

// Credential rebuilds a credential from its key/value layout.
func (k StorageKeys) Credential(values map[string]string) Credential {
	return Credential{
		AccessToken:  values[k.AccessToken],
		RefreshToken: values[k.RefreshToken],
		IDToken:      values[k.IDToken],
	}
}
