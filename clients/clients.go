package clients

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Can keep secrets (server-side apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (CLIs, SPAs)
)

type Client struct {
	ID          string     `json:"id"`
	Type        ClientType `json:"type"`
	Description string     `json:"description"`
	Secret      string     `json:"-"`
	Scopes      []string   `json:"scopes"`
	// DirectAccessGrants enables the password grant for this client.
	DirectAccessGrants bool `json:"directAccessGrants"`
}

func (c *Client) IsPublic() bool {
	return c.Type == ClientTypePublic
}

// Authenticate checks the presented secret. Public clients need none.
func (c *Client) Authenticate(secret string) error {
	if c.IsPublic() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) != 1 {
		return errors.Wrapf(errors.ErrInvalidClient, "client %q", c.ID)
	}
	return nil
}

func (c *Client) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateScopes checks that every space separated scope is allowed.
func (c *Client) ValidateScopes(requestedScopes string) error {
	for _, scope := range strings.Fields(requestedScopes) {
		if !c.HasScope(scope) {
			return errors.Wrapf(errors.ErrInvalidScope, "scope %q", scope)
		}
	}
	return nil
}
