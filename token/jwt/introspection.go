package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
)

// TokenIntrospection is the RFC 7662 response. When Active is false the
// other fields are omitted.
type TokenIntrospection struct {
	Active    bool     `json:"active"`
	Sub       string   `json:"sub,omitempty"`
	Username  string   `json:"username,omitempty"`
	ClientID  string   `json:"client_id,omitempty"`
	Scope     string   `json:"scope,omitempty"`
	SessionID string   `json:"sid,omitempty"`
	TokenType string   `json:"token_type,omitempty"`
	Iss       string   `json:"iss,omitempty"`
	Exp       int64    `json:"exp,omitempty"`
	Iat       int64    `json:"iat,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// SessionChecker reports whether a backend session is still live.
type SessionChecker func(sessionID string) bool

// Inspector verifies access tokens minted by a Creator.
type Inspector struct {
	signer         keys.Signer
	issuer         string
	revokedChecker RevokedChecker
	sessionActive  SessionChecker
}

func NewInspector(signer keys.Signer, issuer string, revokedChecker RevokedChecker, sessionActive SessionChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		issuer:         issuer,
		revokedChecker: revokedChecker,
		sessionActive:  sessionActive,
	}
}

// Verify checks signature, issuer, expiry, token type and revocation of an
// access token and returns its claims.
func (i *Inspector) Verify(rawToken string) (*token.Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "empty token")
	}

	claims := &token.Claims{}
	_, err := jwtlib.ParseWithClaims(rawToken, claims, i.signer.VerificationKey,
		jwtlib.WithValidMethods([]string{keys.RS256}),
		jwtlib.WithIssuer(i.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if errors.Is(err, jwtlib.ErrTokenExpired) {
		return nil, errors.ErrTokenExpired
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}

	if claims.TokenType != TypeBearer {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "token type %q", claims.TokenType)
	}
	if claims.ID != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(claims.ID) {
		return nil, errors.ErrTokenRevoked
	}
	if claims.SessionID != "" && i.sessionActive != nil && !i.sessionActive(claims.SessionID) {
		return nil, errors.Wrapf(errors.ErrTokenRevoked, "session ended")
	}
	return claims, nil
}

// Introspect reports on any token without failing: an unusable token is
// simply inactive.
func (i *Inspector) Introspect(rawToken string) *TokenIntrospection {
	claims, err := i.Verify(rawToken)
	if err != nil {
		return &TokenIntrospection{Active: false}
	}

	res := &TokenIntrospection{
		Active:    true,
		Sub:       claims.Subject,
		Username:  claims.UserName(),
		ClientID:  claims.AuthorizedParty,
		Scope:     claims.Scope,
		SessionID: claims.SessionID,
		TokenType: claims.TokenType,
		Iss:       claims.Issuer,
		Exp:       claims.Expiry().Unix(),
		Roles:     claims.Roles(),
	}
	if claims.IssuedAt != nil {
		res.Iat = claims.IssuedAt.Unix()
	}
	return res
}

// ParseAndExtractJTI checks the signature of a token, ignoring expiry, and
// returns its jti and expiry for revocation.
func (i *Inspector) ParseAndExtractJTI(rawToken string) (jti string, exp time.Time, err error) {
	claims := &token.Claims{}
	parser := jwtlib.NewParser(jwtlib.WithValidMethods([]string{keys.RS256}), jwtlib.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(rawToken, claims, i.signer.VerificationKey); err != nil {
		return "", time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}
	if claims.ID == "" {
		return "", time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "token missing jti claim")
	}
	if claims.ExpiresAt == nil {
		return "", time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "token missing exp claim")
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}
