package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/clients"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyClient stores the authenticated *clients.Client
	ContextKeyClient ContextKey = "client"
	// ContextKeyToken stores the raw bearer token
	ContextKeyToken ContextKey = "token"
)

func userFromContext(ctx context.Context) *users.User {
	user, _ := ctx.Value(ContextKeyUser).(*users.User)
	return user
}

func claimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims
}

func clientFromContext(ctx context.Context) *clients.Client {
	client, _ := ctx.Value(ContextKeyClient).(*clients.Client)
	return client
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireRealm rejects requests for any realm other than the configured one.
func (s *Server) RequireRealm(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if realm := r.PathValue("realm"); realm != s.realm {
			writeAPIError(w, http.StatusNotFound, "not_found", "Realm does not exist")
			return
		}
		next(w, r)
	}
}

// RequireAuth verifies the bearer access token and loads its user. Every
// accepted request counts as activity on the token's session.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+s.realm+`"`)
				writeAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header")
				return
			}

			if s.consumeFailure(r.URL.Path) {
				writeAPIError(w, http.StatusUnauthorized, "unauthorized", "Token rejected")
				return
			}

			claims, err := s.inspector.Verify(raw)
			if err != nil {
				s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("bearer token rejected")
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+s.realm+`", error="invalid_token"`)
				writeAPIError(w, http.StatusUnauthorized, "unauthorized", tokenRejection(err))
				return
			}

			user, err := s.repos.Users.GetByID(claims.Subject)
			if err != nil || !user.Enabled {
				writeAPIError(w, http.StatusUnauthorized, "unauthorized", "User not found or disabled")
				return
			}

			if err := s.repos.Sessions.Touch(claims.SessionID, time.Now()); err != nil {
				s.log.Debug().Err(err).Str("sid", claims.SessionID).Msg("failed to touch session")
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyToken, raw)
			next(w, r.WithContext(ctx))
		}
	}
}

func tokenRejection(err error) string {
	switch {
	case errors.Is(err, errors.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, errors.ErrTokenRevoked):
		return "Token revoked"
	default:
		return "Invalid token"
	}
}

// RequireAdmin must be chained after RequireAuth.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !claims.HasRole(users.RoleAdmin) {
				writeAPIError(w, http.StatusForbidden, "forbidden", "Admin role required")
				return
			}
			next(w, r)
		}
	}
}

// RequireClientAuth is middleware that validates client credentials
// Supports both HTTP Basic Auth and POST body client_id/client_secret
func (s *Server) RequireClientAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				writeOAuthError(w, errors.Wrapf(errors.ErrInvalidRequest, "parse form: %v", err))
				return
			}
			clientID, clientSecret, ok := r.BasicAuth()
			if !ok {
				clientID = r.PostForm.Get("client_id")
				clientSecret = r.PostForm.Get("client_secret")
			}

			client, err := s.authenticateClient(clientID, clientSecret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+s.realm+`"`)
				writeOAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClient, client)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) authenticateClient(clientID, clientSecret string) (*clients.Client, error) {
	if clientID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidClient, "client authentication required")
	}
	client, err := s.repos.Clients.Get(clientID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidClient, "unknown client %q", clientID)
	}
	if err := client.Authenticate(clientSecret); err != nil {
		return nil, err
	}
	return client, nil
}
