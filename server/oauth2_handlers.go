package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/clients"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/oauth2"
	"github.com/jrsteele09/kubeatlas-console/sessions"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/jrsteele09/kubeatlas-console/users"
)

const contentTypeJSON = "application/json; charset=utf-8"

// WellKnownOpenIDConfig serves the OIDC discovery document
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"issuer":                 s.issuer,
			"token_endpoint":         s.issuer + tokenEndpoint,
			"introspection_endpoint": s.issuer + introspectEndpoint,
			"revocation_endpoint":    s.issuer + revokeEndpoint,
			"userinfo_endpoint":      s.issuer + userInfoEndpoint,
			"end_session_endpoint":   s.issuer + logoutEndpoint,
			"jwks_uri":               s.issuer + certsEndpoint,

			"grant_types_supported": []string{
				string(oauth2.PasswordGrant),
				string(oauth2.RefreshTokenGrant),
			},
			"response_types_supported":              []string{"token"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{keys.RS256},
			"scopes_supported": []string{
				oauth2.ScopeOpenID,
				oauth2.ScopeProfile,
				oauth2.ScopeEmail,
				oauth2.ScopeRoles,
			},
			"token_endpoint_auth_methods_supported": []string{"client_secret_post", "client_secret_basic"},
			"claims_supported": []string{
				"sub", "iss", "preferred_username", "email", "email_verified",
				"name", "given_name", "family_name", "realm_access", "sid",
			},
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, resp)
	}
}

// JWKS returns the JSON Web Key Set used to validate tokens
func (s *Server) JWKS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, s.signer.JWKS())
	}
}

// Token runs the password and refresh_token grants.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := oauth2.ParseTokenRequest(r)
		if err != nil {
			writeOAuthError(w, err)
			return
		}

		client, err := s.authenticateClient(req.ClientID, req.ClientSecret)
		if err != nil {
			s.log.Info().Str("client_id", req.ClientID).Msg("client authentication failed")
			writeOAuthError(w, err)
			return
		}

		var resp *oauth2.TokenResponse
		switch req.GrantType {
		case oauth2.PasswordGrant:
			resp, err = s.passwordGrant(r, client, req)
		case oauth2.RefreshTokenGrant:
			resp, err = s.refreshGrant(client, req)
		}
		if err != nil {
			s.log.Info().Err(err).Str("grant_type", string(req.GrantType)).Str("client_id", client.ID).Msg("grant rejected")
			writeOAuthError(w, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) passwordGrant(r *http.Request, client *clients.Client, req *oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	if !client.DirectAccessGrants {
		return nil, errors.Wrapf(oauth2.ErrUnauthorizedClient, "client %q", client.ID)
	}
	if err := client.ValidateScopes(req.Scope); err != nil {
		return nil, err
	}

	user, err := s.lookupLogin(req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		return nil, errors.Wrapf(errors.ErrInvalidCredentials, "Invalid user credentials")
	}
	if !user.Enabled {
		return nil, errors.Wrapf(errors.ErrUserDisabled, "Account disabled")
	}

	now := time.Now()
	session := &sessions.Session{
		UserID:     user.ID,
		Username:   user.Username,
		ClientID:   client.ID,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
		Start:      now,
		LastAccess: now,
	}
	if err := s.repos.Sessions.Create(session); err != nil {
		return nil, errors.Wrapf(err, "create session")
	}
	if err := s.repos.Users.SetLastLogin(user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	s.log.Info().Str("username", user.Username).Str("sid", session.ID).Msg("password grant issued")
	return s.issueTokens(user, client.ID, session.ID, grantScope(req.Scope), "")
}

func (s *Server) refreshGrant(client *clients.Client, req *oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	stored, next, err := s.refresh.Rotate(req.RefreshToken, client.ID)
	if err != nil {
		return nil, err
	}
	if !s.sessionActive(stored.SessionID) {
		s.refresh.RevokeSession(stored.SessionID)
		return nil, errors.Wrapf(errors.ErrInvalidRefreshToken, "Session not active")
	}

	user, err := s.repos.Users.GetByID(stored.UserID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "User not found")
	}
	if !user.Enabled {
		return nil, errors.Wrapf(errors.ErrUserDisabled, "Account disabled")
	}
	if err := s.repos.Sessions.Touch(stored.SessionID, time.Now()); err != nil {
		s.log.Warn().Err(err).Str("session_id", stored.SessionID).Msg("failed to touch session on refresh")
	}

	return s.issueTokens(user, client.ID, stored.SessionID, stored.Scope, next)
}

// issueTokens mints the access and ID tokens. A refresh token is created
// unless the caller already rotated one.
func (s *Server) issueTokens(user *users.User, clientID, sessionID, scope, refreshToken string) (*oauth2.TokenResponse, error) {
	accessToken, err := s.creator.CreateAccessToken(user, clientID, sessionID, scope)
	if err != nil {
		return nil, err
	}
	idToken, err := s.creator.CreateIDToken(user, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		if refreshToken, err = s.refresh.Create(clientID, user.ID, sessionID, scope); err != nil {
			return nil, err
		}
	}

	return &oauth2.TokenResponse{
		AccessToken:      &accessToken,
		IdToken:          &idToken,
		RefreshToken:     &refreshToken,
		TokenType:        oauth2.TokenTypeBearer,
		ExpiresIn:        int(s.creator.AccessTokenTTL().Seconds()),
		RefreshExpiresIn: int(s.config.GetDefaultRefreshTokenExpiry().Seconds()),
		Scope:            scope,
	}, nil
}

func grantScope(requested string) string {
	if requested == "" {
		return oauth2.DefaultScopes
	}
	return requested
}

func (s *Server) lookupLogin(login string) (*users.User, error) {
	if strings.Contains(login, "@") {
		return s.repos.Users.GetByEmail(login)
	}
	return s.repos.Users.GetByUsername(login)
}

// Introspect implements RFC 7662. Unknown or dead tokens are simply inactive.
func (s *Server) Introspect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.inspector.Introspect(r.PostForm.Get("token")))
	}
}

// Revoke implements RFC 7009. It answers 200 whether or not the token was
// known.
func (s *Server) Revoke() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PostForm.Get("token")
		if raw == "" {
			writeOAuthError(w, errors.Wrapf(errors.ErrInvalidRequest, "token is required"))
			return
		}

		client := clientFromContext(r.Context())
		if r.PostForm.Get("token_type_hint") == "refresh_token" || strings.Count(raw, ".") != 2 {
			if stored, err := s.refresh.Get(raw); err == nil && stored.ClientID == client.ID {
				if err := s.refresh.Delete(raw); err != nil {
					s.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to revoke refresh token")
				}
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		if jti, exp, err := s.inspector.ParseAndExtractJTI(raw); err == nil {
			if err := s.repos.Revoked.Revoke(jti, exp); err != nil {
				s.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to revoke access token")
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// Logout ends the session behind a refresh token, which also invalidates
// every access token minted for it.
func (s *Server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, err := s.refresh.Get(r.PostForm.Get("refresh_token"))
		if err != nil || stored.ClientID != clientFromContext(r.Context()).ID {
			writeOAuthError(w, errors.Wrapf(errors.ErrInvalidRefreshToken, "Invalid refresh token"))
			return
		}
		s.endSession(stored.SessionID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// UserInfo returns the standard claims of the token's user.
func (s *Server) UserInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		info := map[string]any{
			"sub":                user.ID,
			"preferred_username": user.Username,
			"email":              user.Email,
			"email_verified":     user.EmailVerified,
		}
		if user.FirstName != "" || user.LastName != "" {
			info["name"] = user.DisplayName()
			info["given_name"] = user.FirstName
			info["family_name"] = user.LastName
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		})
	}
}

// endSession drops a session and its refresh tokens.
func (s *Server) endSession(sessionID string) {
	if err := s.repos.Sessions.Delete(sessionID); err != nil && !errors.Is(err, errors.ErrSessionNotFound) {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
	}
	s.refresh.RevokeSession(sessionID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOAuthError(w http.ResponseWriter, err error) {
	writeJSON(w, oauth2.ErrorStatus(err), oauth2.NewErrorResponse(err))
}

// writeAPIError writes the {"error","message"} body used by /api/v1.
func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
