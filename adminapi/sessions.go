package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

func (s *Service) MySessions(ctx context.Context) ([]UserSession, error) {
	return s.listSessions(ctx, "/user/sessions")
}

func (s *Service) UserSessions(ctx context.Context, userID string) ([]UserSession, error) {
	return s.listSessions(ctx, userPath(userID, "sessions"))
}

func (s *Service) RevokeMySession(ctx context.Context, sessionID string) (*SessionRevocationResponse, error) {
	return s.revoke(ctx, http.MethodDelete, "/user/sessions/"+url.PathEscape(sessionID))
}

func (s *Service) RevokeUserSession(ctx context.Context, userID, sessionID string) (*SessionRevocationResponse, error) {
	return s.revoke(ctx, http.MethodDelete, userPath(userID, "sessions", sessionID))
}

func (s *Service) RevokeAllMySessions(ctx context.Context) (*SessionRevocationResponse, error) {
	return s.revoke(ctx, http.MethodPost, "/user/sessions/revoke")
}

func (s *Service) RevokeAllUserSessions(ctx context.Context, userID string) (*SessionRevocationResponse, error) {
	return s.revoke(ctx, http.MethodPost, userPath(userID, "sessions", "revoke"))
}

func (s *Service) listSessions(ctx context.Context, path string) ([]UserSession, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	sessions, err := decodeList[UserSession](raw, s.sessionsShape)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("unexpected sessions response")
		return nil, err
	}
	return sessions, nil
}

func (s *Service) revoke(ctx context.Context, method, path string) (*SessionRevocationResponse, error) {
	var res SessionRevocationResponse
	var err error
	if method == http.MethodDelete {
		err = s.api.Delete(ctx, path, &res)
	} else {
		err = s.api.Post(ctx, path, nil, &res)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("path", path).Int("revoked", res.SessionsRevoked).Msg("sessions revoked")
	return &res, nil
}
