package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/sessions"
	"github.com/jrsteele09/kubeatlas-console/users"
)

func toProfile(u *users.User) adminapi.UserProfile {
	return adminapi.UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     append([]string{}, u.Roles...),
		IsAdmin:   u.HasRole(users.RoleAdmin),
		IsUser:    u.HasRole(users.RoleUser),
		IsGuest:   u.HasRole(users.RoleGuest),
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserSession(s *sessions.Session) adminapi.UserSession {
	ua := adminapi.ParseUserAgent(s.UserAgent)
	return adminapi.UserSession{
		ID:         s.ID,
		UserID:     s.UserID,
		Username:   s.Username,
		IPAddress:  s.IPAddress,
		Start:      s.Start.UnixMilli(),
		LastAccess: s.LastAccess.UnixMilli(),
		Clients:    map[string]string{s.ClientID: s.ClientID},
		UserAgent:  s.UserAgent,
		Browser:    ua.Browser,
		OS:         ua.OS,
	}
}

func (s *Server) UserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toProfile(userFromContext(r.Context())))
	}
}

func (s *Server) UserRoles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		writeJSON(w, http.StatusOK, adminapi.UserRoles{
			Roles:   append([]string{}, user.Roles...),
			IsAdmin: user.HasRole(users.RoleAdmin),
			IsUser:  user.HasRole(users.RoleUser),
			IsGuest: user.HasRole(users.RoleGuest),
		})
	}
}

// ValidateToken only runs once RequireAuth has accepted the token.
func (s *Server) ValidateToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := toProfile(userFromContext(r.Context()))
		writeJSON(w, http.StatusOK, adminapi.TokenValidation{Valid: true, User: &profile})
	}
}

func (s *Server) MySessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeSessions(w, userFromContext(r.Context()).ID)
	}
}

func (s *Server) RevokeMySession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.revokeSession(w, userFromContext(r.Context()).ID, r.PathValue("sid"))
	}
}

func (s *Server) RevokeAllMySessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.revokeAllSessions(w, userFromContext(r.Context()).ID)
	}
}

func (s *Server) writeSessions(w http.ResponseWriter, userID string) {
	list, err := s.repos.Sessions.ListByUser(userID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list sessions")
		return
	}
	out := make([]adminapi.UserSession, 0, len(list))
	for _, session := range list {
		out = append(out, toUserSession(session))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// revokeSession only ends a session that belongs to userID.
func (s *Server) revokeSession(w http.ResponseWriter, userID, sessionID string) {
	session, err := s.repos.Sessions.Get(sessionID)
	if err != nil || session.UserID != userID {
		writeAPIError(w, http.StatusNotFound, "not_found", "Session not found")
		return
	}
	s.endSession(session.ID)
	s.log.Info().Str("user_id", userID).Str("sid", session.ID).Msg("session revoked")
	writeJSON(w, http.StatusOK, adminapi.SessionRevocationResponse{
		Success:         true,
		Message:         "Session revoked",
		SessionsRevoked: 1,
	})
}

func (s *Server) revokeAllSessions(w http.ResponseWriter, userID string) {
	n := s.repos.Sessions.DeleteByUser(userID)
	s.refresh.RevokeUser(userID)
	s.log.Info().Str("user_id", userID).Int("count", n).Msg("all sessions revoked")
	writeJSON(w, http.StatusOK, adminapi.SessionRevocationResponse{
		Success:         true,
		Message:         fmt.Sprintf("%d session(s) revoked", n),
		SessionsRevoked: n,
	})
}

// Statistics reports live counts in the dashboard envelope.
func (s *Server) Statistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := adminapi.StatisticsResponse{
			TotalUsers: adminapi.StatItem{
				Value:        float64(s.repos.Users.Count()),
				ChangePeriod: "since last month",
			},
			ActiveSessions: adminapi.StatItem{
				Value:        float64(s.repos.Sessions.Count()),
				ChangePeriod: "since last hour",
			},
			SystemStatus: adminapi.SystemStatus{
				Percentage: 100,
				Status:     "All systems operational",
				Details: []adminapi.ServiceStatus{
					{Name: "Identity provider", Status: adminapi.StatusOperational, UptimePercentage: 100},
					{Name: "Backend API", Status: adminapi.StatusOperational, UptimePercentage: 100},
				},
			},
		}
		writeJSON(w, http.StatusOK, adminapi.APIResponse[adminapi.StatisticsResponse]{Success: true, Data: &stats})
	}
}

// apiStatus maps repository errors onto /api/v1 responses.
func apiStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrUserNotFound), errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
