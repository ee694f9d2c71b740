package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/users"
)

const (
	defaultPageSize = 100
	maxBodyBytes    = 1 << 20
)

func toAdminUser(u *users.User) adminapi.User {
	return adminapi.User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Enabled:          u.Enabled,
		EmailVerified:    u.EmailVerified,
		CreatedTimestamp: u.CreatedAt.UnixMilli(),
	}
}

// AdminListUsers pages with Keycloak's first/max query parameters.
func (s *Server) AdminListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		first := queryInt(r, "first", 0)
		limit := queryInt(r, "max", defaultPageSize)

		list, err := s.repos.Users.List(first, limit)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list users")
			return
		}
		out := make([]adminapi.User, 0, len(list))
		for _, u := range list {
			out = append(out, toAdminUser(u))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"users":      out,
			"totalCount": s.repos.Users.Count(),
		})
	}
}

func (s *Server) AdminGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toAdminUser(user))
	}
}

func (s *Server) AdminUserRoles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		roles := make([]adminapi.Role, 0, len(user.Roles))
		for _, name := range user.Roles {
			if role, known := s.realmRole(name); known {
				roles = append(roles, role)
			}
		}
		writeJSON(w, http.StatusOK, roles)
	}
}

func (s *Server) AdminCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminapi.CreateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if problems := adminapi.ValidateUserData(req); len(problems) > 0 {
			writeAPIError(w, http.StatusBadRequest, "validation_failed", strings.Join(problems, "; "))
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeAPIError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		if !s.validRoles(w, req.Roles) {
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to hash password")
			return
		}

		now := time.Now()
		user := &users.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Roles:        req.Roles,
			Enabled:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			status, code := apiStatus(err)
			writeAPIError(w, status, code, "User with this username or email already exists")
			return
		}

		s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
		writeJSON(w, http.StatusCreated, adminapi.MutationResult{ID: user.ID, Message: "User created"})
	}
}

func (s *Server) AdminUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		var req adminapi.UpdateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Email != nil {
			user.Email = strings.TrimSpace(*req.Email)
		}
		if req.FirstName != nil {
			user.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Roles != nil {
			if !s.validRoles(w, req.Roles) {
				return
			}
			user.Roles = req.Roles
		}
		if req.Enabled != nil {
			user.Enabled = *req.Enabled
		}
		user.UpdatedAt = time.Now()

		if err := s.repos.Users.Upsert(user); err != nil {
			status, code := apiStatus(err)
			writeAPIError(w, status, code, err.Error())
			return
		}
		// A disabled account keeps no sessions
		if !user.Enabled {
			s.repos.Sessions.DeleteByUser(user.ID)
			s.refresh.RevokeUser(user.ID)
		}
		writeJSON(w, http.StatusOK, adminapi.MutationResult{ID: user.ID, Message: "User updated"})
	}
}

func (s *Server) AdminDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		if user.ID == userFromContext(r.Context()).ID {
			writeAPIError(w, http.StatusConflict, "conflict", "You cannot delete your own account")
			return
		}
		if err := s.repos.Users.Delete(user.ID); err != nil {
			status, code := apiStatus(err)
			writeAPIError(w, status, code, err.Error())
			return
		}
		s.repos.Sessions.DeleteByUser(user.ID)
		s.refresh.RevokeUser(user.ID)

		s.log.Info().Str("user_id", user.ID).Msg("user deleted")
		writeJSON(w, http.StatusOK, adminapi.MutationResult{ID: user.ID, Message: "User deleted"})
	}
}

func (s *Server) AdminUserSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		s.writeSessions(w, user.ID)
	}
}

func (s *Server) AdminRevokeUserSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		s.revokeSession(w, user.ID, r.PathValue("sid"))
	}
}

func (s *Server) AdminRevokeAllUserSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.pathUser(w, r)
		if !ok {
			return
		}
		s.revokeAllSessions(w, user.ID)
	}
}

func (s *Server) pathUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	user, err := s.repos.Users.GetByID(r.PathValue("id"))
	if err != nil {
		status, code := apiStatus(err)
		writeAPIError(w, status, code, "User not found")
		return nil, false
	}
	return user, true
}

func (s *Server) validRoles(w http.ResponseWriter, roles []string) bool {
	for _, name := range roles {
		if _, ok := s.realmRole(name); !ok {
			writeAPIError(w, http.StatusBadRequest, "validation_failed", "Unknown role: "+name)
			return false
		}
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out); err != nil {
		writeAPIError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
