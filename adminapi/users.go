package adminapi

import (
	"context"
	"encoding/json"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// Realm role names used by the dashboard.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

func userPath(id string, rest ...string) string {
	p := "/admin/users/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/admin/users", &raw); err != nil {
		return nil, err
	}
	users, err := decodeList[User](raw, s.usersShape)
	if err != nil {
		s.log.Warn().Err(err).Msg("unexpected users response")
		return nil, err
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.api.Get(ctx, userPath(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserRoles(ctx context.Context, id string) ([]Role, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, userPath(id, "roles"), &raw); err != nil {
		return nil, err
	}
	roles, err := decodeList[Role](raw, s.rolesShape)
	if err != nil {
		s.log.Warn().Err(err).Str("user", id).Msg("unexpected roles response")
		return nil, err
	}
	return roles, nil
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*MutationResult, error) {
	var res MutationResult
	if err := s.api.Post(ctx, "/admin/users", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*MutationResult, error) {
	var res MutationResult
	if err := s.api.Put(ctx, userPath(id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (*MutationResult, error) {
	var res MutationResult
	if err := s.api.Delete(ctx, userPath(id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UserFullDetails fetches a user with their roles and sessions in parallel.
// The first failure cancels the other calls.
func (s *Service) UserFullDetails(ctx context.Context, id string) (*UserDetails, error) {
	details := &UserDetails{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.GetUser(gctx, id)
		details.User = user
		return err
	})
	g.Go(func() error {
		roles, err := s.GetUserRoles(gctx, id)
		details.Roles = roles
		return err
	})
	g.Go(func() error {
		sessions, err := s.UserSessions(gctx, id)
		details.Sessions = sessions
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
