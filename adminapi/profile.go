package adminapi

import (
	"context"
	"slices"
)

func (s *Service) Profile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := s.api.Get(ctx, "/user/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) Roles(ctx context.Context) (*UserRoles, error) {
	var roles UserRoles
	if err := s.api.Get(ctx, "/user/roles", &roles); err != nil {
		return nil, err
	}
	return &roles, nil
}

// AuthUser returns the user bound to the current token.
func (s *Service) AuthUser(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := s.api.Get(ctx, "/auth/user", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) ValidateToken(ctx context.Context) (*TokenValidation, error) {
	var res TokenValidation
	if err := s.api.Post(ctx, "/auth/validate", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckAdminRights reports whether the current user holds the admin role.
func (s *Service) CheckAdminRights(ctx context.Context) (bool, error) {
	roles, err := s.Roles(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsAdmin || slices.Contains(roles.Roles, RoleAdmin), nil
}
