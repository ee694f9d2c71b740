package server

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/clients"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/oauth2"
	"github.com/jrsteele09/kubeatlas-console/users"
)

const (
	DefaultAdminUsername = "admin-service"
	DefaultUserUsername  = "demo-user"
)

var realmRoleDescriptions = map[string]string{
	users.RoleAdmin: "Manage users and sessions",
	users.RoleUser:  "Use the dashboard",
	users.RoleGuest: "Read-only access",
}

// realmRole describes a realm role. Ids are stable for a given issuer.
func (s *Server) realmRole(name string) (adminapi.Role, bool) {
	description, ok := realmRoleDescriptions[name]
	if !ok {
		return adminapi.Role{}, false
	}
	return adminapi.Role{
		ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(s.issuer+"/roles/"+name)).String(),
		Name:        name,
		Description: description,
		ContainerID: s.realm,
	}, true
}

// InitialiseSystem seeds the confidential backend client and the two
// built-in accounts. Existing records are left alone.
func (s *Server) InitialiseSystem(config config.Config) error {
	client, err := s.createBackendClient(config)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap client: %w", err)
	}

	adminCreated, err := s.createUser(DefaultAdminUsername, config.GetStubAdminPassword(), "KubeAtlas", "Administrator", users.RoleAdmin, users.RoleUser)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}
	userCreated, err := s.createUser(DefaultUserUsername, config.GetStubUserPassword(), "Demo", "User", users.RoleUser)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap demo user: %w", err)
	}

	if s.env == "DEV" && (adminCreated || userCreated) {
		log.Printf("📋 Realm Configuration:")
		log.Printf("   Realm:       %s", s.realm)
		log.Printf("   Issuer:      %s", s.issuer)
		log.Printf("   Token:       %s", s.issuer+tokenEndpoint)
		log.Printf("")
		log.Printf("🔐 Client:")
		log.Printf("   ID:          %s", client.ID)
		log.Printf("   Grants:      %s, %s", oauth2.PasswordGrant, oauth2.RefreshTokenGrant)
		log.Printf("")
		log.Printf("👤 Accounts:")
		log.Printf("   %-14s %s", DefaultAdminUsername, "(admin, user)")
		log.Printf("   %-14s %s", DefaultUserUsername, "(user)")
		log.Printf("")
	}
	return nil
}

func (s *Server) createBackendClient(config config.Config) (*clients.Client, error) {
	if existing, err := s.repos.Clients.Get(config.GetClientID()); err == nil {
		return existing, nil
	}

	client := &clients.Client{
		ID:                 config.GetClientID(),
		Type:               clients.ClientTypeConfidential,
		Description:        "KubeAtlas backend",
		Secret:             config.GetClientSecret(),
		Scopes:             []string{oauth2.ScopeOpenID, oauth2.ScopeProfile, oauth2.ScopeEmail, oauth2.ScopeRoles},
		DirectAccessGrants: true,
	}
	if err := s.repos.Clients.Upsert(client); err != nil {
		return nil, err
	}
	return client, nil
}

// createUser reports whether the account was created.
func (s *Server) createUser(username, password, firstName, lastName string, roles ...string) (bool, error) {
	if _, err := s.repos.Users.GetByUsername(username); err == nil {
		return false, nil
	} else if !errors.Is(err, errors.ErrUserNotFound) {
		return false, err
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &users.User{
		Username:      username,
		Email:         username + "@kubeatlas.local",
		PasswordHash:  passwordHash,
		FirstName:     firstName,
		LastName:      lastName,
		Roles:         roles,
		Enabled:       true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return false, err
	}
	return true, nil
}
