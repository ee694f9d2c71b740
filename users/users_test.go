package users_test

import (
	"testing"

	"github.com/jrsteele09/kubeatlas-console/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("AdminPassw0rd!"))
	require.Error(t, users.ValidatePasswordStrength("Sh0rt"))
	require.Error(t, users.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, users.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, users.ValidatePasswordStrength("NoNumbersHere"))
}

func TestCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("AdminPassw0rd!")
	require.NoError(t, err)

	u := &users.User{Username: "admin-service", PasswordHash: hash, Roles: []string{users.RoleAdmin}}
	require.True(t, u.CheckPassword("AdminPassw0rd!"))
	require.False(t, u.CheckPassword("wrong"))
	require.True(t, u.IsAdmin())
	require.Equal(t, "admin-service", u.DisplayName())

	u.FirstName = "Ada"
	require.Equal(t, "Ada", u.DisplayName())
}
