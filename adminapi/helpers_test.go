package adminapi_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/stretchr/testify/require"
)

func TestValidateUserData(t *testing.T) {
	valid := adminapi.CreateUserRequest{
		Username:  "jdoe",
		Email:     "jdoe@kubeatlas.local",
		FirstName: "John",
		LastName:  "Doe",
		Password:  "s3cretpass",
		Roles:     []string{"user"},
	}
	require.Empty(t, adminapi.ValidateUserData(valid))

	problems := adminapi.ValidateUserData(adminapi.CreateUserRequest{Username: "jd", Email: "jdoe", Password: "short", FirstName: "  "})
	require.Equal(t, []string{
		"Username must be at least 3 characters long",
		"Please enter a valid email address",
		"Password must be at least 8 characters long",
		"First name is required",
		"Last name is required",
		"At least one role must be assigned",
	}, problems)
}

func TestFormatAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"Bad request", &apiclient.APIError{StatusCode: http.StatusBadRequest}, "Invalid user data. Please check all fields."},
		{"Unauthorized", &apiclient.APIError{StatusCode: http.StatusUnauthorized}, "Unauthorized. Please login again."},
		{"Conflict", &apiclient.APIError{StatusCode: http.StatusConflict}, "User already exists with this username or email."},
		{"Server error", &apiclient.APIError{StatusCode: http.StatusInternalServerError}, "Server error. Please try again later."},
		{"Other status", &apiclient.APIError{StatusCode: http.StatusTeapot, Message: "short and stout"}, "HTTP 418: short and stout"},
		{"Auth error", &session.AuthError{Kind: session.NoValidToken}, "Unauthorized. Please login again."},
		{"Plain error", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, adminapi.FormatAPIError(tt.err))
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want adminapi.UserAgentInfo
	}{
		{"", adminapi.UserAgentInfo{Browser: "Unknown", OS: "Unknown", Device: "Unknown"}},
		{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			adminapi.UserAgentInfo{Browser: "Edge", OS: "Windows", Device: "Desktop"},
		},
		{
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			adminapi.UserAgentInfo{Browser: "Firefox", OS: "Linux", Device: "Desktop"},
		},
		{
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			adminapi.UserAgentInfo{Browser: "Chrome", OS: "Android", Device: "Mobile"},
		},
		{
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			adminapi.UserAgentInfo{Browser: "Safari", OS: "iOS", Device: "Mobile"},
		},
		{
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			adminapi.UserAgentInfo{Browser: "Safari", OS: "macOS", Device: "Desktop"},
		},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, adminapi.ParseUserAgent(tt.ua), tt.ua)
	}
}
