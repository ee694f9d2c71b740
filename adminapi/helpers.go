package adminapi

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/session"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateUserData returns every problem with req. An empty result means
// the request can be sent.
func ValidateUserData(req CreateUserRequest) []string {
	var problems []string

	if len(req.Username) < 3 {
		problems = append(problems, "Username must be at least 3 characters long")
	}
	if !emailPattern.MatchString(req.Email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if len(req.Password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		problems = append(problems, "First name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		problems = append(problems, "Last name is required")
	}
	if len(req.Roles) == 0 {
		problems = append(problems, "At least one role must be assigned")
	}
	return problems
}

// FormatAPIError turns err into a message fit for an operator.
func FormatAPIError(err error) string {
	if err == nil {
		return ""
	}
	if session.IsAuthError(err) {
		return "Unauthorized. Please login again."
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		return "Invalid user data. Please check all fields."
	case http.StatusUnauthorized:
		return "Unauthorized. Please login again."
	case http.StatusForbidden:
		return "Access denied. Admin privileges required."
	case http.StatusConflict:
		return "User already exists with this username or email."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	}
	return apiErr.Error()
}

type UserAgentInfo struct {
	Browser string
	OS      string
	Device  string
}

const unknown = "Unknown"

// ParseUserAgent makes a best-effort guess at browser, OS and device class.
func ParseUserAgent(ua string) UserAgentInfo {
	info := UserAgentInfo{Browser: unknown, OS: unknown, Device: unknown}
	if ua == "" {
		return info
	}

	// Edge and Chrome both claim "Chrome"; Chrome claims "Safari".
	switch {
	case strings.Contains(ua, "Edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "Firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "Chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "Safari"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "Windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "Android"):
		info.OS = "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		info.OS = "iOS"
	case strings.Contains(ua, "Mac"):
		info.OS = "macOS"
	case strings.Contains(ua, "Linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(ua, "iPad"), strings.Contains(ua, "Tablet"):
		info.Device = "Tablet"
	case strings.Contains(ua, "Mobile"), strings.Contains(ua, "iPhone"), strings.Contains(ua, "Android"):
		info.Device = "Mobile"
	default:
		info.Device = "Desktop"
	}
	return info
}
