package session

import (
	"fmt"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// AuthErrorKind classifies authentication failures.
type AuthErrorKind int

const (
	// InvalidCredentials means the password grant was rejected.
	InvalidCredentials AuthErrorKind = iota + 1
	// NoValidToken means no usable token exists and refresh failed or was impossible.
	NoValidToken
)

// Sentinels matched by errors.Is against an *AuthError.
var (
	ErrInvalidCredentials = errors.ErrInvalidCredentials
	ErrNoValidToken       = errors.ErrNoValidToken
)

func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "InvalidCredentials"
	case NoValidToken:
		return "NoValidToken"
	default:
		return fmt.Sprintf("AuthErrorKind(%d)", int(k))
	}
}

// AuthError is returned whenever the session cannot produce a usable token.
// Any AuthError means the user must log in again.
type AuthError struct {
	Kind AuthErrorKind

	// StatusCode and Body are the identity provider's response, when there was one.
	StatusCode int
	Body       string

	Err error
}

func (e *AuthError) Error() string {
	var msg string
	switch e.Kind {
	case InvalidCredentials:
		msg = "invalid credentials"
		if e.StatusCode != 0 {
			msg = fmt.Sprintf("invalid credentials: HTTP %d: %s", e.StatusCode, e.Body)
		}
	case NoValidToken:
		msg = "no valid token"
		if e.StatusCode != 0 {
			msg = fmt.Sprintf("no valid token: refresh rejected with HTTP %d", e.StatusCode)
		}
	default:
		msg = "authentication error"
	}
	if e.Err != nil && e.StatusCode == 0 {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	switch e.Kind {
	case InvalidCredentials:
		return target == errors.ErrInvalidCredentials
	case NoValidToken:
		return target == errors.ErrNoValidToken
	}
	return false
}

// IsAuthError reports whether err carries an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func noValidToken(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Kind == NoValidToken {
		return authErr
	}
	return &AuthError{Kind: NoValidToken, Err: err}
}
