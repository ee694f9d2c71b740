package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console core
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoValidToken       = errors.New("no valid token")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")

	// Token errors
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrMissingRefreshToken  = errors.New("no refresh token available")
	ErrSessionChanged       = errors.New("session ended during refresh")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrIncompleteCredential = errors.New("incomplete credential")
	ErrInvalidTokenResponse = errors.New("invalid token response")

	// Client errors
	ErrInvalidClient = errors.New("invalid client")
	ErrInvalidScope  = errors.New("invalid scope")

	// Grant errors
	ErrInvalidGrant     = errors.New("invalid grant")
	ErrUnsupportedGrant = errors.New("unsupported grant type")
	ErrInvalidRequest   = errors.New("invalid request")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import.
func New(text string) error {
	return errors.New(text)
}
