package oauth2

import (
	"net/http"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// Error codes returned in the "error" field of a token endpoint failure.
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorInvalidScope         = "invalid_scope"
	ErrorUnauthorizedClient   = "unauthorized_client"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorServerError          = "server_error"
)

// ErrUnauthorizedClient is returned when a client may not use a grant type.
var ErrUnauthorizedClient = errors.New("client not allowed to use this grant")

// ErrorResponse is the RFC 6749 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ErrorCode maps an internal error to its RFC 6749 code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, errors.ErrUnsupportedGrant):
		return ErrorUnsupportedGrantType
	case errors.Is(err, errors.ErrInvalidClient):
		return ErrorInvalidClient
	case errors.Is(err, ErrUnauthorizedClient):
		return ErrorUnauthorizedClient
	case errors.Is(err, errors.ErrInvalidScope):
		return ErrorInvalidScope
	case errors.Is(err, errors.ErrInvalidRequest):
		return ErrorInvalidRequest
	case errors.Is(err, errors.ErrInvalidCredentials),
		errors.Is(err, errors.ErrInvalidGrant),
		errors.Is(err, errors.ErrInvalidRefreshToken),
		errors.Is(err, errors.ErrRefreshTokenExpired),
		errors.Is(err, errors.ErrUserDisabled):
		return ErrorInvalidGrant
	default:
		return ErrorServerError
	}
}

// ErrorStatus is the HTTP status Keycloak uses for an error. Bad user
// credentials are 401 like a bad client, every other grant failure is 400.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidClient), errors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case ErrorCode(err) == ErrorServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// NewErrorResponse builds the body for err, using its text as the
// description.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorCode(err), ErrorDescription: err.Error()}
}
