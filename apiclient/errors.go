package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// APIError is any non-2xx response that the client did not recover from,
// or a transport failure (StatusCode 0). It never implies the session is
// invalid.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string

	// Code and Message are parsed from a {"error": ..., "message": ...} body.
	Code    string
	Message string

	// Retryable is set when a 401 on a non-idempotent request was answered
	// with a token refresh but the request was not re-sent.
	Retryable bool

	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail())
}

// Detail returns the most specific description available.
func (e *APIError) Detail() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	case e.Body != "":
		return e.Body
	default:
		return http.StatusText(e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return target == errors.ErrNotFound
	case http.StatusForbidden:
		return target == errors.ErrForbidden
	case http.StatusConflict:
		return target == errors.ErrConflict
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type errorBody struct {
	Error            any    `json:"error"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       string(body),
	}

	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		if code, ok := parsed.Error.(string); ok {
			apiErr.Code = code
		}
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = parsed.ErrorDescription
		}
	}
	return apiErr
}
