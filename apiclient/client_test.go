package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeTokens hands out "t0" until ForceRefresh is called, then "t1", "t2"...
type fakeTokens struct {
	mu         sync.Mutex
	current    string
	generation int
	validErr   error
	refreshErr error

	validCalls   atomic.Int32
	refreshCalls atomic.Int32
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{current: "t0"}
}

func (f *fakeTokens) GetValidToken(_ context.Context, _ time.Duration) (string, error) {
	f.validCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.validErr != nil {
		return "", f.validErr
	}
	return f.current, nil
}

func (f *fakeTokens) ForceRefresh(_ context.Context) (string, error) {
	f.refreshCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.generation++
	f.current = "t" + string(rune('0'+f.generation))
	return f.current, nil
}

type recordedRequest struct {
	method      string
	auth        string
	contentType string
	body        string
}

// fakeBackend answers with the scripted statuses in order, then 200.
type fakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	statuses []int
	errBody  string
	requests []recordedRequest
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		method:      r.Method,
		auth:        r.Header.Get("Authorization"),
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	status := http.StatusOK
	if len(b.statuses) > 0 {
		status, b.statuses = b.statuses[0], b.statuses[1:]
	}
	errBody := b.errBody
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_, _ = io.WriteString(w, errBody)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
}

func (b *fakeBackend) script(statuses ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = statuses
}

func (b *fakeBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

type testFixture struct {
	backend *fakeBackend
	tokens  *fakeTokens
	client  *apiclient.Client
}

func setupTestFixture(t *testing.T, opts ...apiclient.ClientOption) *testFixture {
	t.Helper()

	backend := &fakeBackend{errBody: `{"error":"unauthorized","message":"Token rejected"}`}
	backend.server = httptest.NewServer(http.HandlerFunc(backend.handle))
	t.Cleanup(backend.server.Close)

	tokens := newFakeTokens()
	opts = append([]apiclient.ClientOption{apiclient.WithLogger(zerolog.Nop())}, opts...)
	client, err := apiclient.New(backend.server.URL+"/api/v1", tokens, opts...)
	require.NoError(t, err)

	return &testFixture{backend: backend, tokens: tokens, client: client}
}

func TestNew(t *testing.T) {
	_, err := apiclient.New("http://localhost/api/v1", nil)
	require.Error(t, err)

	_, err = apiclient.New("/api/v1", newFakeTokens())
	require.Error(t, err)

	c, err := apiclient.New("http://localhost/api/v1/", newFakeTokens())
	require.NoError(t, err)
	require.Equal(t, "http://localhost/api/v1", c.BaseURL())
}

func TestDo(t *testing.T) {
	t.Run("Success attaches bearer token", func(t *testing.T) {
		f := setupTestFixture(t)

		var out map[string]string
		require.NoError(t, f.client.Get(context.Background(), "/auth/profile", &out))
		require.Equal(t, "/api/v1/auth/profile", out["path"])

		reqs := f.backend.recorded()
		require.Len(t, reqs, 1)
		require.Equal(t, "Bearer t0", reqs[0].auth)
		require.Empty(t, reqs[0].contentType)
		require.Zero(t, f.tokens.refreshCalls.Load())
	})

	t.Run("Single 401 is recovered with one refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.script(http.StatusUnauthorized)

		resp, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
		require.NoError(t, err)
		require.Equal(t, 2, resp.Attempts)
		require.EqualValues(t, 1, f.tokens.refreshCalls.Load())

		reqs := f.backend.recorded()
		require.Len(t, reqs, 2)
		require.Equal(t, "Bearer t0", reqs[0].auth)
		require.Equal(t, "Bearer t1", reqs[1].auth)
	})

	t.Run("Repeated 401 stops after one retry", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.script(http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized)

		_, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
		require.Error(t, err)

		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "unauthorized", apiErr.Code)
		require.Equal(t, "Token rejected", apiErr.Message)
		require.False(t, apiErr.Retryable)
		require.False(t, session.IsAuthError(err))

		require.Len(t, f.backend.recorded(), 2)
		require.EqualValues(t, 1, f.tokens.refreshCalls.Load())
	})

	t.Run("Non-401 errors are not retried", func(t *testing.T) {
		for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
			f := setupTestFixture(t)
			f.backend.script(status)

			_, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
			require.Error(t, err)
			require.Equal(t, status, apiclient.StatusCode(err))
			require.Len(t, f.backend.recorded(), 1)
			require.Zero(t, f.tokens.refreshCalls.Load())
		}
	})

	t.Run("Status maps to sentinel errors", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.script(http.StatusNotFound)
		err := f.client.Get(context.Background(), "/users/missing", nil)
		require.ErrorIs(t, err, errors.ErrNotFound)

		f.backend.script(http.StatusForbidden)
		err = f.client.Get(context.Background(), "/admin/statistics", nil)
		require.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("Token error is returned without a request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.tokens.validErr = &session.AuthError{Kind: session.NoValidToken}

		_, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
		require.ErrorIs(t, err, session.ErrNoValidToken)
		require.Empty(t, f.backend.recorded())
	})

	t.Run("Refresh failure after 401 surfaces the auth error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.script(http.StatusUnauthorized)
		f.tokens.refreshErr = &session.AuthError{Kind: session.NoValidToken, StatusCode: http.StatusBadRequest}

		_, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
		var authErr *session.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, http.StatusBadRequest, authErr.StatusCode)
		require.Len(t, f.backend.recorded(), 1)
	})

	t.Run("Transport failure has status zero", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.server.Close()

		_, err := f.client.Do(context.Background(), http.MethodGet, "/users", nil)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Zero(t, apiErr.StatusCode)
		require.Error(t, apiErr.Err)
		require.Zero(t, f.tokens.refreshCalls.Load())
	})

	t.Run("Unencodable body fails before any request", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.Do(context.Background(), http.MethodPost, "/users", map[string]any{"ch": make(chan int)})
		require.Error(t, err)
		require.Empty(t, f.backend.recorded())
	})
}

func TestMutatingRequests(t *testing.T) {
	t.Run("POST sends JSON body", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.client.Post(context.Background(), "/users", map[string]string{"username": "jdoe"}, nil))
		reqs := f.backend.recorded()
		require.Len(t, reqs, 1)
		require.Equal(t, "application/json", reqs[0].contentType)
		require.JSONEq(t, `{"username":"jdoe"}`, reqs[0].body)
	})

	t.Run("POST 401 refreshes but is not re-sent", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.script(http.StatusUnauthorized)

		err := f.client.Post(context.Background(), "/users", map[string]string{"username": "jdoe"}, nil)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.True(t, apiErr.Retryable)
		require.EqualValues(t, 1, f.tokens.refreshCalls.Load())
		require.Len(t, f.backend.recorded(), 1)

		// the refreshed token is used by the caller's next attempt
		require.NoError(t, f.client.Post(context.Background(), "/users", map[string]string{"username": "jdoe"}, nil))
		reqs := f.backend.recorded()
		require.Equal(t, "Bearer t1", reqs[1].auth)
	})

	t.Run("DELETE 401 is re-sent when all methods retry", func(t *testing.T) {
		f := setupTestFixture(t, apiclient.WithRetryAllMethods())
		f.backend.script(http.StatusUnauthorized)

		require.NoError(t, f.client.Delete(context.Background(), "/users/u1", nil))
		reqs := f.backend.recorded()
		require.Len(t, reqs, 2)
		require.Equal(t, http.MethodDelete, reqs[1].method)
		require.Equal(t, "Bearer t1", reqs[1].auth)
	})

	t.Run("PUT body is replayed on retry", func(t *testing.T) {
		f := setupTestFixture(t, apiclient.WithRetryAllMethods())
		f.backend.script(http.StatusUnauthorized)

		require.NoError(t, f.client.Put(context.Background(), "/users/u1", map[string]bool{"enabled": false}, nil))
		reqs := f.backend.recorded()
		require.Len(t, reqs, 2)
		require.Equal(t, reqs[0].body, reqs[1].body)
		require.JSONEq(t, `{"enabled":false}`, reqs[1].body)
	})
}

func TestAPIError(t *testing.T) {
	t.Run("Plain text body", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.errBody = "upstream unavailable"
		f.backend.script(http.StatusBadGateway)

		_, err := f.client.Do(context.Background(), http.MethodGet, "/admin/statistics", nil)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Empty(t, apiErr.Code)
		require.Equal(t, "upstream unavailable", apiErr.Detail())
		require.Equal(t, "HTTP 502: upstream unavailable", apiErr.Error())
	})

	t.Run("Empty body falls back to status text", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.errBody = ""
		f.backend.script(http.StatusServiceUnavailable)

		_, err := f.client.Do(context.Background(), http.MethodGet, "/admin/statistics", nil)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusText(http.StatusServiceUnavailable), apiErr.Detail())
	})
}

func TestRateLimit(t *testing.T) {
	f := setupTestFixture(t, apiclient.WithRateLimit(rate.Every(50*time.Millisecond), 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.client.Get(context.Background(), "/users", nil))
	}
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.client.Get(ctx, "/users", nil)
	require.Error(t, err)
}
