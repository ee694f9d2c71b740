package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// retryBudget is the number of re-sends allowed after a 401. It is fixed.
	retryBudget = 1

	defaultMinValidity = 30 * time.Second
	defaultTimeout     = 30 * time.Second
	maxResponseBytes   = 10 << 20

	contentTypeJSON = "application/json"
)

// TokenSource supplies bearer tokens. *session.Manager implements it.
type TokenSource interface {
	GetValidToken(ctx context.Context, minValidity time.Duration) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

// Client performs authenticated JSON requests against the backend API and
// recovers from a single stale-token 401 by refreshing and re-sending once.
type Client struct {
	baseURL         string
	tokens          TokenSource
	httpClient      *http.Client
	minValidity     time.Duration
	retryAllMethods bool
	limiter         *rate.Limiter
	log             zerolog.Logger
}

// Response is a successful (2xx) response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// Decode unmarshals the body into out. An empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrapf(err, "decode response")
	}
	return nil
}

func New(baseURL string, tokens TokenSource, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("[apiclient.New] token source is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("[apiclient.New] base URL must be absolute")
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		minValidity: defaultMinValidity,
		log:         log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c.log = c.log.With().Str("component", "apiclient").Logger()
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one logical request. Token errors from the TokenSource are
// returned unchanged. A 401 triggers a forced refresh and at most one
// re-send; anything else that is not 2xx is an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Err: err}
	}

	accessToken, err := c.tokens.GetValidToken(ctx, c.minValidity)
	if err != nil {
		return nil, err
	}

	retries := 0
	for attempt := 1; ; attempt++ {
		resp, err := c.send(ctx, method, path, accessToken, payload)
		if err != nil {
			return nil, &APIError{Method: method, Path: path, Err: err}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Attempts = attempt
			return resp, nil
		}

		if resp.StatusCode != http.StatusUnauthorized || retries >= retryBudget {
			return nil, newAPIError(method, path, resp.StatusCode, resp.Body)
		}

		retries++
		c.log.Debug().Str("method", method).Str("path", path).Msg("unauthorized, forcing token refresh")
		accessToken, err = c.tokens.ForceRefresh(ctx)
		if err != nil {
			return nil, err
		}

		if !c.retryable(method) {
			apiErr := newAPIError(method, path, resp.StatusCode, resp.Body)
			apiErr.Retryable = true
			return nil, apiErr
		}
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) retryable(method string) bool {
	if c.retryAllMethods {
		return true
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) send(ctx context.Context, method, path, accessToken string, payload []byte) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", contentTypeJSON)
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read response")
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("api request")
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}, nil
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode request body")
		}
		return data, nil
	}
}
