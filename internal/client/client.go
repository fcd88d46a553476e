// Package client is the authenticated access layer to the task backend.
//
// Every call goes through Client.Do, which resolves the request URL against
// the build-mode base and attaches the session token as a bearer credential
// when one exists.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/taskboard/internal/buildinfo"
)

// GatewayPrefix is the base used in production so calls reach the forwarding gateway.
const GatewayPrefix = "/api/backend-proxy"

// TokenSource yields the current session token, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Config controls how a Client reaches the backend.
type Config struct {
	// Mode is the build mode; it alone decides the base URL.
	Mode buildinfo.BuildMode
	// Origin is where the application is served. Relative bases resolve against it.
	Origin string
	// DevAPIURL is the development base. Empty means same-origin relative paths.
	DevAPIURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// ResolveBaseURL returns the API base for a build mode. Production always
// uses the gateway prefix; development uses devAPIURL, which may be empty.
func ResolveBaseURL(mode buildinfo.BuildMode, devAPIURL string) string {
	if mode == buildinfo.Production {
		return GatewayPrefix
	}
	return strings.TrimRight(strings.TrimSpace(devAPIURL), "/")
}

// Client performs authenticated API calls.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
	tokens  TokenSource
}

// New creates a Client. tokens may be nil for unauthenticated use.
func New(cfg Config, tokens TokenSource) (*Client, error) {
	base := ResolveBaseURL(cfg.Mode, cfg.DevAPIURL)
	origin := strings.TrimRight(strings.TrimSpace(cfg.Origin), "/")
	if !isAbsolute(base) && !isAbsolute(origin) {
		return nil, fmt.Errorf("origin %q must be an absolute http(s) URL when the API base %q is relative", cfg.Origin, base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: base,
		origin:  origin,
		http:    hc,
		tokens:  tokens,
	}, nil
}

// BaseURL returns the resolved API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL for an API path.
func (c *Client) URL(path string) string {
	if isAbsolute(c.baseURL) {
		return c.baseURL + path
	}
	return c.origin + c.baseURL + path
}

// Do sends a JSON request and decodes a JSON response into out (if non-nil).
// Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// addHeaders attaches the bearer credential and common headers.
func (c *Client) addHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "taskctl/"+buildinfo.Version)
	if c.tokens == nil {
		return
	}
	if token, ok := c.tokens.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// MessageOr returns the backend-supplied message carried by err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
