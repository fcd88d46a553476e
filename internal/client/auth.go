package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/ashureev/taskboard/internal/domain"
)

// Fallback messages shown when the backend does not supply one.
const (
	SignInFailed = "Sign in failed"
	SignUpFailed = "Sign up failed"
)

var errMissingToken = errors.New("auth response missing token")
var errMissingUser = errors.New("identity response missing user")

// SignIn exchanges credentials for a token and user record.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/signin", creds)
}

// SignUp registers a new account and returns its token and user record.
func (c *Client) SignUp(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/signup", reg)
}

// Me returns the user record for the presented token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errMissingUser
	}
	return resp.User, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.Do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, errMissingToken
	}
	if result.User == nil {
		return nil, errMissingUser
	}
	return &result, nil
}
