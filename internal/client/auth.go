// ABOUTME: Auth endpoint calls for the library API client
// ABOUTME: Login, registration and bearer-token verification

package client

import (
	"context"
	"net/http"
)

// Login calls POST /api/auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register calls POST /api/auth/register
func (c *Client) Register(ctx context.Context, input RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify calls GET /api/auth/verify with the given bearer token.
// A 2xx response without a user is returned as-is; callers decide what it means.
func (c *Client) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.do(ctx, "verify", http.MethodGet, "/api/auth/verify", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
