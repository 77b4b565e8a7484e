// ABOUTME: HTTP client for the library catalog API
// ABOUTME: Wraps auth and book endpoints with typed errors for CLI and TUI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// RequestIDHeader correlates a client request with backend logs
	RequestIDHeader = "X-Request-ID"

	userAgent      = "library-cli"
	defaultTimeout = 30 * time.Second
)

// Client is the API client for the library backend.
// It holds no session state; callers pass the bearer token per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	// collapses concurrent identical listing reads
	listGroup singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody covers both error shapes the backend is known to send
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends a JSON request and decodes a 2xx response into out (if non-nil).
// Non-2xx responses become *APIError, transport and decode failures *NetworkError.
func (c *Client) do(ctx context.Context, op, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("API request failed", "op", op, "request_id", requestID, "error", err)
		return c.handleRequestError(ctx, op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("API request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	// an empty 2xx body leaves out untouched
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &NetworkError{Op: op, Err: fmt.Errorf("invalid response from backend: %w", err)}
	}
	return nil
}

// handleRequestError converts transport and context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &NetworkError{Op: op, Err: errRequestCanceled}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &NetworkError{Op: op, Err: errRequestTimedOut}
	}
	return &NetworkError{Op: op, Err: fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
	}
	return apiErr
}
