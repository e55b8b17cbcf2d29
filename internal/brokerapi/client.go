package brokerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend defines the calls the console makes against the brokerage API.
// This interface is implemented by *Client and can be used for testing.
type Backend interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	FetchCollection(ctx context.Context, token, path, key string) ([]Record, error)
	Create(ctx context.Context, token, path string, payload Payload) (string, error)
	Update(ctx context.Context, token, path, id string, payload Payload) (string, error)
	Delete(ctx context.Context, token, path, id string) (string, error)
	Action(ctx context.Context, token, path, id, action string) (string, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the brokerage HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultBaseURL   = "http://127.0.0.1:8000"
	defaultUserAgent = "brokerdesk/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 * 1024
)

// Option adjusts a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// LoginResult is the session material returned by the login endpoint.
type LoginResult struct {
	Token string `json:"token"`
	Role  int    `json:"role"`
	Name  string `json:"name"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if c == nil {
		return LoginResult{}, fmt.Errorf("client is nil")
	}
	payload := Payload{Fields: map[string]any{"email": strings.TrimSpace(email), "password": password}}
	var result LoginResult
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", "", payload, &result); err != nil {
		// Rejected credentials are a form error, not an expired session.
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized {
			apiErr.Kind = KindClient
			if apiErr.Message == "" {
				apiErr.Message = "Invalid email or password"
			}
		}
		return LoginResult{}, err
	}
	if strings.TrimSpace(result.Token) == "" {
		return LoginResult{}, &Error{Kind: KindDecode, Op: "POST /api/auth/login", Message: "response has no token"}
	}
	return result, nil
}

// FetchCollection retrieves the list at path and extracts the array stored
// under key in the response envelope.
func (c *Client) FetchCollection(ctx context.Context, token, path, key string) ([]Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, "", &envelope); err != nil {
		return nil, err
	}
	op := "GET " + path
	raw, ok := envelope[key]
	if !ok {
		return nil, &Error{Kind: KindDecode, Op: op, Message: fmt.Sprintf("response has no %q field", key)}
	}
	if string(raw) == "null" {
		return []Record{}, nil
	}
	var items []Record
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Message: fmt.Sprintf("field %q is not a list", key), Err: err}
	}
	if items == nil {
		items = []Record{}
	}
	return items, nil
}

// Create posts a new record to path and returns the backend's message.
func (c *Client) Create(ctx context.Context, token, path string, payload Payload) (string, error) {
	return c.mutate(ctx, http.MethodPost, path, token, payload)
}

// Update replaces the record id under path.
func (c *Client) Update(ctx context.Context, token, path, id string, payload Payload) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("record id required")
	}
	return c.mutate(ctx, http.MethodPut, joinPath(path, id), token, payload)
}

// Delete removes the record id under path.
func (c *Client) Delete(ctx context.Context, token, path, id string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("record id required")
	}
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, joinPath(path, id), token, nil, "", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Action triggers a workflow transition such as approve or reject on the
// record id under path.
func (c *Client) Action(ctx context.Context, token, path, id, action string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("record id required")
	}
	if strings.TrimSpace(action) == "" {
		return "", fmt.Errorf("action required")
	}
	return c.mutate(ctx, http.MethodPut, joinPath(path, id, action), token, Payload{})
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) mutate(ctx context.Context, method, path, token string, payload Payload) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var resp messageResponse
	if err := c.send(ctx, method, path, token, payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) send(ctx context.Context, method, path, token string, payload Payload, dest any) error {
	body, contentType, err := payload.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, token, body, contentType, dest)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	op := method + " " + rel.Path
	// Request paths are appended to the base path so a backend mounted
	// under a prefix such as /backend keeps it.
	reqURL := c.baseURL.JoinPath(rel.EscapedPath())
	reqURL.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode >= 400 {
		return &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Op:      op,
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Kind: KindDecode, Op: op, Message: "decode response", Err: err}
	}
	return nil
}

// readErrorMessage pulls "message" or "error" out of a JSON error body.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}

func joinPath(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + url.PathEscape(strings.Trim(p, "/"))
	}
	return out
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
