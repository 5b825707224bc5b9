package recognition

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

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/utils"
)

const (
	// DefaultBaseURL is the public recognition API.
	DefaultBaseURL = "https://api.ximilar.com"

	// DefaultTimeout applies when no HTTP client is injected.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20
)

// Caller is the transport contract the resolver depends on.
type Caller interface {
	Call(ctx context.Context, endpoint Endpoint, images []Image, opts Options) (*Response, error)
}

// TransportError is returned for network failures, non-2xx statuses and
// undecodable bodies. It never carries a panic past the client.
type TransportError struct {
	Endpoint   Endpoint
	StatusCode int
	Reason     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("recognition %s: http status %d: %s", e.Endpoint, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("recognition %s: %s", e.Endpoint, e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client talks to the recognition service over HTTP+JSON.
type Client struct {
	baseURL    string
	tokens     TokenSource
	lang       string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Caller = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithLanguage sets the default language hint sent with every request.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.lang = strings.TrimSpace(lang)
	}
}

// New creates a recognition client. tokens is consulted once per call.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: recognition token source required", domain.ErrConfiguration)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Call POSTs images and flags to endpoint and returns the coerced response.
//
// A missing token yields domain.ErrConfiguration before any request is made.
// Network errors, non-2xx statuses and undecodable bodies yield *TransportError.
func (c *Client) Call(ctx context.Context, endpoint Endpoint, images []Image, opts Options) (*Response, error) {
	if !endpoint.Valid() {
		return nil, fmt.Errorf("%w: unknown endpoint %q", domain.ErrInvalidInput, endpoint)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no image supplied", domain.ErrInvalidInput)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve recognition token: %v", domain.ErrConfiguration, err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: recognition token is not set", domain.ErrConfiguration)
	}

	if opts.Lang == "" {
		opts.Lang = c.lang
	}
	payload, err := json.Marshal(buildBody(images, opts))
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint.Path(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Reason: err.Error(), Err: err}
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: "read body: " + err.Error(), Err: err}
	}

	c.logger.Debug("recognition call",
		logger.String("endpoint", endpoint.String()),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("latency", latency))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: snippet(body)}
	}

	parsed, err := Parse(body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: "decode body: " + err.Error(), Err: err}
	}
	return parsed, nil
}

// snippet keeps error messages short when the service returns HTML or a huge body.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty body"
	}
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
