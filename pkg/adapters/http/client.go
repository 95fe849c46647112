package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/domain"
)

const (
	// DefaultEndpoint is the public generation proxy the design-tool plugin calls.
	DefaultEndpoint = "https://textfill-ten.vercel.app/api/qwen-proxy"

	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second

	maxBodySize = 1 << 20
)

// Client calls the remote generation service. It performs exactly one request per
// Generate call; retries belong to the caller.
type Client struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout (0 disables it). A client passed
// through WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithHeader adds a header to every request (e.g. an API key for a private proxy).
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a generation client for endpoint (DefaultEndpoint when empty).
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		headers:  map[string]string{},
		logger:   logging.NewNop(),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate asks the service for count texts matching description.
//
// Errors are typed: *domain.TransportError, *domain.ServiceError,
// *domain.MalformedResponseError or *domain.InsufficientResultsError.
func (c *Client) Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	payload, err := json.Marshal(domain.GenerationRequest{Description: description, Count: count})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("generation request", "endpoint", c.endpoint, "count", count)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("generation response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	oversized := len(body) > maxBodySize
	if oversized {
		body = body[:maxBodySize]
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serviceError(resp.StatusCode, body)
	}
	if oversized {
		return nil, &domain.MalformedResponseError{
			Message: fmt.Sprintf("response body exceeds %d bytes", maxBodySize),
		}
	}

	texts, err := decodeTexts(body)
	if err != nil {
		return nil, err
	}
	if len(texts) < count {
		return nil, &domain.InsufficientResultsError{Requested: count, Actual: len(texts)}
	}
	return texts, nil
}

// serviceError builds the message from the body's "error" field when the body is
// JSON, else from the raw body, else from the status code.
func serviceError(status int, body []byte) *domain.ServiceError {
	e := &domain.ServiceError{StatusCode: status}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		if msg, ok := fields["error"].(string); ok {
			e.Message = msg
		}
		return e
	}

	e.Message = strings.TrimSpace(string(body))
	return e
}

func decodeTexts(body []byte) (domain.GenerationResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &domain.MalformedResponseError{}
	}

	malformed := func() error {
		var msg string
		if raw, ok := fields["error"]; ok {
			_ = json.Unmarshal(raw, &msg)
		}
		return &domain.MalformedResponseError{Message: msg}
	}

	var success bool
	if raw, ok := fields["success"]; !ok || json.Unmarshal(raw, &success) != nil || !success {
		return nil, malformed()
	}

	raw, ok := fields["texts"]
	if !ok {
		return nil, malformed()
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, malformed()
	}

	texts := make(domain.GenerationResult, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, malformed()
		}
		texts = append(texts, s)
	}
	return texts, nil
}
