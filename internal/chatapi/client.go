package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second

	// Cap on response bodies; replies are a single message.
	maxBodySize = 4 << 20
)

// Client talks to the chat backend.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each request. It applies to a copy of the HTTP client,
// so a client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the backend rooted at endpoint. An empty
// endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.httpClient == nil:
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
		if c.timeout > 0 {
			c.httpClient.Timeout = c.timeout
		}
	case c.timeout > 0:
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Endpoint returns the backend base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Chat sends one message and returns the backend's reply. Every failure is a
// *RequestError.
func (c *Client) Chat(ctx context.Context, message, model string) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: message, Model: model})
	if err != nil {
		return nil, &RequestError{Kind: KindUnknown, Message: fmt.Sprintf("failed to encode request: %v", err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Kind: KindUnknown, Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := transportError(err)
		if reqErr.Kind == KindCanceled {
			c.logger.Debug("chat request canceled", zap.String("model", model))
			return nil, reqErr
		}
		c.logger.Warn("chat request failed",
			zap.String("model", model),
			zap.Stringer("kind", reqErr.Kind),
			zap.Error(err))
		return nil, reqErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(err)
	}

	c.logger.Debug("chat response",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload ErrorResponse
		msg := ""
		if json.Unmarshal(data, &payload) == nil {
			msg = payload.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp))
		}
		return nil, &RequestError{Kind: KindHTTP, StatusCode: resp.StatusCode, Message: msg}
	}

	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &RequestError{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid chat response: %v", err),
			Err:        err,
		}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &RequestError{Kind: KindApplication, StatusCode: resp.StatusCode, Message: msg}
	}

	return &out, nil
}

// Models lists the models the backend accepts.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var models []string
	if err := c.getJSON(ctx, ModelsPath, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// ModelAvailable asks the backend whether model can be used.
func (c *Client) ModelAvailable(ctx context.Context, model string) (bool, error) {
	var available bool
	path := ModelsPath + "/" + url.PathEscape(model) + "/available"
	if err := c.getJSON(ctx, path, &available); err != nil {
		return false, err
	}
	return available, nil
}

// Health returns the backend's health text.
func (c *Client) Health(ctx context.Context) (string, error) {
	data, err := c.get(ctx, HealthPath, "text/plain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.get(ctx, path, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Kind: KindDecode, Message: fmt.Sprintf("invalid response from %s: %v", path, err), Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, &RequestError{Kind: KindUnknown, Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp)),
		}
	}
	return data, nil
}

// statusText is the reason phrase of resp.Status without the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
