// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/util"
)

const (
	// DefaultModel is sent when no model is configured.
	DefaultModel = "gpt-4o"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the largest reply body accepted.
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// ErrFailure is matched by every error this package returns.
	ErrFailure = errors.New("gateway request failed")

	// ErrRateLimited means the client-side limiter refused the request.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNoContent means the reply carried no assistant message.
	ErrNoContent = errors.New("reply has no content")
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error describes a failed Complete call.
type Error struct {
	// Op is the stage that failed: "limit", "encode", "request", "read",
	// "status" or "decode".
	Op string

	// Status is the HTTP status, or 0 when no response arrived.
	Status int

	Err error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrFailure.
func (e *Error) Is(target error) bool { return target == ErrFailure }

// =============================================================================
// WIRE TYPES
// =============================================================================

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []conversation.Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts transcripts to the proxy. It is safe for concurrent use.
type Client struct {
	url        string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model field of each request.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithRateLimit allows perMinute requests per minute with no burst beyond
// one. Requests over the limit fail immediately. Zero disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the proxy at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model.
func (c *Client) Model() string { return c.model }

// URL returns the proxy endpoint.
func (c *Client) URL() string { return c.url }

// Complete sends messages and returns the first choice's content. There are
// no retries.
func (c *Client) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return "", &Error{Op: "limit", Err: ErrRateLimited}
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", &Error{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Op: "request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log := c.log.With(zap.String("request_id", requestID), zap.Int("messages", len(messages)))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("gateway request failed", zap.Error(err))
		return "", &Error{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return "", &Error{Op: "read", Status: resp.StatusCode, Err: err}
	}
	log.Debug("gateway response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Op: "status", Status: resp.StatusCode, Err: errors.New(statusText(resp.StatusCode, data))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &Error{Op: "decode", Status: resp.StatusCode, Err: err}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", &Error{Op: "decode", Status: resp.StatusCode, Err: ErrNoContent}
	}
	return *parsed.Choices[0].Message.Content, nil
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// maxStatusText bounds the error body kept in an Error, in display columns.
const maxStatusText = 200

// statusText summarizes an error body for logs, keeping it short.
func statusText(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	text = util.Truncate(text, maxStatusText)
	if text == "" {
		return http.StatusText(status)
	}
	return text
}
