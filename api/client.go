// Package api provides the HTTP transport core shared by the Verdant
// services: bearer-token injection, bounded retry with exponential backoff,
// response envelope decoding, and pagination types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize limits response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// TokenSource supplies the persisted bearer credential. The second return
// value reports whether a credential is present.
type TokenSource interface {
	Token() (string, bool, error)
}

// Client issues requests against a single configured backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	retry      RetryConfig
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) {
		c.retry = rc
	}
}

// WithTokenSource sets the credential source used for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New creates a client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		retry:   DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Call describes a single backend request.
type Call struct {
	// Op is a short operation name used in errors and logs.
	Op string

	Method string
	Path   string
	Query  url.Values

	// Body is the raw request body. It must be replayable, so it is held
	// as bytes rather than a reader.
	Body        []byte
	ContentType string

	// Authenticated requests read the token source first and fail with
	// ErrNoSession, without network I/O, when no credential is present.
	Authenticated bool

	// Retry enables the bounded retry policy for this call. Transport
	// failures and 5xx/429 responses are retried; 4xx never is.
	Retry bool

	// Fallback is the error message used when the server provides none.
	Fallback string
}

// Do issues the request and returns the raw response body of the first
// successful (2xx) attempt.
func (c *Client) Do(ctx context.Context, call Call) ([]byte, error) {
	var bearer string
	if call.Authenticated {
		if c.tokens == nil {
			return nil, ErrNoSession
		}
		tok, ok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: read session token: %w", call.Op, err)
		}
		if !ok {
			return nil, ErrNoSession
		}
		bearer = tok
	}

	reqURL := c.baseURL + call.Path
	if len(call.Query) > 0 {
		reqURL += "?" + call.Query.Encode()
	}

	attempts := 1
	if call.Retry {
		attempts = c.retry.MaxAttempts
	}

	requestID := uuid.NewString()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.attempt(ctx, call, reqURL, bearer)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if IsFatal(err) {
			return nil, err
		}

		if attempt < attempts {
			backoff := c.retry.backoff(attempt)
			c.logger.Debug("request failed, retrying",
				"op", call.Op,
				"request_id", requestID,
				"attempt", attempt,
				"max_attempts", attempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, lastErr
}

// attempt executes one HTTP round trip.
func (c *Client) attempt(ctx context.Context, call Call, reqURL, bearer string) ([]byte, error) {
	var bodyReader io.Reader
	if call.Body != nil {
		bodyReader = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, reqURL, bodyReader)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("%s: create request: %w", call.Op, err))
	}

	req.Header.Set("Accept", "application/json")
	if call.ContentType != "" {
		req.Header.Set("Content-Type", call.ContentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("%s: request failed: %w", call.Op, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("%s: read response body: %w", call.Op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(call, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// classifyStatus converts a non-2xx response into a ServerError, wrapped as
// transient or fatal depending on the status code.
func classifyStatus(call Call, status int, body []byte) error {
	msg := serverMessage(body)
	if msg == "" {
		msg = call.Fallback
	}
	if msg == "" {
		msg = "request failed"
	}

	err := &ServerError{Op: call.Op, Status: status, Message: msg}

	switch {
	case status == http.StatusTooManyRequests:
		return NewTransientError(err)
	case status >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}

// serverMessage extracts the message field from an error body, if any.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// DecodeJSON unmarshals data into out, converting failures into the parse
// error taxonomy.
func DecodeJSON(op string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return NewParseError(op, err)
	}
	return nil
}

// Envelope is the backend's standard {code, message, result} wrapper.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// DecodeEnvelope unmarshals an enveloped response and unwraps the result.
// An envelope code other than 200 is a server rejection even when the HTTP
// status was 2xx.
func DecodeEnvelope[T any](op string, data []byte, fallback string) (T, error) {
	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero T
		return zero, NewParseError(op, err)
	}
	if env.Code != 200 {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		var zero T
		return zero, &ServerError{Op: op, Status: env.Code, Message: msg}
	}
	return env.Result, nil
}
