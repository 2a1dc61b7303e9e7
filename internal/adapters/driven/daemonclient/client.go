// Package daemonclient is the process-side transport to a running
// daemon. It implements the driving ports over the daemon's REST
// surface so a CLI command or a spawned MCP server can use the daemon
// as if it were in-process. Transport failures are retried with capped
// backoff; when the daemon looks down the client can start it once and
// replay the request.
package daemonclient

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

	"github.com/okets/folder-mcp-sub010/internal/api"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

const (
	// DefaultRetryAttempts bounds transport-level retries per request.
	DefaultRetryAttempts = 3

	// DefaultRetryBaseDelay is the delay before the first retry.
	DefaultRetryBaseDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay caps the exponential backoff between retries.
	DefaultRetryMaxDelay = 2 * time.Second

	// DefaultHealthTimeout bounds the wait for a freshly started daemon
	// to answer its health probe.
	DefaultHealthTimeout = 10 * time.Second

	healthPollInterval = 100 * time.Millisecond
)

// Starter launches the daemon process when it is not running. The
// client calls it at most once per top-level request.
type Starter interface {
	StartDaemon(ctx context.Context) error
}

// StarterFunc adapts a function to the Starter interface.
type StarterFunc func(ctx context.Context) error

// StartDaemon implements Starter.
func (f StarterFunc) StartDaemon(ctx context.Context) error { return f(ctx) }

// Client talks to the daemon's REST surface.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	starter       Starter
	attempts      int
	baseDelay     time.Duration
	maxDelay      time.Duration
	healthTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStarter enables daemon auto-start through the given starter.
func WithStarter(s Starter) Option {
	return func(c *Client) {
		c.starter = s
	}
}

// WithRetry overrides the transport retry schedule.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithHealthTimeout bounds the post-start health poll.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.healthTimeout = d
	}
}

// New creates a client for the daemon at baseURL
// (e.g., "http://127.0.0.1:9042").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		attempts:      DefaultRetryAttempts,
		baseDelay:     DefaultRetryBaseDelay,
		maxDelay:      DefaultRetryMaxDelay,
		healthTimeout: DefaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the daemon address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request, retrying transport failures with capped
// backoff. When every attempt fails and a starter is configured, the
// daemon is started once, health-polled, and the request replayed.
// Responses, including error responses, always come from the daemon.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = data
	}

	err := c.attempt(ctx, method, path, payload, out)
	if err == nil || !isTransportError(err) {
		return err
	}

	if c.starter == nil {
		return &domain.DaemonUnavailableError{Err: err}
	}

	// The daemon looks down. Start it, wait for health, replay once.
	logger.Debug("daemon unreachable, starting it: %v", err)
	if startErr := c.starter.StartDaemon(ctx); startErr != nil {
		return &domain.DaemonUnavailableError{Err: startErr}
	}
	if healthErr := c.WaitHealthy(ctx); healthErr != nil {
		return &domain.DaemonUnavailableError{Err: healthErr}
	}

	err = c.attempt(ctx, method, path, payload, out)
	if err != nil && isTransportError(err) {
		return &domain.DaemonUnavailableError{Err: err}
	}
	return err
}

// attempt runs the bounded retry loop for one request.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			delay := c.backoffDelay(i)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.send(ctx, method, path, payload, out)
		if err == nil || !isTransportError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// send performs a single HTTP exchange.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}

	switch dst := out.(type) {
	case *string:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		*dst = string(data)
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
}

// backoffDelay computes the capped exponential delay before retry i.
func (c *Client) backoffDelay(i int) time.Duration {
	delay := c.baseDelay
	for n := 1; n < i; n++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

// Health fetches the daemon's health probe. Unlike the data methods it
// never retries and never starts the daemon.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return nil, fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health probe: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("health probe: status %d", resp.StatusCode)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return &health, nil
}

// Healthy reports whether the daemon answers its health probe.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.Health(ctx)
	return err == nil
}

// WaitHealthy polls the health probe until it answers or the health
// timeout elapses.
func (c *Client) WaitHealthy(ctx context.Context) error {
	deadline := time.Now().Add(c.healthTimeout)
	for {
		if c.Healthy(ctx) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon not healthy after %s", c.healthTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(healthPollInterval):
		}
	}
}

// transportError marks a failure below the HTTP layer, the only kind
// the retry loop acts on. Error responses from the daemon are the
// daemon answering and pass through untouched.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// decodeError converts a non-2xx response into the matching domain
// error so callers can errors.Is against the usual sentinels.
func decodeError(resp *http.Response) error {
	var er api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("daemon answered %s", resp.Status)
	}

	sentinel := sentinelForCode(er.Code)
	if sentinel == nil {
		return errors.New(er.Error)
	}
	if er.Error == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%s: %w", strings.TrimSuffix(er.Error, ": "+sentinel.Error()), sentinel)
}

func sentinelForCode(code string) error {
	switch code {
	case api.CodeNotFound:
		return domain.ErrNotFound
	case api.CodeFolderRemoved:
		return domain.ErrFolderRemoved
	case api.CodeAlreadyExists:
		return domain.ErrAlreadyExists
	case api.CodeIndexingInProgress:
		return domain.ErrIndexingInProgress
	case api.CodeInvalidInput:
		return domain.ErrInvalidInput
	case api.CodeInvalidPath:
		return domain.ErrInvalidPath
	case api.CodeEmbeddingUnavailable:
		return domain.ErrEmbeddingUnavailable
	default:
		return nil
	}
}
