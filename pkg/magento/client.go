// Package magento is a client for the Magento 2 REST API. It wraps the
// searchCriteria interface behind a fluent query builder, paginates search
// results, and maps raw records onto typed resource models.
package magento

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/donaldgifford/magento-go/internal/metrics"
	"github.com/donaldgifford/magento-go/pkg/logger"
)

const (
	defaultScheme    = "https"
	defaultUserAgent = "magento-go"
	tokenEndpoint    = "integration/admin/token"
)

// RetryPolicy bounds transient-failure retries on page fetches. Only
// transport-level faults are retried; a non-success HTTP status is fatal.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

// Client talks to one Magento store. All search and CRUD operations block
// until the full response (or paginated result set) is retrieved; callers
// bound waiting time through the context or the HTTP client timeout.
type Client struct {
	domain      string
	scheme      string
	scope       string
	userAgent   string
	httpClient  *http.Client
	tokens      TokenProvider
	logger      *slog.Logger
	rateLimiter *RateLimiter
	retry       RetryPolicy
}

// Option configures the Client.
type Option func(*Client)

// WithScheme overrides the default https scheme. Local development stores
// commonly run plain http.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithScope sets the store scope segment of request URLs, for example
// "all" or a store view code. Empty means the default scope.
func WithScope(scope string) Option {
	return func(c *Client) {
		c.scope = scope
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. Discards logs when not set.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimiter injects a rate limiter that throttles every request.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the store at the given domain. The domain
// may carry a path prefix for stores installed under a subdirectory.
func NewClient(domain string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		domain:     strings.Trim(domain, "/"),
		scheme:     defaultScheme,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger.Discard(),
		retry:      DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromLogin creates a client that authenticates with the admin
// username/password flow, exchanging credentials for short-lived tokens as
// needed.
func NewClientFromLogin(domain, username, password string, opts ...Option) *Client {
	c := NewClient(domain, nil, opts...)
	c.tokens = NewAdminTokenProvider(
		username,
		password,
		c.URLFor(tokenEndpoint),
		WithTokenHTTPClient(c.httpClient),
	)
	return c
}

// URLFor returns the absolute URL for an API endpoint on this store,
// honoring the configured scope: https://<domain>/rest[/<scope>]/V1/<endpoint>.
func (c *Client) URLFor(endpoint string) string {
	if c.scope != "" {
		return fmt.Sprintf("%s://%s/rest/%s/V1/%s", c.scheme, c.domain, c.scope, endpoint)
	}
	return fmt.Sprintf("%s://%s/rest/V1/%s", c.scheme, c.domain, endpoint)
}

// Scope returns the configured store scope.
func (c *Client) Scope() string {
	return c.scope
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Response is a decoded-enough API response: the status code and raw body.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get issues a GET to the given endpoint path (relative to the REST base).
// The rawQuery, when non-empty, is appended as the query string. Transient
// transport faults are retried per the client's RetryPolicy.
func (c *Client) Get(ctx context.Context, endpoint, rawQuery string) (*Response, error) {
	url := c.URLFor(endpoint)
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	var resp *Response
	operation := func() error {
		r, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			// Quota exhaustion will not clear within the retry horizon.
			if errors.Is(err, ErrQuotaExhausted) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retry.InitialInterval
	expo.MaxInterval = c.retry.MaxInterval

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(expo, uint64(attempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		metrics.APIRetriesTotal.Inc()
		c.logger.Warn("retrying request", "url", url, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON issues a GET and decodes a 2xx JSON response into dst. Non-2xx
// statuses are returned as *APIError.
func (c *Client) GetJSON(ctx context.Context, endpoint, rawQuery string, dst any) error {
	resp, err := c.Get(ctx, endpoint, rawQuery)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: parseAPIMessage(resp.Body)}
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("parsing response from %s: %w", endpoint, err)
	}
	return nil
}

// Post issues a POST with a JSON payload. Not retried: writes are not
// assumed idempotent.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) (*Response, error) {
	return c.write(ctx, http.MethodPost, endpoint, payload)
}

// Put issues a PUT with a JSON payload.
func (c *Client) Put(ctx context.Context, endpoint string, payload any) (*Response, error) {
	return c.write(ctx, http.MethodPut, endpoint, payload)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.URLFor(endpoint), nil)
}

func (c *Client) write(ctx context.Context, method, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, method, c.URLFor(endpoint), body)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				metrics.QuotaExhaustedTotal.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting auth token: %w", err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.APIRequestsTotal.WithLabelValues(method, status).Inc()
	metrics.APIRequestDuration.WithLabelValues(method, status).
		Observe(time.Since(start).Seconds())

	c.logger.Debug("api request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
