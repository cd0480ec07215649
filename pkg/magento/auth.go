package magento

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/donaldgifford/magento-go/internal/metrics"
)

const (
	// Admin tokens are valid for 4 hours on a stock Magento install.
	defaultTokenLifetime = 4 * time.Hour
	refreshBuffer        = 60 * time.Second
)

// TokenProvider supplies a bearer token for API requests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider wraps a long-lived integration token.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider returns a provider that always yields the given
// integration token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token implements TokenProvider.
func (p *StaticTokenProvider) Token(context.Context) (string, error) {
	return p.token, nil
}

// AdminTokenProvider implements TokenProvider using the Magento admin
// integration token endpoint. It caches tokens and refreshes automatically
// when expired or within 60 seconds of expiry. Thread-safe via mutex.
type AdminTokenProvider struct {
	username string
	password string
	tokenURL string
	client   *http.Client
	lifetime time.Duration

	mu      sync.Mutex
	token   string
	expiry  time.Time
	nowFunc func() time.Time // for testing
}

// AdminTokenOption configures the AdminTokenProvider.
type AdminTokenOption func(*AdminTokenProvider)

// WithTokenHTTPClient overrides the default HTTP client.
func WithTokenHTTPClient(c *http.Client) AdminTokenOption {
	return func(p *AdminTokenProvider) {
		p.client = c
	}
}

// WithTokenLifetime overrides the assumed token lifetime. Magento does not
// report expiry, so the provider tracks it from the configured lifetime.
func WithTokenLifetime(d time.Duration) AdminTokenOption {
	return func(p *AdminTokenProvider) {
		p.lifetime = d
	}
}

// WithTokenNowFunc overrides the time function for testing.
func WithTokenNowFunc(f func() time.Time) AdminTokenOption {
	return func(p *AdminTokenProvider) {
		p.nowFunc = f
	}
}

// NewAdminTokenProvider creates a token provider for the admin
// username/password flow. tokenURL is the absolute URL of the
// integration/admin/token endpoint; the Client wires it up from its
// configured domain.
func NewAdminTokenProvider(username, password, tokenURL string, opts ...AdminTokenOption) *AdminTokenProvider {
	p := &AdminTokenProvider{
		username: username,
		password: password,
		tokenURL: tokenURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		lifetime: defaultTokenLifetime,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns a valid admin token, refreshing if necessary.
func (p *AdminTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.nowFunc().Before(p.expiry.Add(-refreshBuffer)) {
		return p.token, nil
	}

	return p.refreshLocked(ctx)
}

func (p *AdminTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": p.username,
		"password": p.password,
	})
	if err != nil {
		return "", fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"token request failed (status %d): %s",
			resp.StatusCode,
			parseAPIMessage(body),
		)
	}

	// The endpoint returns the token as a bare JSON string.
	var token string
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}

	p.token = token
	p.expiry = p.nowFunc().Add(p.lifetime)
	metrics.TokenRefreshesTotal.Inc()

	return p.token, nil
}
