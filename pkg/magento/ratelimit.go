package magento

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrQuotaExhausted is returned when the rolling-window request quota has
// been used up.
var ErrQuotaExhausted = errors.New("request quota exhausted")

// RateLimiter throttles outbound API calls. A token bucket caps the
// per-second rate and a rolling window caps total calls, which keeps a
// paginated bulk export from starving the store's admin API.
type RateLimiter struct {
	limiter  *rate.Limiter
	used     atomic.Int64
	maxCalls int64
	window   time.Duration

	mu      sync.Mutex
	resetAt time.Time
	nowFunc func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterWindow overrides the default 1-hour quota window.
func WithRateLimiterWindow(d time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		r.window = d
	}
}

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter with the given per-second rate, burst
// size, and per-window call quota. The window starts at construction and
// rolls forward each time it expires.
func NewRateLimiter(perSecond float64, burst int, maxCalls int64, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxCalls: maxCalls,
		window:   time.Hour,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(r.window)
	return r
}

// Wait blocks until the limiter allows the call or the context is canceled.
// Returns ErrQuotaExhausted when the window quota is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkWindowReset()

	if r.used.Load() >= r.maxCalls {
		return fmt.Errorf("%w (%d/%d)", ErrQuotaExhausted, r.used.Load(), r.maxCalls)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.used.Add(1)
	return nil
}

// Used returns the number of calls consumed in the current window.
func (r *RateLimiter) Used() int64 {
	return r.used.Load()
}

// Remaining returns the calls left in the current window.
func (r *RateLimiter) Remaining() int64 {
	remaining := r.maxCalls - r.used.Load()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt returns when the current quota window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkWindowReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.used.Store(0)
		r.resetAt = now.Add(r.window)
	}
}
