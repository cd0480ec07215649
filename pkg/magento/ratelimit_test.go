package magento_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/magento-go/pkg/magento"
)

func TestRateLimiter_QuotaExhaustion(t *testing.T) {
	t.Parallel()

	limiter := magento.NewRateLimiter(1000, 10, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}

	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, magento.ErrQuotaExhausted)

	assert.Equal(t, int64(3), limiter.Used())
	assert.Equal(t, int64(0), limiter.Remaining())
}

func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	now := time.Now()
	currentTime := now
	var mu sync.Mutex

	limiter := magento.NewRateLimiter(
		1000, 10, 2,
		magento.WithRateLimiterWindow(time.Hour),
		magento.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	require.ErrorIs(t, limiter.Wait(ctx), magento.ErrQuotaExhausted)

	// Roll past the window; the quota resets.
	mu.Lock()
	currentTime = now.Add(time.Hour + time.Minute)
	mu.Unlock()

	require.NoError(t, limiter.Wait(ctx))
	assert.Equal(t, int64(1), limiter.Used())
	assert.Equal(t, int64(1), limiter.Remaining())
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	t.Parallel()

	// A tiny rate with a drained burst forces Wait to block.
	limiter := magento.NewRateLimiter(0.01, 1, 100)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(cancelCtx)
	require.Error(t, err)
}

func TestRateLimiter_ResetAt(t *testing.T) {
	t.Parallel()

	now := time.Now()
	limiter := magento.NewRateLimiter(
		1000, 10, 5,
		magento.WithRateLimiterWindow(30*time.Minute),
		magento.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	assert.Equal(t, now.Add(30*time.Minute), limiter.ResetAt())
}
