package magento_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/magento-go/pkg/magento"
)

func TestStaticTokenProvider(t *testing.T) {
	t.Parallel()

	p := magento.NewStaticTokenProvider("integration-token")
	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "integration-token", token)
}

func TestAdminTokenProvider_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantErr    bool
		wantToken  string
		errContain string
	}{
		{
			name: "successful token fetch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				// Magento returns the token as a bare JSON string.
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`"abc123def456"`))
			},
			wantToken: "abc123def456",
		},
		{
			name: "invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(
					`{"message":"The account sign-in was incorrect or your account is disabled temporarily."}`,
				))
			},
			wantErr:    true,
			errContain: "status 401",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:    true,
			errContain: "status 500",
		},
		{
			name: "invalid JSON response",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr:    true,
			errContain: "parsing token response",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			provider := magento.NewAdminTokenProvider(
				"admin",
				"secret",
				srv.URL,
			)

			token, err := provider.Token(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAdminTokenProvider_TokenCaching(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		_, _ = w.Write([]byte(`"cached-token"`))
	}))
	defer srv.Close()

	provider := magento.NewAdminTokenProvider("admin", "secret", srv.URL)

	token1, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token1)
	assert.Equal(t, int32(1), callCount.Load())

	// Second call should return the cached token without an HTTP call.
	token2, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token2)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestAdminTokenProvider_RefreshOnExpiry(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	now := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		_, _ = w.Write([]byte(`"refreshed-token"`))
	}))
	defer srv.Close()

	currentTime := now
	var mu sync.Mutex

	provider := magento.NewAdminTokenProvider(
		"admin",
		"secret",
		srv.URL,
		magento.WithTokenLifetime(4*time.Hour),
		magento.WithTokenNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)

	_, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), callCount.Load())

	// Just inside the refresh buffer: still cached.
	mu.Lock()
	currentTime = now.Add(4*time.Hour - 2*time.Minute)
	mu.Unlock()

	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), callCount.Load())

	// Within 60 seconds of expiry: refresh.
	mu.Lock()
	currentTime = now.Add(4*time.Hour - 30*time.Second)
	mu.Unlock()

	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), callCount.Load())
}

func TestAdminTokenProvider_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount.Add(1)
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte(`"concurrent-token"`))
	}))
	defer srv.Close()

	provider := magento.NewAdminTokenProvider("admin", "secret", srv.URL)

	const goroutines = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			token, err := provider.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-token", token)
		}()
	}

	wg.Wait()

	assert.Less(t, callCount.Load(), int32(goroutines))
}

func TestAdminTokenProvider_RequestFormat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin", creds["username"])
		assert.Equal(t, "secret", creds["password"])

		_, _ = w.Write([]byte(`"format-test-token"`))
	}))
	defer srv.Close()

	provider := magento.NewAdminTokenProvider("admin", "secret", srv.URL)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "format-test-token", token)
}

func TestNewClientFromLogin(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/V1/integration/admin/token", byMethod(map[string]http.HandlerFunc{
		http.MethodPost: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`"login-token"`))
		},
	}))
	mux.HandleFunc("/rest/V1/orders", byMethod(map[string]http.HandlerFunc{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer login-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"items":[],"total_count":0}`))
		},
	}))

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := magento.NewClientFromLogin(
		srv.Listener.Addr().String(),
		"admin",
		"secret",
		magento.WithScheme("http"),
	)

	resp, err := c.Get(context.Background(), "orders", "")
	require.NoError(t, err)
	assert.True(t, resp.OK())
}
