package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config with token auth",
			yaml: `
store:
  domain: store.example.com
auth:
  token: abc123
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "store.example.com", cfg.Store.Domain)
				assert.Equal(t, "token", cfg.Auth.Method)
				assert.Equal(t, "abc123", cfg.Auth.Token)
			},
		},
		{
			name: "valid login auth",
			yaml: `
store:
  domain: store.example.com
auth:
  username: admin
  password: secret
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "login", cfg.Auth.Method)
				assert.Equal(t, "admin", cfg.Auth.Username)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
store:
  domain: store.example.com
auth:
  token: abc123
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https", cfg.Store.Scheme)
				assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
				assert.Equal(t, 10, cfg.RateLimit.Burst)
				assert.Equal(t, int64(3000), cfg.RateLimit.HourlyLimit)
				assert.Equal(t, time.Hour, cfg.RateLimit.Window)
				assert.Equal(t, 3, cfg.Retry.MaxAttempts)
				assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
				assert.Equal(t, 5*time.Second, cfg.Retry.MaxInterval)
				assert.Equal(t, 100, cfg.Search.PageSize)
				assert.Equal(t, 0, cfg.Search.MaxPages)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
store:
  domain: store.example.com
auth:
  token: "${TEST_MAGENTO_TOKEN}"
`,
			envVars: map[string]string{
				"TEST_MAGENTO_TOKEN": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Auth.Token)
			},
		},
		{
			name: "explicit values are kept",
			yaml: `
store:
  domain: localhost:8080
  scheme: http
  scope: all
auth:
  token: abc123
rate_limit:
  per_second: 2.5
  burst: 3
  hourly_limit: 500
retry:
  max_attempts: 5
search:
  page_size: 50
  max_pages: 4
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "http", cfg.Store.Scheme)
				assert.Equal(t, "all", cfg.Store.Scope)
				assert.Equal(t, 2.5, cfg.RateLimit.PerSecond)
				assert.Equal(t, int64(500), cfg.RateLimit.HourlyLimit)
				assert.Equal(t, 5, cfg.Retry.MaxAttempts)
				assert.Equal(t, 50, cfg.Search.PageSize)
				assert.Equal(t, 4, cfg.Search.MaxPages)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "missing required store.domain",
			yaml: `
auth:
  token: abc123
`,
			wantErr: "store.domain is required",
		},
		{
			name: "invalid scheme",
			yaml: `
store:
  domain: store.example.com
  scheme: ftp
auth:
  token: abc123
`,
			wantErr: "store.scheme must be http or https",
		},
		{
			name: "token method without token",
			yaml: `
store:
  domain: store.example.com
auth:
  method: token
`,
			wantErr: "auth.token is required",
		},
		{
			name: "login method without credentials",
			yaml: `
store:
  domain: store.example.com
auth:
  method: login
  username: admin
`,
			wantErr: "auth.username and auth.password are required",
		},
		{
			name: "unknown auth method",
			yaml: `
store:
  domain: store.example.com
auth:
  method: oauth
`,
			wantErr: "auth.method must be one of",
		},
		{
			name: "page size over the API maximum",
			yaml: `
store:
  domain: store.example.com
auth:
  token: abc123
search:
  page_size: 500
`,
			wantErr: "search.page_size must be in [1, 200]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not: valid"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config YAML")
}
