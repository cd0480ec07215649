// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig identifies the Magento store to talk to.
type StoreConfig struct {
	Domain    string `yaml:"domain"`
	Scheme    string `yaml:"scheme"`     // http or https
	Scope     string `yaml:"scope"`      // store view code, empty for default
	UserAgent string `yaml:"user_agent"` // optional override
}

// AuthConfig selects how requests are authenticated. Method "token" uses a
// long-lived integration token; "login" exchanges admin credentials for
// short-lived tokens.
type AuthConfig struct {
	Method   string `yaml:"method"` // token or login
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RateLimitConfig defines outbound API rate limiting settings.
type RateLimitConfig struct {
	PerSecond   float64       `yaml:"per_second"`
	Burst       int           `yaml:"burst"`
	HourlyLimit int64         `yaml:"hourly_limit"`
	Window      time.Duration `yaml:"window"`
}

// RetryConfig bounds retries of transient transport faults.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// SearchConfig defines paginated search defaults.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
	MaxPages int `yaml:"max_pages"` // 0 means unbounded
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyStoreDefaults(&cfg.Store)
	applyAuthDefaults(&cfg.Auth)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyRetryDefaults(&cfg.Retry)
	applySearchDefaults(&cfg.Search)
	applyLoggingDefaults(&cfg.Logging)
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Scheme == "" {
		s.Scheme = "https"
	}
}

func applyAuthDefaults(a *AuthConfig) {
	if a.Method != "" {
		return
	}
	// Infer the method from which credentials are present.
	if a.Token != "" {
		a.Method = "token"
	} else {
		a.Method = "login"
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.HourlyLimit == 0 {
		r.HourlyLimit = 3000
	}
	if r.Window == 0 {
		r.Window = time.Hour
	}
}

func applyRetryDefaults(r *RetryConfig) {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialInterval == 0 {
		r.InitialInterval = 500 * time.Millisecond
	}
	if r.MaxInterval == 0 {
		r.MaxInterval = 5 * time.Second
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.PageSize == 0 {
		s.PageSize = 100
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Store.Domain == "" {
		errs = append(errs, fmt.Errorf("store.domain is required"))
	}
	if cfg.Store.Scheme != "http" && cfg.Store.Scheme != "https" {
		errs = append(errs, fmt.Errorf("store.scheme must be http or https (got %q)", cfg.Store.Scheme))
	}

	switch cfg.Auth.Method {
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, fmt.Errorf("auth.token is required when method is token"))
		}
	case "login":
		if cfg.Auth.Username == "" || cfg.Auth.Password == "" {
			errs = append(
				errs,
				fmt.Errorf("auth.username and auth.password are required when method is login"),
			)
		}
	default:
		errs = append(
			errs,
			fmt.Errorf("auth.method must be one of: token, login (got %q)", cfg.Auth.Method),
		)
	}

	if cfg.Search.PageSize < 0 || cfg.Search.PageSize > 200 {
		errs = append(errs, fmt.Errorf("search.page_size must be in [1, 200] (got %d)", cfg.Search.PageSize))
	}

	return errors.Join(errs...)
}
