// Package config provides configuration management for snpscope.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"snpscope/src/broker"
)

// Environment variables read by LoadFromEnv.
const (
	EnvServiceURL     = "SNPSCOPE_SERVICE_URL"
	EnvDebounceMS     = "SNPSCOPE_DEBOUNCE_MS"
	EnvTimeoutSeconds = "SNPSCOPE_TIMEOUT_SECONDS"
	EnvRedpanda       = "REDPANDA_BROKERS"
	EnvPostgresDSN    = "POSTGRES_DSN"
	EnvHistoryDB      = "SNPSCOPE_HISTORY_DB"
	EnvLogFile        = "SNPSCOPE_LOG_FILE"
)

const (
	DefaultDebounceInterval = 300 * time.Millisecond
	DefaultRequestTimeout   = 30 * time.Second
)

// Config holds the application configuration.
type Config struct {
	// ServiceURL is the root of the lookup service, e.g. http://localhost:8080.
	ServiceURL string
	// DebounceInterval is the quiet period before a suggestion lookup.
	DebounceInterval time.Duration
	// RequestTimeout bounds each call to the lookup service.
	RequestTimeout time.Duration
	// RedpandaBrokers enables distributed search events when non-empty.
	RedpandaBrokers []string
	// PostgresDSN stores search history in Postgres when set.
	PostgresDSN string
	// HistoryDBPath stores search history in a SQLite file when set.
	HistoryDBPath string
	// LogFile receives structured logs in interactive mode.
	LogFile string
}

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables, after reading
// an optional .env file in the working directory.
func LoadFromEnv() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	serviceURL := strings.TrimSpace(os.Getenv(EnvServiceURL))
	if serviceURL == "" {
		return nil, fmt.Errorf("%s environment variable is required", EnvServiceURL)
	}

	cfg := &Config{
		ServiceURL:       serviceURL,
		DebounceInterval: DefaultDebounceInterval,
		RequestTimeout:   DefaultRequestTimeout,
		RedpandaBrokers:  broker.ParseBrokers(os.Getenv(EnvRedpanda)),
		PostgresDSN:      strings.TrimSpace(os.Getenv(EnvPostgresDSN)),
		HistoryDBPath:    strings.TrimSpace(os.Getenv(EnvHistoryDB)),
		LogFile:          strings.TrimSpace(os.Getenv(EnvLogFile)),
	}

	if v := os.Getenv(EnvDebounceMS); v != "" {
		ms, err := positiveInt(EnvDebounceMS, v)
		if err != nil {
			return nil, err
		}
		cfg.DebounceInterval = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv(EnvTimeoutSeconds); v != "" {
		secs, err := positiveInt(EnvTimeoutSeconds, v)
		if err != nil {
			return nil, err
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks that the service URL is an absolute http(s) URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvServiceURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: expected http(s)://host[:port]", EnvServiceURL, c.ServiceURL)
	}
	return nil
}

func positiveInt(name, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, v)
	}
	return n, nil
}
