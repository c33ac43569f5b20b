package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var allVars = []string{
	EnvServiceURL, EnvDebounceMS, EnvTimeoutSeconds,
	EnvRedpanda, EnvPostgresDSN, EnvHistoryDB, EnvLogFile,
}

// clearEnv unsets every config variable and restores the originals afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		original, had := os.LookupEnv(name)
		os.Unsetenv(name)
		t.Cleanup(func() {
			if had {
				os.Setenv(name, original)
			} else {
				os.Unsetenv(name)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		os.Setenv(EnvServiceURL, "http://localhost:8080")

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() unexpected error: %v", err)
		}

		if cfg.ServiceURL != "http://localhost:8080" {
			t.Errorf("LoadFromEnv() url = %v, want %v", cfg.ServiceURL, "http://localhost:8080")
		}
		if cfg.DebounceInterval != 300*time.Millisecond {
			t.Errorf("LoadFromEnv() debounce = %v, want 300ms", cfg.DebounceInterval)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("LoadFromEnv() timeout = %v, want 30s", cfg.RequestTimeout)
		}
		if len(cfg.RedpandaBrokers) != 0 {
			t.Errorf("LoadFromEnv() brokers = %v, want none", cfg.RedpandaBrokers)
		}
	})

	t.Run("all variables", func(t *testing.T) {
		clearEnv(t)
		os.Setenv(EnvServiceURL, "https://snps.example.com")
		os.Setenv(EnvDebounceMS, "150")
		os.Setenv(EnvTimeoutSeconds, "5")
		os.Setenv(EnvRedpanda, "localhost:19092, redpanda:9092")
		os.Setenv(EnvPostgresDSN, "postgres://u:p@localhost/snpscope?sslmode=disable")
		os.Setenv(EnvHistoryDB, "/tmp/history.db")
		os.Setenv(EnvLogFile, "/tmp/snpscope.log")

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() unexpected error: %v", err)
		}

		if cfg.DebounceInterval != 150*time.Millisecond {
			t.Errorf("debounce = %v, want 150ms", cfg.DebounceInterval)
		}
		if cfg.RequestTimeout != 5*time.Second {
			t.Errorf("timeout = %v, want 5s", cfg.RequestTimeout)
		}
		if !reflect.DeepEqual(cfg.RedpandaBrokers, []string{"localhost:19092", "redpanda:9092"}) {
			t.Errorf("brokers = %v", cfg.RedpandaBrokers)
		}
		if cfg.PostgresDSN == "" || cfg.HistoryDBPath != "/tmp/history.db" || cfg.LogFile != "/tmp/snpscope.log" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("missing url", func(t *testing.T) {
		clearEnv(t)

		_, err := LoadFromEnv()
		if err == nil {
			t.Error("LoadFromEnv() expected error for missing url, got nil")
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		clearEnv(t)
		os.Setenv(EnvServiceURL, "localhost:8080")

		_, err := LoadFromEnv()
		if err == nil {
			t.Error("LoadFromEnv() expected error for url without scheme, got nil")
		}
	})

	t.Run("invalid debounce", func(t *testing.T) {
		clearEnv(t)
		os.Setenv(EnvServiceURL, "http://localhost:8080")
		os.Setenv(EnvDebounceMS, "soon")

		_, err := LoadFromEnv()
		if err == nil {
			t.Error("LoadFromEnv() expected error for invalid debounce, got nil")
		}
	})

	t.Run("zero timeout", func(t *testing.T) {
		clearEnv(t)
		os.Setenv(EnvServiceURL, "http://localhost:8080")
		os.Setenv(EnvTimeoutSeconds, "0")

		_, err := LoadFromEnv()
		if err == nil {
			t.Error("LoadFromEnv() expected error for zero timeout, got nil")
		}
	})
}

func TestMustLoadFromEnv_Panics(t *testing.T) {
	clearEnv(t)

	defer func() {
		if recover() == nil {
			t.Error("MustLoadFromEnv() expected panic")
		}
	}()
	MustLoadFromEnv()
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := EnvServiceURL + "=http://from-dotenv:8080\n" + EnvDebounceMS + "=120\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	os.Setenv(EnvDebounceMS, "450")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvServiceURL); got != "http://from-dotenv:8080" {
		t.Errorf("service url = %q, want value from .env", got)
	}
	if got := os.Getenv(EnvDebounceMS); got != "450" {
		t.Errorf("debounce = %q, existing environment must win", got)
	}
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil for missing file", err)
	}
}
