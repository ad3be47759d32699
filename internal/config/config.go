package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// External data store
	StoreAPIURL  string
	StoreTimeout time.Duration

	// Dev server (local implementation of the store contract)
	DevServerPort string
	SQLiteDBPath  string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		StoreAPIURL:  getEnv("STORE_API_URL", "http://localhost:4001/api"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 10*time.Second),

		DevServerPort: getEnv("DEVSERVER_PORT", "4001"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/onero.db"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	for name, port := range map[string]string{"port": c.Port, "devserver port": c.DevServerPort} {
		if p, err := strconv.Atoi(port); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': must be a number", name, port))
		} else if p < 1 || p > 65535 {
			errs = append(errs, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, p))
		}
	}

	if parsed, err := url.Parse(c.StoreAPIURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid store API URL '%s': %v", c.StoreAPIURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid store API URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid store timeout %v: must be positive", c.StoreTimeout))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SlogLevel maps the configured log level to its slog value. Unknown
// levels fall back to info; Validate rejects them anyway.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
