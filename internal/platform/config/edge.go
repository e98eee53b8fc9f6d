package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// EdgeConfig configures the edge service and its client of the remote restaurant API.
type EdgeConfig struct {
	Port     string
	LogLevel string

	// APIBaseURL is the origin of the remote restaurant API (e.g. http://api:5000).
	APIBaseURL string
	APITimeout time.Duration

	// PhotoMaxBytes bounds a single fetched photo body.
	PhotoMaxBytes int64
	// PhotoHosts are hosts besides the API origin that fully-qualified photo
	// references may name.
	PhotoHosts []string
	// DefaultViewportWidth applies when a request carries no viewport hint.
	DefaultViewportWidth int

	SessionBackend string
	SessionTTL     time.Duration
	CookieSecure   bool

	DatabaseURL string
	RedisURL    string
}

func LoadEdgeConfigFromEnv() (EdgeConfig, error) {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		return EdgeConfig{}, fmt.Errorf("missing required env var: API_BASE_URL")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return EdgeConfig{}, fmt.Errorf("API_BASE_URL must be an absolute URL (e.g. http://localhost:5000)")
	}

	cfg := EdgeConfig{
		Port:                 "8080",
		LogLevel:             "info",
		APIBaseURL:           base,
		APITimeout:           10 * time.Second,
		PhotoMaxBytes:        8 << 20,
		DefaultViewportWidth: 1024,
		SessionBackend:       "memory",
		// Matches the remote API's access token lifetime.
		SessionTTL:   24 * time.Hour,
		CookieSecure: true,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
	}

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 || n > 65535 {
			return EdgeConfig{}, fmt.Errorf("PORT must be a TCP port number, got %q", v)
		}
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			return EdgeConfig{}, fmt.Errorf("LOG_LEVEL must be one of debug|info|warn|error, got %q", v)
		}
	}
	if v := os.Getenv("PHOTO_HOSTS"); v != "" {
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				cfg.PhotoHosts = append(cfg.PhotoHosts, h)
			}
		}
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return EdgeConfig{}, fmt.Errorf("API_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.APITimeout = d
	}
	if v := os.Getenv("PHOTO_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return EdgeConfig{}, fmt.Errorf("PHOTO_MAX_BYTES must be a positive integer")
		}
		cfg.PhotoMaxBytes = n
	}
	if v := os.Getenv("DEFAULT_VIEWPORT_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return EdgeConfig{}, fmt.Errorf("DEFAULT_VIEWPORT_WIDTH must be a positive integer")
		}
		cfg.DefaultViewportWidth = n
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		switch v {
		case "memory", "postgres", "redis":
			cfg.SessionBackend = v
		default:
			return EdgeConfig{}, fmt.Errorf("SESSION_BACKEND must be one of memory|postgres|redis, got %q", v)
		}
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return EdgeConfig{}, fmt.Errorf("SESSION_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return EdgeConfig{}, fmt.Errorf("COOKIE_SECURE must be a boolean: %w", err)
		}
		cfg.CookieSecure = b
	}

	switch cfg.SessionBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return EdgeConfig{}, fmt.Errorf("SESSION_BACKEND=postgres requires DATABASE_URL")
		}
	case "redis":
		if cfg.RedisURL == "" {
			return EdgeConfig{}, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_URL")
		}
	}

	return cfg, nil
}
