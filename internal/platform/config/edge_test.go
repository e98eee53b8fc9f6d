package config

import (
	"testing"
	"time"
)

func TestLoadEdgeConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	for _, k := range []string{"PORT", "LOG_LEVEL", "PHOTO_HOSTS"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadEdgeConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadEdgeConfigFromEnv: %v", err)
	}
	if cfg.APITimeout != 10*time.Second || cfg.DefaultViewportWidth != 1024 || cfg.SessionBackend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.CookieSecure {
		t.Fatalf("cookies should default to secure")
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" || len(cfg.PhotoHosts) != 0 {
		t.Fatalf("unexpected defaults: port=%q level=%q hosts=%v", cfg.Port, cfg.LogLevel, cfg.PhotoHosts)
	}
}

func TestLoadEdgeConfigFromEnv_MissingBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	if _, err := LoadEdgeConfigFromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadEdgeConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("DEFAULT_VIEWPORT_WIDTH", "375")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PHOTO_HOSTS", " lh3.googleusercontent.com, ,cdn.example.com:8443")

	cfg, err := LoadEdgeConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadEdgeConfigFromEnv: %v", err)
	}
	if cfg.APITimeout != 3*time.Second || cfg.DefaultViewportWidth != 375 || cfg.SessionBackend != "redis" || cfg.CookieSecure {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Fatalf("port=%q level=%q", cfg.Port, cfg.LogLevel)
	}
	if len(cfg.PhotoHosts) != 2 || cfg.PhotoHosts[0] != "lh3.googleusercontent.com" || cfg.PhotoHosts[1] != "cdn.example.com:8443" {
		t.Fatalf("photo hosts=%q", cfg.PhotoHosts)
	}
}

func TestLoadEdgeConfigFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"relative base url":   {"API_BASE_URL": "/api"},
		"bad timeout":         {"API_TIMEOUT": "soon"},
		"bad backend":         {"SESSION_BACKEND": "mysql"},
		"postgres without db": {"SESSION_BACKEND": "postgres", "DATABASE_URL": ""},
		"bad viewport":        {"DEFAULT_VIEWPORT_WIDTH": "-3"},
		"bad port":            {"PORT": "http"},
		"bad log level":       {"LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("API_BASE_URL", "http://localhost:5000")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadEdgeConfigFromEnv(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
