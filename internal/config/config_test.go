package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("MIRAD_SERVER_URL", "")
	t.Setenv("MIRAD_PROXY_MODE", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	content := `[mirad]
server_url = http://files.example.com:8080
proxy_mode = no-proxy
request_timeout_seconds = 45
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://files.example.com:8080" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("ProxyMode = %q", cfg.ProxyMode)
	}
	if cfg.RequestTimeout() != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MIRAD_SERVER_URL", "")
	t.Setenv("MIRAD_PROXY_MODE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProxyMode != "system" {
		t.Errorf("ProxyMode = %q, want system default", cfg.ProxyMode)
	}
	if cfg.ServerURL != "" {
		t.Errorf("ServerURL = %q, want empty", cfg.ServerURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MIRAD_SERVER_URL", "http://env.example.com")
	t.Setenv("MIRAD_PROXY_MODE", "no-proxy")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "http://env.example.com" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("ProxyMode = %q", cfg.ProxyMode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing url", func(c *Config) { c.ServerURL = " " }, ErrMissingServerURL},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }, ErrInvalidTimeout},
		{"huge timeout", func(c *Config) { c.RequestTimeoutSeconds = 601 }, ErrInvalidTimeout},
		{"bad proxy", func(c *Config) { c.ProxyMode = "socks5" }, ErrInvalidProxyMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ServerURL = "http://localhost:8080"
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("MIRAD_SERVER_URL", "")
	t.Setenv("MIRAD_PROXY_MODE", "")

	path := filepath.Join(t.TempDir(), "nested", "config")

	cfg := DefaultConfig()
	cfg.ServerURL = "http://localhost:9000"
	cfg.RequestTimeoutSeconds = 42

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
	if loaded.RequestTimeoutSeconds != 42 {
		t.Errorf("RequestTimeoutSeconds = %d, want 42", loaded.RequestTimeoutSeconds)
	}
}
