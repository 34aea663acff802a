// Package config provides configuration management for the client.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\mirad\config
//   - Unix: ~/.config/mirad/config
//
// INI format:
//
//	[mirad]
//	server_url = http://localhost:8080
//	proxy_mode = system
//	request_timeout_seconds = 30
//
// Environment variables MIRAD_SERVER_URL and MIRAD_PROXY_MODE override the
// file; flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/ASL66/mirad-upload/internal/constants"
)

// Validation errors
var (
	ErrMissingServerURL = errors.New("server_url is required")
	ErrInvalidTimeout   = errors.New("request_timeout_seconds must be between 1 and 600")
	ErrInvalidProxyMode = errors.New("proxy_mode must be one of: system, no-proxy")
)

// Config is the client configuration.
type Config struct {
	// ServerURL is the base URL of the file-manager server.
	ServerURL string `ini:"server_url"`

	// ProxyMode selects proxy handling: "system" reads the standard proxy
	// environment variables, "no-proxy" disables proxying entirely.
	ProxyMode string `ini:"proxy_mode"`

	// RequestTimeoutSeconds bounds short calls (list, delete, auth).
	// Uploads and downloads set their own deadlines via context.
	RequestTimeoutSeconds int `ini:"request_timeout_seconds"`
}

// DefaultConfig returns a config with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		ProxyMode:             "system",
		RequestTimeoutSeconds: int(constants.HTTPRequestTimeout / time.Second),
	}
}

// DefaultPath returns the default path for the config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mirad", "config"), nil
}

// Load reads the config file at path (the default path when empty) and
// applies environment overrides. A missing file is not an error. Callers
// validate after layering their own overrides (flags) on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if err := file.Section("mirad").MapTo(cfg); err != nil {
			return nil, fmt.Errorf("failed to map config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := ini.Empty()
	if err := file.Section("mirad").ReflectFrom(c); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the config for usability.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrMissingServerURL
	}
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > 600 {
		return ErrInvalidTimeout
	}
	switch c.ProxyMode {
	case "system", "no-proxy":
	default:
		return ErrInvalidProxyMode
	}
	return nil
}

// RequestTimeout returns the short-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRAD_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("MIRAD_PROXY_MODE"); v != "" {
		cfg.ProxyMode = v
	}
}
