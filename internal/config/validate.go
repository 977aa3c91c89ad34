package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Connection.validate("connection"); err != nil {
		return err
	}

	switch c.Loop.DecodeErrors {
	case DecodeErrorsSkip, DecodeErrorsClose:
	default:
		return fmt.Errorf("loop.decode_errors must be %q or %q, got %q", DecodeErrorsSkip, DecodeErrorsClose, c.Loop.DecodeErrors)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation limits must be >= 0")
	}

	// The metrics mux always serves /health.
	if c.Metrics.Path == "/health" {
		return errors.New("metrics.path must not be /health")
	}
	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
	}

	return nil
}

func (cc *ConnectionConfig) validate(prefix string) error {
	if cc.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	u, err := url.Parse(cc.URL)
	if err != nil {
		return fmt.Errorf("%s.url is invalid: %w", prefix, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%s.url scheme must be ws or wss, got %q", prefix, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s.url host is required", prefix)
	}
	if cc.HandshakeTimeout < 0 {
		return fmt.Errorf("%s.handshake_timeout must be >= 0", prefix)
	}
	if cc.WriteTimeout < 0 {
		return fmt.Errorf("%s.write_timeout must be >= 0", prefix)
	}
	if cc.ReadTimeout < 0 {
		return fmt.Errorf("%s.read_timeout must be >= 0", prefix)
	}
	if cc.MaxMessageSize < 0 {
		return fmt.Errorf("%s.max_message_size must be >= 0", prefix)
	}
	return nil
}
