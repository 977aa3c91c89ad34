package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultURL              = "ws://127.0.0.1:8080/ws"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultDecodeErrors     = DecodeErrorsSkip
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogMaxSizeMB     = 10
	DefaultLogMaxBackups    = 3
	DefaultLogMaxAgeDays    = 28
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
)

// Decode error policies for the message loop.
const (
	DecodeErrorsSkip  = "skip"
	DecodeErrorsClose = "close"
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	// Connection defaults
	if c.Connection.URL == "" {
		c.Connection.URL = DefaultURL
	}
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}

	// Loop defaults
	if c.Loop.DecodeErrors == "" {
		c.Loop.DecodeErrors = DefaultDecodeErrors
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if c.Log.Compress == nil {
		compress := true
		c.Log.Compress = &compress
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
