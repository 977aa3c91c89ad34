package config

import "time"

// Config is the root configuration for a wsecho client.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Loop       LoopConfig       `yaml:"loop"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ConnectionConfig holds websocket dial settings.
type ConnectionConfig struct {
	URL              string        `yaml:"url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`     // 0 = wait forever
	MaxMessageSize   int64         `yaml:"max_message_size"` // 0 = unlimited
}

// LoopConfig holds message loop settings.
type LoopConfig struct {
	DecodeErrors string `yaml:"decode_errors"` // "skip" or "close"
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // Optional rotated log file, teed with stdout
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   *bool  `yaml:"compress"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
