// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field is optional; running without a file connects to ws://127.0.0.1:8080/ws.
package config
