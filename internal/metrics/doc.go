// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Dial attempts and outcomes
//   - Frames received by type, messages echoed, echo latency
//   - Decode failures
//   - Current message loop state
//
// Server exposes the registry alongside a JSON /health endpoint.
package metrics
