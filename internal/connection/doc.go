// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Dials exactly one outbound WebSocket session per run
//   - Answers server pings, hides control frames from callers
//   - Applies handshake, write and optional read deadlines
//   - Reports every transport failure as an *Error (never retried)
package connection
