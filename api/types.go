package api

import "time"

// Response is the envelope every JSON endpoint writes, success or
// failure. Data carries the endpoint payload; Error is set only when
// Success is false. RequestID echoes the X-Request-ID assigned by the
// middleware so a response can be matched to its log lines.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo is the wire form of an API error.
type ErrorInfo struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}
