// Package api holds the wire types of the HTTP API.
package api

import "time"

// HealthStatus values for the health endpoint.
type HealthStatus string

const Healthy HealthStatus = "healthy"

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    *int         `json:"uptime,omitempty"`
	Version   *string      `json:"version,omitempty"`
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Grid   string `json:"grid"`
}

// ValidateResponse carries the dimension advisory for an image/layout pair.
// The advisory is informational; it never blocks a split.
type ValidateResponse struct {
	Grid      string  `json:"grid"`
	Severity  string  `json:"severity"`
	Tolerance float64 `json:"tolerance"`
	Message   string  `json:"message"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
	Details   *map[string]interface{} `json:"details,omitempty"`
}
