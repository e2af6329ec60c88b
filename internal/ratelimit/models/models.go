package models

import "time"

// EndpointClass groups routes that share one limit.
type EndpointClass string

const (
	// ClassLogin covers credential submission.
	ClassLogin EndpointClass = "login"
	// ClassUpload covers dataset uploads.
	ClassUpload EndpointClass = "upload"
)

// Limit is the allowance for one class: Requests per sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until a slot frees, when denied.
	RetryAfter int
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}
