package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"govdash/pkg/platform/sentinel"
)

// StatusError is a non-2xx answer from the backend. It unwraps to the sentinel
// describing the failure class: ErrRejected for 4xx, ErrNotFound for 404 and
// ErrUnavailable for 5xx.
type StatusError struct {
	Endpoint   string
	StatusCode int
	// Detail is the backend's human-readable explanation, when it sent one.
	Detail string
	kind   error
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// Detail returns the backend's explanation carried by err, or "".
func Detail(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

func newStatusError(endpoint string, status int, body []byte) *StatusError {
	return NewStatusError(endpoint, status, parseDetail(body))
}

// NewStatusError classifies a backend status code into its sentinel kind.
func NewStatusError(endpoint string, status int, detail string) *StatusError {
	kind := sentinel.ErrRejected
	switch {
	case status == http.StatusNotFound:
		kind = sentinel.ErrNotFound
	case status >= http.StatusInternalServerError:
		kind = sentinel.ErrUnavailable
	}
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: status,
		Detail:     detail,
		kind:       kind,
	}
}

// parseDetail extracts {"detail": ...}. String details are returned as-is;
// structured ones (request validation errors) are returned as compact JSON.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(truncate(string(body), 256))
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return truncate(string(payload.Detail), 256)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// failureReason is a low-cardinality metric label for err.
func failureReason(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, sentinel.ErrRejected):
		return "rejected"
	case errors.Is(err, sentinel.ErrMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}
