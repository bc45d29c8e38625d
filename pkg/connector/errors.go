package connector

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the requested object does not exist or is
	// not shared with the integration.
	ErrNotFound = errors.New("notion object not found")

	// ErrRateLimited is returned when a request is still rate limited after
	// all retries are exhausted.
	ErrRateLimited = errors.New("notion API rate limit exceeded")

	// ErrUnknownAggregate is returned when a list aggregate is requested for a
	// block type that is not a list item. It indicates a bug.
	ErrUnknownAggregate = errors.New("unknown aggregate block type")
)

// APIError is an error response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error (status %d, code %s): %s",
		e.Status, e.Code, e.Message)
}

// Unwrap maps API error codes onto the package sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Code == "object_not_found" || e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Code == "rate_limited" || e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

func (e *APIError) retryable() bool {
	return e.Status == http.StatusTooManyRequests ||
		e.Status == http.StatusBadGateway ||
		e.Status == http.StatusServiceUnavailable ||
		e.Status == http.StatusGatewayTimeout ||
		e.Status == http.StatusInternalServerError
}
