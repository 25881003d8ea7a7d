package github

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError reports primary or secondary quota exhaustion with the
// time at which requests may resume. It is handled inside the retry
// executor and should not normally escape the connector.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// RetryExhaustedError indicates an operation failed transiently more times
// than the retry budget allows. Fatal for the single operation: the
// enclosing item is skipped, page-level callers abort the run.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("github: retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsRetryExhausted checks if the error indicates the retry budget ran out.
func IsRetryExhausted(err error) bool {
	var exhausted *RetryExhaustedError
	return errors.As(err, &exhausted)
}

// isNonRetryable reports whether an API status can never succeed on retry.
// Rate-limit 403s are recognised before this check; any other forbidden
// response is equally permanent, so 403 is listed here.
func isNonRetryable(status int) bool {
	switch status {
	case 400, 401, 403, 404, 410, 422, 451:
		return true
	}
	return false
}
