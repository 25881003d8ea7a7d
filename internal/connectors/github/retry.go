package github

import (
	"context"
	"errors"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/eipforge/eipharvest/internal/logger"
)

const (
	// BackoffBase is the first retry delay; each retry doubles it.
	BackoffBase = 2 * time.Second

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries = 5
)

// Operation performs one remote attempt. The response is returned even on
// failure so the executor can observe whatever quota metadata accompanied
// it.
type Operation func(ctx context.Context) (*gh.Response, error)

// Executor wraps remote calls with rate-budget gating, rate-limit-aware
// suspension, and bounded exponential backoff for transient failures.
type Executor struct {
	budget *RateBudget

	// base and maxRetries are fixed in production; tests shrink them.
	base       time.Duration
	maxRetries int
}

// NewExecutor creates an executor that owns the given budget for the
// duration of a run.
func NewExecutor(budget *RateBudget) *Executor {
	return &Executor{
		budget:     budget,
		base:       BackoffBase,
		maxRetries: MaxRetries,
	}
}

// Budget returns the executor's rate budget.
func (e *Executor) Budget() *RateBudget {
	return e.budget
}

// Do runs op until it succeeds, fails permanently, or the retry budget is
// exhausted.
//
// Rate-limit signals suspend until the window resets and do not consume a
// retry attempt. Transient failures back off base * 2^attempt. Permanent
// API failures (auth, missing resources, validation) surface immediately
// as *APIError. After maxRetries transient failures Do returns
// *RetryExhaustedError.
func (e *Executor) Do(ctx context.Context, op Operation) error {
	for attempt := 0; ; {
		if err := e.budget.Wait(ctx); err != nil {
			return err
		}

		resp, err := op(ctx)
		e.budget.Observe(resp)
		if err == nil {
			return nil
		}

		if resetAt, limited := rateLimitSignal(err); limited {
			logger.Debug("rate limit hit, waiting until %s", resetAt.Format(time.RFC3339))
			e.budget.Exhaust(resetAt)
			if werr := e.budget.WaitForReset(ctx); werr != nil {
				return werr
			}
			continue
		}

		if apiErr := permanentError(err); apiErr != nil {
			return apiErr
		}

		if attempt >= e.maxRetries {
			return &RetryExhaustedError{Attempts: attempt + 1, Err: err}
		}

		delay := e.base << attempt
		logger.Debug("transient error (attempt %d/%d), backing off %s: %v",
			attempt+1, e.maxRetries, delay, err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

// rateLimitSignal recognises the remote's explicit quota-exhaustion
// signals and extracts the time at which requests may resume.
func rateLimitSignal(err error) (time.Time, bool) {
	var primary *gh.RateLimitError
	if errors.As(err, &primary) {
		return primary.Rate.Reset.Time, true
	}

	var secondary *gh.AbuseRateLimitError
	if errors.As(err, &secondary) {
		retryAfter := time.Minute
		if secondary.RetryAfter != nil {
			retryAfter = *secondary.RetryAfter
		}
		return time.Now().Add(retryAfter), true
	}

	return time.Time{}, false
}

// permanentError converts non-retryable API responses to *APIError.
// Returns nil for transient failures (network errors, 5xx, parse errors).
func permanentError(err error) error {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) {
		return nil
	}
	if ghErr.Response == nil || !isNonRetryable(ghErr.Response.StatusCode) {
		return nil
	}

	url := ""
	if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
		url = ghErr.Response.Request.URL.String()
	}
	return &APIError{
		StatusCode: ghErr.Response.StatusCode,
		Message:    ghErr.Message,
		URL:        url,
	}
}
