package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrAuthRequired indicates the source requires authentication but
	// none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the configured credential was rejected.
	// Never retried: the run aborts.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRepoNotFound indicates the target repository does not exist or
	// is not accessible. Never retried: the run aborts.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRunAborted indicates a harvest run ended in the aborted state.
	// The sink's output remains valid up to the abort point.
	ErrRunAborted = errors.New("harvest run aborted")

	// ErrRunInProgress indicates a run is already active on this service.
	ErrRunInProgress = errors.New("harvest run in progress")

	// ErrLowQuotaDeclined indicates the operator declined to proceed with
	// an unauthenticated, low-quota run.
	ErrLowQuotaDeclined = errors.New("low quota run declined")

	// ErrSinkClosed indicates an append was attempted on a closed sink.
	ErrSinkClosed = errors.New("sink closed")
)
