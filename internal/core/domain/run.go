package domain

import "time"

// RunState is the harvest orchestrator's lifecycle state.
type RunState string

const (
	// RunInit is the pre-flight state: credentials and quota checks.
	RunInit RunState = "init"

	// RunFetchingIssues drains the issues stream.
	RunFetchingIssues RunState = "fetching_issues"

	// RunFetchingPulls drains the pull requests stream.
	RunFetchingPulls RunState = "fetching_pulls"

	// RunDone is the successful terminal state.
	RunDone RunState = "done"

	// RunAborted is the terminal state for non-recoverable failures.
	// Records appended before the abort remain valid.
	RunAborted RunState = "aborted"
)

// Counters are the orchestrator's cumulative progress counts.
type Counters struct {
	// PagesSeen counts list pages fetched across both streams.
	PagesSeen int

	// ItemsProcessed counts records appended to the sink.
	ItemsProcessed int

	// ItemsSkipped counts items dropped after an expansion failure.
	ItemsSkipped int

	// ItemsExcluded counts pull-request rows excluded from the
	// issue stream.
	ItemsExcluded int

	// ItemsDeduplicated counts items dropped by the seen set.
	ItemsDeduplicated int
}

// RunStatus is a point-in-time snapshot of a harvest run for progress
// reporting.
type RunStatus struct {
	RunID      string
	Repository string
	State      RunState
	Counters   Counters
	StartedAt  time.Time
}

// RunResult is the outcome of a completed (or aborted) harvest run.
type RunResult struct {
	RunID      string
	Repository string
	State      RunState
	Counters   Counters
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
}
