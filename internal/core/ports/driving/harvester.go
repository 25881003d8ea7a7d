package driving

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

// Harvester drives a full harvest of a repository's issue and pull
// request streams into the durable sink.
type Harvester interface {
	// Run executes one harvest to completion. It returns the run result
	// even when the run aborts; the error then wraps
	// domain.ErrRunAborted.
	Run(ctx context.Context) (*domain.RunResult, error)

	// Status returns a snapshot of the active (or last) run for
	// progress reporting.
	Status() domain.RunStatus
}
