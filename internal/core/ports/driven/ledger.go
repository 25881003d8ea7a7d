package driven

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

// RunLedger records harvest run history and the item keys each run
// appended. It backs the opt-in resume mode: keys from prior runs can
// seed a new run's deduplication set.
//
// Ledger writes are best-effort observability; a ledger failure never
// aborts a harvest.
type RunLedger interface {
	// BeginRun records the start of a run.
	BeginRun(ctx context.Context, status domain.RunStatus) error

	// FinishRun records a run's terminal state and final counters.
	FinishRun(ctx context.Context, result domain.RunResult) error

	// RecordItem records that a run appended the given key.
	RecordItem(ctx context.Context, runID string, key domain.ItemKey) error

	// HarvestedKeys returns the keys appended by prior runs for a
	// repository. Aborted runs count: their records reached the sink.
	HarvestedKeys(ctx context.Context, repository string) ([]domain.ItemKey, error)

	// Close releases the underlying storage.
	Close() error
}
