package driven

import "github.com/eipforge/eipharvest/internal/core/domain"

// RecordSink appends completed harvest records to durable storage.
// Each Append is a complete, independently-parseable record, durable once
// the call returns. The sink keeps no cross-run memory; deduplication is
// the orchestrator's responsibility.
type RecordSink interface {
	// Append writes one record and flushes it.
	Append(record domain.HarvestRecord) error

	// Path returns the output location for reporting.
	Path() string

	// Close releases the underlying storage.
	Close() error
}
