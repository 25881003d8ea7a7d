// Package memory provides an in-memory run ledger for testing.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// Ensure Ledger implements the run ledger port.
var _ driven.RunLedger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.RunLedger.
// Not persistent; intended for tests.
type Ledger struct {
	mu      sync.RWMutex
	runs    map[string]domain.RunResult            // keyed by run ID
	repos   map[string]string                      // run ID -> repository
	items   map[string]map[domain.ItemKey]struct{} // run ID -> recorded keys
	failing bool
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		runs:  make(map[string]domain.RunResult),
		repos: make(map[string]string),
		items: make(map[string]map[domain.ItemKey]struct{}),
	}
}

// SetFailing makes every subsequent write return an error. Used to verify
// that ledger failures never abort a harvest.
func (l *Ledger) SetFailing(failing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failing = failing
}

// BeginRun records the start of a run.
func (l *Ledger) BeginRun(_ context.Context, status domain.RunStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return fmt.Errorf("ledger unavailable")
	}

	l.runs[status.RunID] = domain.RunResult{
		RunID:      status.RunID,
		Repository: status.Repository,
		State:      status.State,
		StartedAt:  status.StartedAt,
	}
	l.repos[status.RunID] = status.Repository
	l.items[status.RunID] = make(map[domain.ItemKey]struct{})
	return nil
}

// FinishRun records a run's terminal state and final counters.
func (l *Ledger) FinishRun(_ context.Context, result domain.RunResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return fmt.Errorf("ledger unavailable")
	}

	l.runs[result.RunID] = result
	l.repos[result.RunID] = result.Repository
	return nil
}

// RecordItem records that a run appended the given key.
func (l *Ledger) RecordItem(_ context.Context, runID string, key domain.ItemKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return fmt.Errorf("ledger unavailable")
	}

	if l.items[runID] == nil {
		l.items[runID] = make(map[domain.ItemKey]struct{})
	}
	l.items[runID][key] = struct{}{}
	return nil
}

// HarvestedKeys returns the keys recorded by prior runs for a repository.
func (l *Ledger) HarvestedKeys(_ context.Context, repository string) ([]domain.ItemKey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[domain.ItemKey]struct{})
	var keys []domain.ItemKey
	for runID, repo := range l.repos {
		if repo != repository {
			continue
		}
		for key := range l.items[runID] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Runs returns the recorded results for a repository.
func (l *Ledger) Runs(repository string) []domain.RunResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []domain.RunResult
	for _, result := range l.runs {
		if repository == "" || result.Repository == repository {
			results = append(results, result)
		}
	}
	return results
}

// RecordedItems returns the keys recorded for one run.
func (l *Ledger) RecordedItems(runID string) []domain.ItemKey {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var keys []domain.ItemKey
	for key := range l.items[runID] {
		keys = append(keys, key)
	}
	return keys
}

// Close is a no-op for the in-memory ledger.
func (l *Ledger) Close() error {
	return nil
}
