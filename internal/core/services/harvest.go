package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
	"github.com/eipforge/eipharvest/internal/core/ports/driving"
	"github.com/eipforge/eipharvest/internal/logger"
)

// Ensure HarvestService implements the interface.
var _ driving.Harvester = (*HarvestService)(nil)

// LowQuotaThreshold is the remaining-request count below which an
// unauthenticated run requires explicit confirmation. An unauthenticated
// window is 60 requests; a repository of any size burns through that
// before the first page of comments.
const LowQuotaThreshold = 100

// ConfirmFunc asks the operator whether to proceed with a low-quota run.
type ConfirmFunc func(quota domain.Quota) bool

// HarvestOptions tune a harvest run.
type HarvestOptions struct {
	// Resume seeds the deduplication set with keys recorded by prior
	// runs, so an interrupted harvest picks up where it left off.
	Resume bool

	// Confirm is consulted when an unauthenticated run starts with the
	// remaining quota below LowQuotaThreshold. Nil declines.
	Confirm ConfirmFunc
}

// HarvestService orchestrates one harvest run: issues first, then pull
// requests, each stream walked page by page, each item expanded and
// appended to the sink. Single worker; ordering within a stream follows
// the source's listing order.
type HarvestService struct {
	source driven.HarvestSource
	sink   driven.RecordSink
	ledger driven.RunLedger
	opts   HarvestOptions

	mu      sync.RWMutex
	running bool
	status  domain.RunStatus
}

// NewHarvestService creates a harvest orchestrator. The ledger may be nil,
// which disables run history and resume.
func NewHarvestService(
	source driven.HarvestSource,
	sink driven.RecordSink,
	ledger driven.RunLedger,
	opts HarvestOptions,
) *HarvestService {
	return &HarvestService{
		source: source,
		sink:   sink,
		ledger: ledger,
		opts:   opts,
	}
}

// Run executes one harvest to completion. Only one run may be active per
// service. The result is returned even when the run aborts; the error then
// wraps domain.ErrRunAborted and the sink's output remains valid up to the
// abort point.
func (s *HarvestService) Run(ctx context.Context) (*domain.RunResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	s.running = true
	s.status = domain.RunStatus{
		RunID:      uuid.NewString(),
		Repository: s.source.Repository(),
		State:      domain.RunInit,
		StartedAt:  time.Now().UTC(),
	}
	status := s.status
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return s.run(ctx, status)
}

// Status returns a snapshot of the active (or last) run.
func (s *HarvestService) Status() domain.RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *HarvestService) run(ctx context.Context, status domain.RunStatus) (*domain.RunResult, error) {
	if err := s.source.Validate(ctx); err != nil {
		return s.abort(ctx, status, domain.Counters{}, fmt.Errorf("validate: %w", err))
	}

	if !s.source.Authenticated() {
		if err := s.checkLowQuota(ctx); err != nil {
			return s.abort(ctx, status, domain.Counters{}, err)
		}
	}

	s.beginLedgerRun(ctx, status)

	seen, err := s.seedSeenSet(ctx, status.Repository)
	if err != nil {
		// Resume without the prior keys would silently duplicate records.
		return s.abort(ctx, status, domain.Counters{}, fmt.Errorf("resume: %w", err))
	}

	var counters domain.Counters

	for _, kind := range domain.Streams() {
		s.setState(streamState(kind))
		logger.Info("Fetching %s stream for %s", kind, status.Repository)

		if err := s.drainStream(ctx, status.RunID, kind, seen, &counters); err != nil {
			return s.abort(ctx, status, counters, err)
		}
	}

	s.setState(domain.RunDone)
	result := s.result(status, counters, domain.RunDone)
	s.finishLedgerRun(ctx, result)

	logger.Info("Harvest complete: %d items, %d skipped, %d pages",
		counters.ItemsProcessed, counters.ItemsSkipped, counters.PagesSeen)
	return &result, nil
}

// drainStream walks one resource stream page by page until an empty page.
func (s *HarvestService) drainStream(
	ctx context.Context,
	runID string,
	kind domain.ResourceKind,
	seen map[domain.ItemKey]struct{},
	counters *domain.Counters,
) error {
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		listed, err := s.source.ListPage(ctx, kind, page)
		if err != nil {
			// A failed page has no well-defined partial result.
			return fmt.Errorf("list %s page %d: %w", kind, page, err)
		}

		counters.PagesSeen++
		s.setCounters(*counters)

		if listed.Empty() {
			return nil
		}

		for _, item := range listed.Items {
			if err := s.processItem(ctx, runID, item, seen, counters); err != nil {
				return err
			}
			s.setCounters(*counters)
		}
	}
}

// processItem expands one item and appends it to the sink. Expansion
// failures are isolated to the item; sink failures are fatal because the
// output's durability guarantee is gone.
func (s *HarvestService) processItem(
	ctx context.Context,
	runID string,
	item domain.HarvestItem,
	seen map[domain.ItemKey]struct{},
	counters *domain.Counters,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := item.Key()
	if _, dup := seen[key]; dup {
		counters.ItemsDeduplicated++
		return nil
	}

	record, err := s.source.Expand(ctx, item)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		counters.ItemsSkipped++
		logger.Warn("Skipping %s #%d: %v", item.Kind, item.Number(), err)
		return nil
	}
	if record == nil {
		counters.ItemsExcluded++
		logger.Debug("Excluding #%d: pull request cross-reference", item.Number())
		return nil
	}

	if err := s.sink.Append(*record); err != nil {
		return fmt.Errorf("append %s #%d: %w", item.Kind, item.Number(), err)
	}

	seen[key] = struct{}{}
	counters.ItemsProcessed++
	s.recordLedgerItem(ctx, runID, key)
	return nil
}

// checkLowQuota asks for confirmation before an unauthenticated run with
// little remaining quota. A failed quota read is not fatal; the rate
// budget will learn the real figure from the first response.
func (s *HarvestService) checkLowQuota(ctx context.Context) error {
	quota, err := s.source.Quota(ctx)
	if err != nil {
		logger.Warn("Could not read quota before starting: %v", err)
		return nil
	}

	if quota.Remaining >= LowQuotaThreshold {
		return nil
	}

	if s.opts.Confirm != nil && s.opts.Confirm(quota) {
		logger.Info("Proceeding unauthenticated with %d requests remaining", quota.Remaining)
		return nil
	}
	return fmt.Errorf("%w: %d of %d requests remaining until %s",
		domain.ErrLowQuotaDeclined, quota.Remaining, quota.Limit,
		quota.ResetAt.Format(time.RFC3339))
}

// seedSeenSet returns the initial deduplication set: empty, or the prior
// runs' keys when resuming.
func (s *HarvestService) seedSeenSet(ctx context.Context, repository string) (map[domain.ItemKey]struct{}, error) {
	seen := make(map[domain.ItemKey]struct{})
	if !s.opts.Resume || s.ledger == nil {
		return seen, nil
	}

	keys, err := s.ledger.HarvestedKeys(ctx, repository)
	if err != nil {
		return nil, fmt.Errorf("load harvested keys: %w", err)
	}
	for _, key := range keys {
		seen[key] = struct{}{}
	}

	logger.Info("Resuming: %d items already harvested", len(keys))
	return seen, nil
}

// abort records the aborted terminal state and returns the partial result.
func (s *HarvestService) abort(
	ctx context.Context,
	status domain.RunStatus,
	counters domain.Counters,
	cause error,
) (*domain.RunResult, error) {
	s.setState(domain.RunAborted)
	result := s.result(status, counters, domain.RunAborted)
	s.finishLedgerRun(ctx, result)

	return &result, fmt.Errorf("%w: %w", domain.ErrRunAborted, cause)
}

func (s *HarvestService) result(
	status domain.RunStatus,
	counters domain.Counters,
	state domain.RunState,
) domain.RunResult {
	return domain.RunResult{
		RunID:      status.RunID,
		Repository: status.Repository,
		State:      state,
		Counters:   counters,
		OutputPath: s.sink.Path(),
		StartedAt:  status.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
}

// Ledger writes are best-effort: history must never break a harvest.

func (s *HarvestService) beginLedgerRun(ctx context.Context, status domain.RunStatus) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.BeginRun(ctx, status); err != nil {
		logger.Warn("Ledger: could not record run start: %v", err)
	}
}

func (s *HarvestService) finishLedgerRun(ctx context.Context, result domain.RunResult) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.FinishRun(ctx, result); err != nil {
		logger.Warn("Ledger: could not record run finish: %v", err)
	}
}

func (s *HarvestService) recordLedgerItem(ctx context.Context, runID string, key domain.ItemKey) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordItem(ctx, runID, key); err != nil {
		logger.Warn("Ledger: could not record %s #%d: %v", key.Kind, key.Number, err)
	}
}

func (s *HarvestService) setState(state domain.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state
}

func (s *HarvestService) setCounters(counters domain.Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Counters = counters
}

func streamState(kind domain.ResourceKind) domain.RunState {
	if kind == domain.KindPullRequest {
		return domain.RunFetchingPulls
	}
	return domain.RunFetchingIssues
}
