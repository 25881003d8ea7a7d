package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

const (
	// AuthenticatedLimit is the authenticated hourly request limit.
	AuthenticatedLimit = 5000

	// UnauthenticatedLimit is the anonymous hourly request limit.
	UnauthenticatedLimit = 60

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// MinRemaining is the reactive floor: at or below this many remaining
	// requests the budget blocks until the window resets.
	MinRemaining = 0
)

// RateBudget tracks the request quota reported by the API and gates
// outgoing calls with a dual strategy: a proactive token bucket plus a
// reactive wait-for-reset once the reported budget is exhausted.
//
// The budget is owned by the retry executor for the duration of a harvest
// run; no other component mutates it.
type RateBudget struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetAt   time.Time
	bucket    *rate.Limiter
}

// NewRateBudget creates a rate budget with proactive throttling. The
// remaining count starts optimistic and is corrected by the first Observe.
func NewRateBudget() *RateBudget {
	return newRateBudget(rate.Limit(ProactiveRate))
}

func newRateBudget(proactive rate.Limit) *RateBudget {
	return &RateBudget{
		remaining: AuthenticatedLimit,
		limit:     AuthenticatedLimit,
		bucket:    rate.NewLimiter(proactive, 1),
	}
}

// Wait blocks until it is safe to make a request: first the proactive
// bucket, then the reactive floor. Returns early on ctx cancellation.
func (b *RateBudget) Wait(ctx context.Context) error {
	if err := b.bucket.Wait(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	exhausted := b.remaining <= MinRemaining
	b.mu.Unlock()

	if exhausted {
		return b.WaitForReset(ctx)
	}
	return nil
}

// Observe updates the budget from a response's rate metadata, when present.
func (b *RateBudget) Observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining = resp.Rate.Remaining
	b.limit = resp.Rate.Limit
	b.resetAt = resp.Rate.Reset.Time
}

// ObserveQuota updates the budget from an explicit quota query.
func (b *RateBudget) ObserveQuota(q domain.Quota) {
	if q.Limit == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining = q.Remaining
	b.limit = q.Limit
	b.resetAt = q.ResetAt
}

// Exhaust marks the budget empty until the given reset time. Used when the
// remote signals rate limiting out of band (secondary limits, Retry-After).
func (b *RateBudget) Exhaust(resetAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining = 0
	if resetAt.After(b.resetAt) {
		b.resetAt = resetAt
	}
}

// HasQuota reports whether at least one request remains in the window.
func (b *RateBudget) HasQuota() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining > 0
}

// Snapshot returns the budget's current view of the quota.
func (b *RateBudget) Snapshot() domain.Quota {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.Quota{Remaining: b.remaining, Limit: b.limit, ResetAt: b.resetAt}
}

// WaitForReset blocks until the window reset time has elapsed, then
// restores an optimistic remaining count that holds until the next
// Observe. Returns early on ctx cancellation.
func (b *RateBudget) WaitForReset(ctx context.Context) error {
	b.mu.Lock()
	resetAt := b.resetAt
	b.mu.Unlock()

	if wait := time.Until(resetAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// The window has replenished; assume a full budget until the next
	// response reports the real figure.
	if b.remaining <= MinRemaining {
		if b.limit > 0 {
			b.remaining = b.limit
		} else {
			b.remaining = AuthenticatedLimit
		}
	}
	return nil
}
