package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateBudget_Observe(t *testing.T) {
	t.Run("updates snapshot from response metadata", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		resetAt := time.Now().Add(42 * time.Minute).Truncate(time.Second)

		budget.Observe(&gh.Response{
			Response: &http.Response{StatusCode: http.StatusOK},
			Rate:     gh.Rate{Limit: 5000, Remaining: 4321, Reset: gh.Timestamp{Time: resetAt}},
		})

		snap := budget.Snapshot()
		assert.Equal(t, 4321, snap.Remaining)
		assert.Equal(t, 5000, snap.Limit)
		assert.Equal(t, resetAt, snap.ResetAt)
	})

	t.Run("ignores nil responses", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		before := budget.Snapshot()

		budget.Observe(nil)

		assert.Equal(t, before, budget.Snapshot())
	})

	t.Run("ignores responses without rate metadata", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		before := budget.Snapshot()

		budget.Observe(&gh.Response{Response: &http.Response{StatusCode: http.StatusOK}})

		assert.Equal(t, before, budget.Snapshot())
	})
}

func TestRateBudget_HasQuota(t *testing.T) {
	budget := newRateBudget(rate.Inf)
	assert.True(t, budget.HasQuota(), "a fresh budget is optimistic")

	budget.Observe(&gh.Response{
		Response: &http.Response{StatusCode: http.StatusOK},
		Rate:     gh.Rate{Limit: 60, Remaining: 0, Reset: gh.Timestamp{Time: time.Now().Add(time.Hour)}},
	})
	assert.False(t, budget.HasQuota())
}

func TestRateBudget_Exhaust(t *testing.T) {
	budget := newRateBudget(rate.Inf)
	resetAt := time.Now().Add(time.Minute)

	budget.Exhaust(resetAt)

	snap := budget.Snapshot()
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, resetAt, snap.ResetAt)

	// An earlier reset must not shorten the suspension already in force.
	budget.Exhaust(resetAt.Add(-30 * time.Second))
	assert.Equal(t, resetAt, budget.Snapshot().ResetAt)
}

func TestRateBudget_WaitForReset(t *testing.T) {
	t.Run("blocks until the reset time then restores the budget", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		budget.Observe(&gh.Response{
			Response: &http.Response{StatusCode: http.StatusOK},
			Rate: gh.Rate{
				Limit:     5000,
				Remaining: 0,
				Reset:     gh.Timestamp{Time: time.Now().Add(120 * time.Millisecond)},
			},
		})

		start := time.Now()
		require.NoError(t, budget.WaitForReset(context.Background()))

		assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
		assert.Equal(t, 5000, budget.Snapshot().Remaining,
			"remaining restores optimistically after the window resets")
	})

	t.Run("returns immediately when the reset time has passed", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		budget.Exhaust(time.Now().Add(-time.Second))

		start := time.Now()
		require.NoError(t, budget.WaitForReset(context.Background()))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
		assert.True(t, budget.HasQuota())
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		budget.Exhaust(time.Now().Add(time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := budget.WaitForReset(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, budget.HasQuota(), "a cancelled wait must not restore the budget")
	})
}

func TestRateBudget_Wait(t *testing.T) {
	t.Run("passes through while quota remains", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)

		start := time.Now()
		require.NoError(t, budget.Wait(context.Background()))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("suspends at the reactive floor", func(t *testing.T) {
		budget := newRateBudget(rate.Inf)
		budget.Observe(&gh.Response{
			Response: &http.Response{StatusCode: http.StatusOK},
			Rate: gh.Rate{
				Limit:     60,
				Remaining: 0,
				Reset:     gh.Timestamp{Time: time.Now().Add(100 * time.Millisecond)},
			},
		})

		start := time.Now()
		require.NoError(t, budget.Wait(context.Background()))

		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
		assert.True(t, budget.HasQuota())
	})
}
