// Package github implements the harvest source for GitHub repositories.
//
// The package fetches a repository's issues and pull requests — with their
// comments, review comments, and reaction tallies — page by page, and
// converts them to the domain types the orchestrator streams into the
// durable sink.
//
// # Architecture
//
// The package comprises the following components:
//
//   - Client: the [driven.HarvestSource] implementation; one instance per
//     target repository
//   - RateBudget: tracks the quota reported by the API and gates calls
//   - Executor: wraps every remote attempt with retry, backoff, and
//     rate-limit-aware suspension
//   - ListPage / Expand: the pagination walker and the nested-resource
//     fetcher built on the executor
//
// # Rate Limiting
//
// A dual-strategy approach:
//
//  1. Proactive throttling: a token bucket limits requests to roughly 1.2
//     per second, staying under the 5,000/hour authenticated limit.
//
//  2. Reactive handling: the budget observes the rate metadata on every
//     response. Once the reported remaining count reaches zero, the next
//     call suspends until the reset time, then resumes with an optimistic
//     budget until the next observation corrects it.
//
// Secondary (abuse-detection) limits exhaust the budget until the
// server-provided Retry-After elapses.
//
// # Retry Policy
//
// Transient failures (network errors, 5xx, malformed responses) retry with
// exponential backoff: 2s, 4s, 8s, ... up to five retries, then
// [RetryExhaustedError]. Rate-limit waits never consume a retry attempt.
// Permanent API failures (401, 404, 422, ...) surface immediately as
// [APIError].
//
// # Failure Isolation
//
// Expand failures are fatal only to their item: the orchestrator skips the
// item and the page continues. Page-level failures have no well-defined
// partial result and abort the run.
//
// # Authentication
//
// A personal access token raises the quota from 60 to 5,000 requests per
// hour. Unauthenticated harvesting works but is rarely practical for a
// repository of any size; the orchestrator asks for confirmation first.
package github
