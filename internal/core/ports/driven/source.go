package driven

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

// HarvestSource fetches paginated items and their nested sub-resources
// from a remote repository. Implementations own retry, backoff, and
// rate-budget discipline; callers only see final outcomes.
type HarvestSource interface {
	// Validate checks that the target repository exists and the
	// configured credential (if any) is accepted.
	// Returns domain.ErrRepoNotFound or domain.ErrAuthInvalid on
	// non-recoverable conditions.
	Validate(ctx context.Context) error

	// Quota reports the current request budget.
	Quota(ctx context.Context) (domain.Quota, error)

	// ListPage fetches one list page for a resource kind. Pages are
	// 1-based; an empty page terminates the stream. Items are returned
	// verbatim: pull-request rows in the issues listing are flagged,
	// not filtered.
	ListPage(ctx context.Context, kind domain.ResourceKind, page int) (domain.Page, error)

	// Expand resolves an item's nested sub-resources (reactions,
	// comments, review comments) into a sink-ready record.
	// A nil record with a nil error means the item does not belong to
	// its stream and was excluded. An error means the item failed and
	// should be skipped; the surrounding page continues.
	Expand(ctx context.Context, item domain.HarvestItem) (*domain.HarvestRecord, error)

	// Authenticated reports whether a credential is configured.
	Authenticated() bool

	// Repository returns the owner/repo identifier the source targets.
	Repository() string
}
