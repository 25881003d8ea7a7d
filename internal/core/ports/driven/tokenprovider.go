package driven

import "context"

// TokenProvider supplies the API credential for a harvest source.
type TokenProvider interface {
	// GetToken returns the access token.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a usable credential is configured.
	// Unauthenticated harvests run against a much smaller quota.
	IsAuthenticated() bool
}
