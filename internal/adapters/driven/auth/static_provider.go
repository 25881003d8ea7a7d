// Package auth implements token providers for the GitHub harvest source.
// A personal access token can come from the --token flag, the environment,
// or the config file; the chain provider resolves them in that order.
package auth

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// Ensure StaticTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticTokenProvider)(nil)

// StaticTokenProvider wraps a token supplied directly, typically from the
// --token flag. Personal access tokens don't expire and need no refresh.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a directly-supplied token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// GetToken returns the wrapped token.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, nil
}

// IsAuthenticated returns true if the token is non-empty.
func (p *StaticTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}
