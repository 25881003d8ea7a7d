package auth

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// Ensure ChainTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ChainTokenProvider)(nil)

// ChainTokenProvider consults a list of providers in order and uses the
// first one holding a credential. The chain as a whole is unauthenticated
// only when every link is.
type ChainTokenProvider struct {
	providers []driven.TokenProvider
}

// NewChainTokenProvider creates a provider chain. Order matters: earlier
// providers win.
func NewChainTokenProvider(providers ...driven.TokenProvider) *ChainTokenProvider {
	return &ChainTokenProvider{providers: providers}
}

// GetToken returns the first available token.
func (p *ChainTokenProvider) GetToken(ctx context.Context) (string, error) {
	for _, provider := range p.providers {
		if provider.IsAuthenticated() {
			return provider.GetToken(ctx)
		}
	}
	return "", domain.ErrAuthRequired
}

// IsAuthenticated returns true if any provider in the chain holds a token.
func (p *ChainTokenProvider) IsAuthenticated() bool {
	for _, provider := range p.providers {
		if provider.IsAuthenticated() {
			return true
		}
	}
	return false
}
