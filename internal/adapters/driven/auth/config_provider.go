package auth

import (
	"context"

	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// TokenConfigKey is the config key holding the stored personal access
// token, written by `eipharvest auth set-token`.
const TokenConfigKey = "github.token"

// tokenReader is the slice of the config store the provider needs.
type tokenReader interface {
	GetString(key string) string
}

// Ensure ConfigTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ConfigTokenProvider)(nil)

// ConfigTokenProvider reads the token from the config file.
type ConfigTokenProvider struct {
	config tokenReader
}

// NewConfigTokenProvider creates a provider backed by the config store.
func NewConfigTokenProvider(config tokenReader) *ConfigTokenProvider {
	return &ConfigTokenProvider{config: config}
}

// GetToken returns the stored token.
func (p *ConfigTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.config.GetString(TokenConfigKey), nil
}

// IsAuthenticated returns true if a token is stored.
func (p *ConfigTokenProvider) IsAuthenticated() bool {
	return p.config.GetString(TokenConfigKey) != ""
}
