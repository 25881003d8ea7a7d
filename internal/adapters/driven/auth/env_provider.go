package auth

import (
	"context"
	"os"

	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// TokenEnvVar is the environment variable consulted for a personal
// access token.
const TokenEnvVar = "GITHUB_TOKEN"

// Ensure EnvTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*EnvTokenProvider)(nil)

// EnvTokenProvider reads the token from the environment. The variable is
// read on every call so a token exported after startup is picked up.
type EnvTokenProvider struct{}

// NewEnvTokenProvider creates a provider backed by GITHUB_TOKEN.
func NewEnvTokenProvider() *EnvTokenProvider {
	return &EnvTokenProvider{}
}

// GetToken returns the token from the environment.
func (p *EnvTokenProvider) GetToken(_ context.Context) (string, error) {
	return os.Getenv(TokenEnvVar), nil
}

// IsAuthenticated returns true if the environment variable is set.
func (p *EnvTokenProvider) IsAuthenticated() bool {
	return os.Getenv(TokenEnvVar) != ""
}
