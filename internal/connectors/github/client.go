package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the harvest source port.
var _ driven.HarvestSource = (*Client)(nil)

// Client is the GitHub harvest source for a single repository. It wraps
// go-github with the rate budget and retry executor; every remote call is
// one executor-wrapped attempt.
type Client struct {
	gh            *gh.Client
	owner         string
	repo          string
	tokenProvider driven.TokenProvider
	exec          *Executor
	authenticated bool
}

// NewClient creates a harvest source for owner/repo. The underlying
// go-github client is initialised lazily so the token is read when first
// needed. tokenProvider may be nil for unauthenticated harvests.
func NewClient(owner, repo string, tokenProvider driven.TokenProvider) *Client {
	return &Client{
		owner:         owner,
		repo:          repo,
		tokenProvider: tokenProvider,
		exec:          NewExecutor(NewRateBudget()),
	}
}

// NewClientWithHTTPClient creates a Client against a custom base URL.
// This constructor is intended for testing against an httptest server;
// the proactive throttle is disabled so tests run at full speed.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:            client,
		owner:         owner,
		repo:          repo,
		exec:          NewExecutor(newRateBudget(rate.Inf)),
		authenticated: true,
	}, nil
}

// ensureClient initialises the go-github client if not already done.
func (c *Client) ensureClient(ctx context.Context) error {
	if c.gh != nil {
		return nil
	}

	if c.tokenProvider == nil || !c.tokenProvider.IsAuthenticated() {
		hc := &http.Client{Timeout: DefaultTimeout}
		c.gh = gh.NewClient(hc)
		return nil
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	c.gh = gh.NewClient(tc)
	return nil
}

// Authenticated reports whether a credential is configured.
func (c *Client) Authenticated() bool {
	if c.authenticated {
		return true
	}
	return c.tokenProvider != nil && c.tokenProvider.IsAuthenticated()
}

// Executor returns the retry executor for inspection by tests.
func (c *Client) Executor() *Executor {
	return c.exec
}

// Repository returns the owner/repo identifier the client targets.
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// Validate checks that the repository exists and the credential (if any)
// is accepted. Non-recoverable conditions map to domain errors so the
// orchestrator can abort without retrying.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.ensureClient(ctx); err != nil {
		return err
	}

	err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
		_, resp, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
		return resp, err
	})
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return fmt.Errorf("%w: %s", domain.ErrRepoNotFound, c.Repository())
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	default:
		return fmt.Errorf("validate %s: %w", c.Repository(), err)
	}
}

// Quota reads the current core-API request budget. The rate-limit endpoint
// itself does not count against the quota, so the call bypasses the
// executor; the result still updates the budget.
func (c *Client) Quota(ctx context.Context) (domain.Quota, error) {
	if err := c.ensureClient(ctx); err != nil {
		return domain.Quota{}, err
	}

	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("get rate limit: %w", err)
	}

	core := limits.GetCore()
	quota := domain.Quota{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   core.Reset.Time,
	}
	c.exec.Budget().ObserveQuota(quota)
	return quota, nil
}
