package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

// ListPage fetches one list page for a resource kind through the retry
// executor. Pages are 1-based per the GitHub API; the page size is the
// API's own default, never requested explicitly. An empty page is the
// stream's terminal signal.
//
// Items are returned verbatim: pull-request rows surfaced by the issues
// listing are flagged, not filtered, so the caller's counters stay honest.
func (c *Client) ListPage(ctx context.Context, kind domain.ResourceKind, page int) (domain.Page, error) {
	if err := c.ensureClient(ctx); err != nil {
		return domain.Page{}, err
	}

	result := domain.Page{Kind: kind, Index: page}

	switch kind {
	case domain.KindIssue:
		var issues []*gh.Issue
		err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
			opts := &gh.IssueListByRepoOptions{
				State:       "all",
				ListOptions: gh.ListOptions{Page: page},
			}
			batch, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
			if err != nil {
				return resp, err
			}
			issues = batch
			return resp, nil
		})
		if err != nil {
			return domain.Page{}, fmt.Errorf("list issues page %d: %w", page, err)
		}
		result.Items = make([]domain.HarvestItem, 0, len(issues))
		for _, issue := range issues {
			result.Items = append(result.Items, issueItem(issue))
		}

	case domain.KindPullRequest:
		var pulls []*gh.PullRequest
		err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
			opts := &gh.PullRequestListOptions{
				State:       "all",
				ListOptions: gh.ListOptions{Page: page},
			}
			batch, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
			if err != nil {
				return resp, err
			}
			pulls = batch
			return resp, nil
		})
		if err != nil {
			return domain.Page{}, fmt.Errorf("list pull requests page %d: %w", page, err)
		}
		result.Items = make([]domain.HarvestItem, 0, len(pulls))
		for _, pull := range pulls {
			result.Items = append(result.Items, pullItem(pull))
		}

	default:
		return domain.Page{}, fmt.Errorf("unknown resource kind %q", kind)
	}

	return result, nil
}

// issueItem converts a listed issue to its domain form. Nested
// sub-resources stay unresolved until Expand.
func issueItem(issue *gh.Issue) domain.HarvestItem {
	labels := make([]string, len(issue.Labels))
	for i, l := range issue.Labels {
		labels[i] = l.GetName()
	}

	converted := &domain.Issue{
		Number:         issue.GetNumber(),
		Title:          issue.GetTitle(),
		Body:           issue.GetBody(),
		State:          issue.GetState(),
		Author:         issue.GetUser().GetLogin(),
		CreatedAt:      issue.GetCreatedAt().Time,
		Labels:         labels,
		PullRequestRef: issue.IsPullRequest(),
	}
	if issue.ClosedAt != nil {
		closed := issue.GetClosedAt().Time
		converted.ClosedAt = &closed
	}

	return domain.HarvestItem{Kind: domain.KindIssue, Issue: converted}
}

// pullItem converts a listed pull request to its domain form. Diff stats
// are absent from the list endpoint and are filled in during Expand.
func pullItem(pull *gh.PullRequest) domain.HarvestItem {
	labels := make([]string, len(pull.Labels))
	for i, l := range pull.Labels {
		labels[i] = l.GetName()
	}

	converted := &domain.PullRequest{
		Number:    pull.GetNumber(),
		Title:     pull.GetTitle(),
		Body:      pull.GetBody(),
		State:     pull.GetState(),
		Author:    pull.GetUser().GetLogin(),
		CreatedAt: pull.GetCreatedAt().Time,
		Labels:    labels,
	}
	if pull.ClosedAt != nil {
		closed := pull.GetClosedAt().Time
		converted.ClosedAt = &closed
	}
	if pull.MergedAt != nil {
		merged := pull.GetMergedAt().Time
		converted.MergedAt = &merged
		converted.Merged = true
	}

	return domain.HarvestItem{Kind: domain.KindPullRequest, PullRequest: converted}
}
