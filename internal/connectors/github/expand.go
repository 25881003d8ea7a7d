package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

// Expand resolves an item's nested sub-resources into a sink-ready
// HarvestRecord. Every remote call goes through the retry executor; any
// fatal error fails the whole item so the caller can skip it while the
// surrounding page continues.
//
// Pull-request rows in the issue stream are excluded (nil record, nil
// error): they are harvested by the pull request stream instead.
func (c *Client) Expand(ctx context.Context, item domain.HarvestItem) (*domain.HarvestRecord, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	switch item.Kind {
	case domain.KindIssue:
		if item.Issue == nil {
			return nil, fmt.Errorf("issue item %d has no issue payload", item.Number())
		}
		if item.Issue.PullRequestRef {
			return nil, nil
		}
		return c.expandIssue(ctx, item.Issue)

	case domain.KindPullRequest:
		if item.PullRequest == nil {
			return nil, fmt.Errorf("pull request item %d has no pull request payload", item.Number())
		}
		return c.expandPullRequest(ctx, item.PullRequest)

	default:
		return nil, fmt.Errorf("unknown resource kind %q", item.Kind)
	}
}

func (c *Client) expandIssue(ctx context.Context, issue *domain.Issue) (*domain.HarvestRecord, error) {
	expanded := *issue

	reactions, err := c.issueReactions(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("issue %d reactions: %w", expanded.Number, err)
	}
	expanded.Reactions = reactions

	comments, err := c.comments(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("issue %d comments: %w", expanded.Number, err)
	}
	expanded.Comments = comments

	return &domain.HarvestRecord{Kind: domain.KindIssue, Issue: &expanded}, nil
}

func (c *Client) expandPullRequest(ctx context.Context, pull *domain.PullRequest) (*domain.HarvestRecord, error) {
	expanded := *pull

	// The list endpoint omits diff stats and the merged flag; the detail
	// call is the only source for them.
	detail, err := c.pullDetail(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("pull request %d detail: %w", expanded.Number, err)
	}
	expanded.Merged = detail.GetMerged()
	expanded.Additions = detail.GetAdditions()
	expanded.Deletions = detail.GetDeletions()
	expanded.ChangedFiles = detail.GetChangedFiles()
	if detail.MergedAt != nil {
		merged := detail.GetMergedAt().Time
		expanded.MergedAt = &merged
	}

	// Reactions on the pull request's main thread live on the issues
	// endpoint: issue and pull request numbers share one sequence.
	reactions, err := c.issueReactions(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("pull request %d reactions: %w", expanded.Number, err)
	}
	expanded.Reactions = reactions

	comments, err := c.comments(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("pull request %d comments: %w", expanded.Number, err)
	}
	expanded.Comments = comments

	reviewComments, err := c.reviewComments(ctx, expanded.Number)
	if err != nil {
		return nil, fmt.Errorf("pull request %d review comments: %w", expanded.Number, err)
	}
	expanded.ReviewComments = reviewComments

	return &domain.HarvestRecord{Kind: domain.KindPullRequest, PullRequest: &expanded}, nil
}

// pullDetail fetches the full pull request object.
func (c *Client) pullDetail(ctx context.Context, number int) (*gh.PullRequest, error) {
	var detail *gh.PullRequest
	err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
		pull, resp, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return resp, err
		}
		detail = pull
		return resp, nil
	})
	return detail, err
}

// comments fetches all discussion comments for an issue or pull request,
// each augmented with its reaction tally.
func (c *Client) comments(ctx context.Context, number int) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)

	page := 0
	for {
		var (
			batch []*gh.IssueComment
			next  int
		)
		err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
			opts := &gh.IssueListCommentsOptions{
				ListOptions: gh.ListOptions{Page: page},
			}
			result, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
			if err != nil {
				return resp, err
			}
			batch = result
			next = resp.NextPage
			return resp, nil
		})
		if err != nil {
			return nil, err
		}

		for _, comment := range batch {
			reactions, err := c.commentReactions(ctx, comment.GetID())
			if err != nil {
				return nil, fmt.Errorf("comment %d reactions: %w", comment.GetID(), err)
			}
			comments = append(comments, domain.Comment{
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
				Reactions: reactions,
			})
		}

		if next == 0 {
			break
		}
		page = next
	}

	return comments, nil
}

// reviewComments fetches all diff-anchored review comments for a pull
// request, each augmented with its reaction tally.
func (c *Client) reviewComments(ctx context.Context, number int) ([]domain.ReviewComment, error) {
	reviewComments := make([]domain.ReviewComment, 0)

	page := 0
	for {
		var (
			batch []*gh.PullRequestComment
			next  int
		)
		err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
			opts := &gh.PullRequestListCommentsOptions{
				ListOptions: gh.ListOptions{Page: page},
			}
			result, resp, err := c.gh.PullRequests.ListComments(ctx, c.owner, c.repo, number, opts)
			if err != nil {
				return resp, err
			}
			batch = result
			next = resp.NextPage
			return resp, nil
		})
		if err != nil {
			return nil, err
		}

		for _, comment := range batch {
			reactions, err := c.reviewCommentReactions(ctx, comment.GetID())
			if err != nil {
				return nil, fmt.Errorf("review comment %d reactions: %w", comment.GetID(), err)
			}
			reviewComments = append(reviewComments, domain.ReviewComment{
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
				Reactions: reactions,
				Path:      comment.GetPath(),
				Position:  comment.GetPosition(),
			})
		}

		if next == 0 {
			break
		}
		page = next
	}

	return reviewComments, nil
}

// issueReactions tallies reactions on an issue or pull request thread.
func (c *Client) issueReactions(ctx context.Context, number int) (domain.ReactionCounts, error) {
	return c.tally(ctx, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.Reaction, *gh.Response, error) {
		return c.gh.Reactions.ListIssueReactions(ctx, c.owner, c.repo, number, &gh.ListReactionOptions{ListOptions: *opts})
	})
}

// commentReactions tallies reactions on a discussion comment.
func (c *Client) commentReactions(ctx context.Context, commentID int64) (domain.ReactionCounts, error) {
	return c.tally(ctx, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.Reaction, *gh.Response, error) {
		return c.gh.Reactions.ListIssueCommentReactions(ctx, c.owner, c.repo, commentID, &gh.ListReactionOptions{ListOptions: *opts})
	})
}

// reviewCommentReactions tallies reactions on a review comment.
func (c *Client) reviewCommentReactions(ctx context.Context, commentID int64) (domain.ReactionCounts, error) {
	return c.tally(ctx, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.Reaction, *gh.Response, error) {
		return c.gh.Reactions.ListPullRequestCommentReactions(ctx, c.owner, c.repo, commentID, &gh.ListReactionOptions{ListOptions: *opts})
	})
}

// tally drains a paginated reaction listing into a complete tally: every
// reaction kind is present, zero-valued when absent.
func (c *Client) tally(
	ctx context.Context,
	list func(ctx context.Context, opts *gh.ListOptions) ([]*gh.Reaction, *gh.Response, error),
) (domain.ReactionCounts, error) {
	counts := domain.NewReactionCounts()

	page := 0
	for {
		var (
			batch []*gh.Reaction
			next  int
		)
		err := c.exec.Do(ctx, func(ctx context.Context) (*gh.Response, error) {
			result, resp, err := list(ctx, &gh.ListOptions{Page: page})
			if err != nil {
				return resp, err
			}
			batch = result
			next = resp.NextPage
			return resp, nil
		})
		if err != nil {
			return nil, err
		}

		for _, reaction := range batch {
			counts.Add(reaction.GetContent())
		}

		if next == 0 {
			break
		}
		page = next
	}

	return counts, nil
}
