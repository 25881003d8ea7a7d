package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReactionCounts(t *testing.T) {
	t.Run("initialises every kind to zero", func(t *testing.T) {
		counts := NewReactionCounts()

		require.Len(t, counts, 8)
		for _, kind := range AllReactionKinds() {
			n, ok := counts[kind]
			assert.True(t, ok, "kind %q should be present", kind)
			assert.Equal(t, 0, n)
		}
	})

	t.Run("key set survives JSON round trip", func(t *testing.T) {
		data, err := json.Marshal(NewReactionCounts())
		require.NoError(t, err)

		var decoded map[string]int
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded, 8)
		assert.Contains(t, decoded, "+1")
		assert.Contains(t, decoded, "-1")
		assert.Contains(t, decoded, "eyes")
	})
}

func TestReactionCounts_Add(t *testing.T) {
	t.Run("increments known kinds", func(t *testing.T) {
		counts := NewReactionCounts()

		counts.Add("heart")
		counts.Add("heart")
		counts.Add("+1")

		assert.Equal(t, 2, counts[ReactionHeart])
		assert.Equal(t, 1, counts[ReactionPlusOne])
		assert.Equal(t, 3, counts.Total())
	})

	t.Run("ignores unknown content", func(t *testing.T) {
		counts := NewReactionCounts()

		counts.Add("sparkles")

		assert.Equal(t, 0, counts.Total())
		assert.Len(t, counts, 8, "unknown content must not widen the key set")
	})
}

func TestHarvestItem_Key(t *testing.T) {
	t.Run("issue key", func(t *testing.T) {
		item := HarvestItem{Kind: KindIssue, Issue: &Issue{Number: 42}}

		assert.Equal(t, ItemKey{Kind: KindIssue, Number: 42}, item.Key())
	})

	t.Run("pull request key", func(t *testing.T) {
		item := HarvestItem{Kind: KindPullRequest, PullRequest: &PullRequest{Number: 7}}

		assert.Equal(t, ItemKey{Kind: KindPullRequest, Number: 7}, item.Key())
	})

	t.Run("issue and pull request with the same number have distinct keys", func(t *testing.T) {
		issue := HarvestItem{Kind: KindIssue, Issue: &Issue{Number: 3}}
		pull := HarvestItem{Kind: KindPullRequest, PullRequest: &PullRequest{Number: 3}}

		assert.NotEqual(t, issue.Key(), pull.Key())
	})
}

func TestHarvestRecord_JSON(t *testing.T) {
	t.Run("issue record carries only the issue arm", func(t *testing.T) {
		closed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		rec := HarvestRecord{
			Kind: KindIssue,
			Issue: &Issue{
				Number:    9,
				Title:     "Reduce calldata cost",
				State:     "closed",
				Author:    "vbuterin",
				CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				ClosedAt:  &closed,
				Labels:    []string{"core"},
				Reactions: NewReactionCounts(),
				Comments:  []Comment{},
			},
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "issue", decoded["kind"])
		assert.Contains(t, decoded, "issue")
		assert.NotContains(t, decoded, "pull_request")
	})

	t.Run("pull request record carries diff stats", func(t *testing.T) {
		rec := HarvestRecord{
			Kind: KindPullRequest,
			PullRequest: &PullRequest{
				Number:       11,
				Merged:       true,
				Additions:    120,
				Deletions:    4,
				ChangedFiles: 3,
				Reactions:    NewReactionCounts(),
				ReviewComments: []ReviewComment{
					{Path: "core/state.go", Position: 17, Reactions: NewReactionCounts()},
				},
			},
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)

		var decoded struct {
			PullRequest struct {
				Merged         bool `json:"merged"`
				Additions      int  `json:"additions"`
				ReviewComments []struct {
					Path     string `json:"path"`
					Position int    `json:"position"`
				} `json:"review_comments"`
			} `json:"pull_request"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, decoded.PullRequest.Merged)
		assert.Equal(t, 120, decoded.PullRequest.Additions)
		require.Len(t, decoded.PullRequest.ReviewComments, 1)
		assert.Equal(t, "core/state.go", decoded.PullRequest.ReviewComments[0].Path)
		assert.Equal(t, 17, decoded.PullRequest.ReviewComments[0].Position)
	})

	t.Run("pull request ref flag is not serialised", func(t *testing.T) {
		rec := HarvestRecord{
			Kind:  KindIssue,
			Issue: &Issue{Number: 1, PullRequestRef: true},
		}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "PullRequestRef")
	})
}

func TestPage_Empty(t *testing.T) {
	t.Run("no items terminates the stream", func(t *testing.T) {
		assert.True(t, Page{Kind: KindIssue, Index: 4}.Empty())
	})

	t.Run("populated page continues the stream", func(t *testing.T) {
		page := Page{
			Kind:  KindIssue,
			Index: 1,
			Items: []HarvestItem{{Kind: KindIssue, Issue: &Issue{Number: 1}}},
		}
		assert.False(t, page.Empty())
	})
}

func TestQuota_Exhausted(t *testing.T) {
	assert.True(t, Quota{Remaining: 0, Limit: 60}.Exhausted())
	assert.False(t, Quota{Remaining: 1, Limit: 60}.Exhausted())
}

func TestStreams(t *testing.T) {
	t.Run("issues drain before pull requests", func(t *testing.T) {
		assert.Equal(t, []ResourceKind{KindIssue, KindPullRequest}, Streams())
	})
}
