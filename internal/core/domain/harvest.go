package domain

import "time"

// ResourceKind identifies which stream a harvested item belongs to.
type ResourceKind string

const (
	// KindIssue is the issues stream.
	KindIssue ResourceKind = "issue"

	// KindPullRequest is the pull requests stream.
	KindPullRequest ResourceKind = "pull_request"
)

// Streams returns the resource kinds in harvest order.
// Issues are fully drained before pull requests begin, bounding
// rate-limit pressure to one stream at a time.
func Streams() []ResourceKind {
	return []ResourceKind{KindIssue, KindPullRequest}
}

// ItemKey uniquely identifies a harvested item within a repository.
// It is the in-run deduplication key.
type ItemKey struct {
	Kind   ResourceKind
	Number int
}

// ReactionKind is one of GitHub's eight reaction content types.
type ReactionKind string

const (
	ReactionPlusOne  ReactionKind = "+1"
	ReactionMinusOne ReactionKind = "-1"
	ReactionLaugh    ReactionKind = "laugh"
	ReactionHooray   ReactionKind = "hooray"
	ReactionConfused ReactionKind = "confused"
	ReactionHeart    ReactionKind = "heart"
	ReactionRocket   ReactionKind = "rocket"
	ReactionEyes     ReactionKind = "eyes"
)

// AllReactionKinds returns every reaction kind in a stable order.
func AllReactionKinds() []ReactionKind {
	return []ReactionKind{
		ReactionPlusOne, ReactionMinusOne, ReactionLaugh, ReactionHooray,
		ReactionConfused, ReactionHeart, ReactionRocket, ReactionEyes,
	}
}

// ReactionCounts maps each reaction kind to its tally.
// The key set is always complete: a kind with no occurrences is present
// with a zero count.
type ReactionCounts map[ReactionKind]int

// NewReactionCounts returns a tally with every kind initialised to zero.
func NewReactionCounts() ReactionCounts {
	counts := make(ReactionCounts, len(AllReactionKinds()))
	for _, kind := range AllReactionKinds() {
		counts[kind] = 0
	}
	return counts
}

// Add increments the tally for a kind. Unknown content strings are ignored
// so a new reaction type introduced upstream cannot corrupt the fixed set.
func (c ReactionCounts) Add(content string) {
	kind := ReactionKind(content)
	if _, ok := c[kind]; ok {
		c[kind]++
	}
}

// Total returns the sum of all tallies.
func (c ReactionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Comment is a discussion comment on an issue or pull request.
type Comment struct {
	Author    string         `json:"author"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Reactions ReactionCounts `json:"reactions"`
}

// ReviewComment is a pull request review comment anchored to a diff line.
type ReviewComment struct {
	Author    string         `json:"author"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Reactions ReactionCounts `json:"reactions"`

	// Path is the file the comment is attached to.
	Path string `json:"path"`

	// Position is the diff-relative line anchor.
	Position int `json:"position"`
}

// Issue is a harvested issue with its nested sub-resources resolved.
type Issue struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	State     string         `json:"state"`
	Author    string         `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	Labels    []string       `json:"labels"`
	Reactions ReactionCounts `json:"reactions"`
	Comments  []Comment      `json:"comments"`

	// PullRequestRef marks rows in the issues listing that are really
	// pull requests. They are excluded from the issue stream during
	// expansion, never filtered by the pager.
	PullRequestRef bool `json:"-"`
}

// PullRequest is a harvested pull request with its nested sub-resources
// resolved.
type PullRequest struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	State     string         `json:"state"`
	Author    string         `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	Labels    []string       `json:"labels"`
	Reactions ReactionCounts `json:"reactions"`
	Comments  []Comment      `json:"comments"`

	Merged         bool            `json:"merged"`
	MergedAt       *time.Time      `json:"merged_at,omitempty"`
	Additions      int             `json:"additions"`
	Deletions      int             `json:"deletions"`
	ChangedFiles   int             `json:"changed_files"`
	ReviewComments []ReviewComment `json:"review_comments"`
}

// HarvestItem is a list-page row before expansion: base fields populated,
// nested sub-resources still unresolved.
type HarvestItem struct {
	Kind        ResourceKind
	Issue       *Issue
	PullRequest *PullRequest
}

// Key returns the deduplication key for the item.
func (i HarvestItem) Key() ItemKey {
	return ItemKey{Kind: i.Kind, Number: i.Number()}
}

// Number returns the item's number within the source repository.
func (i HarvestItem) Number() int {
	switch i.Kind {
	case KindIssue:
		if i.Issue != nil {
			return i.Issue.Number
		}
	case KindPullRequest:
		if i.PullRequest != nil {
			return i.PullRequest.Number
		}
	}
	return 0
}

// Page is one ordered batch of items returned by a single list call.
// An empty page is the stream's terminal signal.
type Page struct {
	Kind  ResourceKind
	Index int
	Items []HarvestItem
}

// Empty reports whether the page terminates its stream.
func (p Page) Empty() bool {
	return len(p.Items) == 0
}

// HarvestRecord is the fully-expanded, sink-ready form of one issue or
// pull request. Exactly one of Issue and PullRequest is set, matching Kind.
// Records are immutable once assembled and written to the sink once.
type HarvestRecord struct {
	Kind        ResourceKind `json:"kind"`
	Issue       *Issue       `json:"issue,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
}

// Key returns the deduplication key for the record.
func (r HarvestRecord) Key() ItemKey {
	switch r.Kind {
	case KindIssue:
		if r.Issue != nil {
			return ItemKey{Kind: KindIssue, Number: r.Issue.Number}
		}
	case KindPullRequest:
		if r.PullRequest != nil {
			return ItemKey{Kind: KindPullRequest, Number: r.PullRequest.Number}
		}
	}
	return ItemKey{Kind: r.Kind}
}

// Quota is the remote API's request budget as last reported.
type Quota struct {
	// Remaining is the number of requests left in the current window.
	Remaining int

	// Limit is the size of the window.
	Limit int

	// ResetAt is when the window replenishes.
	ResetAt time.Time
}

// Exhausted reports whether no further requests should be attempted
// before ResetAt.
func (q Quota) Exhausted() bool {
	return q.Remaining <= 0
}
