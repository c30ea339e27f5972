package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a source doesn't support a given operation.
	ErrUnsupported = errors.New("operation not supported by this source")

	// ErrInvalidIdentifier is returned when a repository reference cannot be parsed.
	ErrInvalidIdentifier = errors.New("invalid repository identifier")

	// ErrFetchFailed wraps every transport, authorization, GraphQL-reported or
	// not-found failure while retrieving pull requests.
	ErrFetchFailed = errors.New("error fetching PRs")
)

// Source is the interface for pull request hosting services that can be
// harvested.
type Source interface {
	// Name returns the short identifier for this source (e.g., "github").
	Name() string

	// MatchesURL returns true if the given URL belongs to this source's hosting service.
	MatchesURL(url string) bool

	// ParseIdentifier extracts the owner and repository name from a URL or
	// "owner/name" string.
	ParseIdentifier(input string) (RepoIdentifier, error)

	// FetchAll pages through every pull request of the repository and returns
	// the ones accepted by opts.Keep, in page order. Partial results are
	// discarded on failure.
	FetchAll(ctx context.Context, id RepoIdentifier, opts FetchOptions) ([]RawPullRequest, error)
}

// FetchOptions controls a FetchAll call.
type FetchOptions struct {
	// Token is sent as a bearer token when non-empty.
	Token string
	// PageSize is the number of pull requests requested per page.
	PageSize int
	// Comments, Reviews and Files cap the nested connections per pull request.
	Comments int
	Reviews  int
	Files    int
	// Keep filters each page. A nil Keep keeps everything.
	Keep func(*RawPullRequest) bool
	// OnPage is called after each page with the 1-based page number and the
	// number of nodes kept from it.
	OnPage func(page, kept int)
}

// RepoIdentifier names a repository on a hosting service.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r RepoIdentifier) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// RawPullRequest is a pull request node as returned by the hosting service.
type RawPullRequest struct {
	Number   int
	Title    string
	Body     string
	Comments []Comment
	Reviews  []Review
	Files    []FileChange

	// Totals reported by the service for each connection; they exceed the
	// slice lengths when the page caps truncated them.
	CommentsTotal int
	ReviewsTotal  int
	FilesTotal    int
}

// Truncated reports whether any nested connection holds more items than
// were fetched.
func (pr *RawPullRequest) Truncated() bool {
	return pr.CommentsTotal > len(pr.Comments) ||
		pr.ReviewsTotal > len(pr.Reviews) ||
		pr.FilesTotal > len(pr.Files)
}

// Comment is a general (issue-level) pull request comment.
type Comment struct {
	Body string
	// Author is the login of the comment author, empty for deleted accounts.
	Author string
}

// Review is a submitted pull request review.
type Review struct {
	State  ReviewState
	Body   string
	Author string
}

// FileChange describes one file touched by a pull request.
type FileChange struct {
	Path       string
	Additions  int
	Deletions  int
	ChangeType ChangeType
}

// ReviewState is the state of a pull request review.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// ChangeType is how a pull request changed a file.
type ChangeType string

const (
	ChangeAdded    ChangeType = "ADDED"
	ChangeModified ChangeType = "MODIFIED"
	ChangeDeleted  ChangeType = "DELETED"
	ChangeRenamed  ChangeType = "RENAMED"
	ChangeCopied   ChangeType = "COPIED"
)
