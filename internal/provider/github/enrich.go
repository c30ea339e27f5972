package github

import (
	"context"
	"fmt"
	"log/slog"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"golang.org/x/sync/errgroup"

	"github.com/alanmeadows/prharvest/internal/provider"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com/"

// Enricher completes pull requests whose comment, review or file
// connections were truncated by the GraphQL page caps, using the REST API.
type Enricher struct {
	apiURL      string
	concurrency int
}

// NewEnricher creates an Enricher for the given REST base URL that works on
// at most concurrency pull requests at a time.
func NewEnricher(apiURL string, concurrency int) *Enricher {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{apiURL: apiURL, concurrency: concurrency}
}

// Enrich replaces the truncated lists of prs in place. A pull request whose
// detail requests fail keeps its GraphQL data; the failure is logged. Only
// cancellation of ctx is returned.
func (e *Enricher) Enrich(ctx context.Context, id provider.RepoIdentifier, prs []provider.RawPullRequest, token string) error {
	client, err := e.restClient(token)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range prs {
		if !prs[i].Truncated() {
			continue
		}
		pr := &prs[i]
		g.Go(func() error {
			if err := enrichOne(gctx, client, id, pr); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("keeping truncated pull request data",
					"repo", id.String(), "number", pr.Number, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// restClient builds a rate-limit aware go-github client for one run.
func (e *Enricher) restClient(token string) (*gh.Client, error) {
	client := gh.NewClient(github_ratelimit.NewClient(nil))
	if token != "" {
		client = client.WithAuthToken(token)
	}
	client, err := client.WithEnterpriseURLs(e.apiURL, e.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", e.apiURL, err)
	}
	return client, nil
}

// enrichOne issues the comment, review and file listings concurrently and
// only updates pr when all three succeed.
func enrichOne(ctx context.Context, client *gh.Client, id provider.RepoIdentifier, pr *provider.RawPullRequest) error {
	var (
		comments []provider.Comment
		reviews  []provider.Review
		files    []provider.FileChange
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = listComments(gctx, client, id, pr.Number)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = listReviews(gctx, client, id, pr.Number)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = listFiles(gctx, client, id, pr.Number)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	pr.Comments, pr.CommentsTotal = comments, len(comments)
	pr.Reviews, pr.ReviewsTotal = reviews, len(reviews)
	pr.Files, pr.FilesTotal = files, len(files)
	return nil
}

func listComments(ctx context.Context, client *gh.Client, id provider.RepoIdentifier, number int) ([]provider.Comment, error) {
	comments := make([]provider.Comment, 0)
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := client.Issues.ListComments(ctx, id.Owner, id.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments on #%d: %w", number, err)
		}
		for _, c := range page {
			comments = append(comments, provider.Comment{
				Body:   c.GetBody(),
				Author: c.GetUser().GetLogin(),
			})
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opts.Page = resp.NextPage
	}
}

func listReviews(ctx context.Context, client *gh.Client, id provider.RepoIdentifier, number int) ([]provider.Review, error) {
	reviews := make([]provider.Review, 0)
	opts := &gh.ListOptions{PerPage: 100}
	for {
		page, resp, err := client.PullRequests.ListReviews(ctx, id.Owner, id.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews on #%d: %w", number, err)
		}
		for _, r := range page {
			reviews = append(reviews, provider.Review{
				State:  provider.ReviewState(r.GetState()),
				Body:   r.GetBody(),
				Author: r.GetUser().GetLogin(),
			})
		}
		if resp.NextPage == 0 {
			return reviews, nil
		}
		opts.Page = resp.NextPage
	}
}

func listFiles(ctx context.Context, client *gh.Client, id provider.RepoIdentifier, number int) ([]provider.FileChange, error) {
	files := make([]provider.FileChange, 0)
	opts := &gh.ListOptions{PerPage: 100}
	for {
		page, resp, err := client.PullRequests.ListFiles(ctx, id.Owner, id.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files on #%d: %w", number, err)
		}
		for _, f := range page {
			files = append(files, provider.FileChange{
				Path:       f.GetFilename(),
				Additions:  f.GetAdditions(),
				Deletions:  f.GetDeletions(),
				ChangeType: changeType(f.GetStatus()),
			})
		}
		if resp.NextPage == 0 {
			return files, nil
		}
		opts.Page = resp.NextPage
	}
}

// changeType maps a REST file status onto the GraphQL PatchStatus values.
func changeType(status string) provider.ChangeType {
	switch status {
	case "added":
		return provider.ChangeAdded
	case "removed":
		return provider.ChangeDeleted
	case "renamed":
		return provider.ChangeRenamed
	case "copied":
		return provider.ChangeCopied
	default:
		return provider.ChangeModified
	}
}
