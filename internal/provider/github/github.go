package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alanmeadows/prharvest/internal/provider"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// Connection caps used when FetchOptions leaves them unset.
const (
	defaultPageSize = 100
	defaultComments = 5
	defaultReviews  = 5
	defaultFiles    = 10
)

// Backend implements provider.Source for GitHub using the GraphQL API.
type Backend struct {
	graphqlURL string
	httpClient *http.Client // base transport; nil uses http.DefaultClient
}

// NewBackend creates a GitHub source that queries the given GraphQL
// endpoint. An empty endpoint selects api.github.com.
func NewBackend(graphqlURL string, httpClient *http.Client) *Backend {
	if graphqlURL == "" {
		graphqlURL = DefaultGraphQLURL
	}
	return &Backend{
		graphqlURL: graphqlURL,
		httpClient: httpClient,
	}
}

// Name returns "github".
func (b *Backend) Name() string {
	return "github"
}

// MatchesURL returns true if the URL belongs to GitHub.
func (b *Backend) MatchesURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "github.com" || host == "www.github.com"
}

// ParseIdentifier parses a GitHub repository URL or "owner/name".
func (b *Backend) ParseIdentifier(input string) (provider.RepoIdentifier, error) {
	return ParseRepoIdentifier(input)
}

// FetchAll walks the repository's pullRequests connection page by page until
// hasNextPage is false. Each page is filtered with opts.Keep before its nodes
// are appended. A failure on any page discards everything collected so far.
func (b *Backend) FetchAll(ctx context.Context, id provider.RepoIdentifier, opts provider.FetchOptions) ([]provider.RawPullRequest, error) {
	opts = withDefaults(opts)
	client := b.graphQLClient(ctx, opts.Token)

	variables := map[string]any{
		"owner":    githubv4.String(id.Owner),
		"name":     githubv4.String(id.Name),
		"pageSize": githubv4.Int(opts.PageSize),
		"comments": githubv4.Int(opts.Comments),
		"reviews":  githubv4.Int(opts.Reviews),
		"files":    githubv4.Int(opts.Files),
		"cursor":   (*githubv4.String)(nil),
	}

	var kept []provider.RawPullRequest
	for page := 1; ; page++ {
		var q pullRequestsQuery
		if err := client.Query(ctx, &q, variables); err != nil {
			return nil, fetchError(ctx, err)
		}
		if q.Repository == nil {
			return nil, fmt.Errorf("%w: repository not found or access denied", provider.ErrFetchFailed)
		}

		conn := q.Repository.PullRequests
		n := 0
		for _, edge := range conn.Edges {
			pr := toRawPullRequest(&edge.Node)
			if opts.Keep != nil && !opts.Keep(&pr) {
				continue
			}
			kept = append(kept, pr)
			n++
		}

		slog.Debug("fetched pull request page",
			"repo", id.String(), "page", page, "nodes", len(conn.Edges), "kept", n)
		if opts.OnPage != nil {
			opts.OnPage(page, n)
		}

		if !conn.PageInfo.HasNextPage {
			return kept, nil
		}
		variables["cursor"] = githubv4.NewString(conn.PageInfo.EndCursor)
	}
}

// graphQLClient builds a client for one fetch. The bearer token is attached
// only when non-empty so anonymous requests carry no Authorization header.
func (b *Backend) graphQLClient(ctx context.Context, token string) *githubv4.Client {
	httpClient := b.httpClient
	if token != "" {
		if b.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return githubv4.NewEnterpriseClient(b.graphqlURL, httpClient)
}

func withDefaults(opts provider.FetchOptions) provider.FetchOptions {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Comments <= 0 {
		opts.Comments = defaultComments
	}
	if opts.Reviews <= 0 {
		opts.Reviews = defaultReviews
	}
	if opts.Files <= 0 {
		opts.Files = defaultFiles
	}
	return opts
}

// toRawPullRequest converts a GraphQL node, preserving connection order.
func toRawPullRequest(node *pullRequestNode) provider.RawPullRequest {
	pr := provider.RawPullRequest{
		Number:        node.Number,
		Title:         node.Title,
		Body:          node.Body,
		Comments:      make([]provider.Comment, 0, len(node.Comments.Nodes)),
		Reviews:       make([]provider.Review, 0, len(node.Reviews.Nodes)),
		Files:         make([]provider.FileChange, 0, len(node.Files.Nodes)),
		CommentsTotal: node.Comments.TotalCount,
		ReviewsTotal:  node.Reviews.TotalCount,
		FilesTotal:    node.Files.TotalCount,
	}
	for _, c := range node.Comments.Nodes {
		pr.Comments = append(pr.Comments, provider.Comment{
			Body:   c.Body,
			Author: c.Author.login(),
		})
	}
	for _, r := range node.Reviews.Nodes {
		pr.Reviews = append(pr.Reviews, provider.Review{
			State:  provider.ReviewState(r.State),
			Body:   r.Body,
			Author: r.Author.login(),
		})
	}
	for _, f := range node.Files.Nodes {
		pr.Files = append(pr.Files, provider.FileChange{
			Path:       f.Path,
			Additions:  f.Additions,
			Deletions:  f.Deletions,
			ChangeType: provider.ChangeType(f.ChangeType),
		})
	}
	return pr
}

// Verify Backend implements Source at compile time.
var _ provider.Source = (*Backend)(nil)
