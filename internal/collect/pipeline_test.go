package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanmeadows/prharvest/internal/config"
	"github.com/alanmeadows/prharvest/internal/provider"
	"github.com/alanmeadows/prharvest/internal/provider/github"
)

// fakeSource serves fixed pages and applies the caller's filter per page.
type fakeSource struct {
	pages   [][]provider.RawPullRequest
	err     error
	calls   int
	gotID   provider.RepoIdentifier
	gotOpts provider.FetchOptions
}

func (f *fakeSource) Name() string               { return "github" }
func (f *fakeSource) MatchesURL(url string) bool { return false }
func (f *fakeSource) ParseIdentifier(input string) (provider.RepoIdentifier, error) {
	return github.ParseRepoIdentifier(input)
}

func (f *fakeSource) FetchAll(ctx context.Context, id provider.RepoIdentifier, opts provider.FetchOptions) ([]provider.RawPullRequest, error) {
	f.calls++
	f.gotID = id
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	var kept []provider.RawPullRequest
	for i, page := range f.pages {
		n := 0
		for _, pr := range page {
			if opts.Keep(&pr) {
				kept = append(kept, pr)
				n++
			}
		}
		opts.OnPage(i+1, n)
	}
	return kept, nil
}

type fakeEnricher struct {
	calls    int
	gotToken string
	err      error
}

func (f *fakeEnricher) Enrich(ctx context.Context, id provider.RepoIdentifier, prs []provider.RawPullRequest, token string) error {
	f.calls++
	f.gotToken = token
	if f.err != nil {
		return f.err
	}
	for i := range prs {
		prs[i].Files = append(prs[i].Files, provider.FileChange{Path: "enriched.go", ChangeType: provider.ChangeAdded})
	}
	return nil
}

func newTestPipeline(t *testing.T, src provider.Source, enricher Enricher) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GitHub.Token = "configured-token"
	reg := provider.NewRegistry()
	reg.Register(src)
	return NewPipeline(&cfg, reg, enricher)
}

func rawPR(number int, title, body string, comments, reviews int) provider.RawPullRequest {
	pr := provider.RawPullRequest{Number: number, Title: title, Body: body}
	for i := 0; i < comments; i++ {
		pr.Comments = append(pr.Comments, provider.Comment{Body: fmt.Sprintf("c%d", i), Author: "alice"})
	}
	for i := 0; i < reviews; i++ {
		pr.Reviews = append(pr.Reviews, provider.Review{State: provider.ReviewCommented, Author: "bob"})
	}
	pr.CommentsTotal, pr.ReviewsTotal = comments, reviews
	return pr
}

func TestPipelineRun_FiltersAndProjects(t *testing.T) {
	src := &fakeSource{pages: [][]provider.RawPullRequest{
		{rawPR(1, "a", "d", 1, 0), rawPR(2, "b", "", 3, 0)},
		{rawPR(3, "c", "d", 0, 0), rawPR(4, "d", "d", 0, 2)},
		{rawPR(5, "", "d", 1, 1), rawPR(6, "f", "d", 2, 2)},
	}}
	p := newTestPipeline(t, src, nil)

	res, err := p.Run(t.Context(), "https://github.com/octo/hello/pulls", "")
	require.NoError(t, err)

	assert.Equal(t, provider.RepoIdentifier{Owner: "octo", Name: "hello"}, res.Repo)
	assert.Equal(t, "github", res.Source)
	assert.Equal(t, 3, res.Pages)
	require.Len(t, res.PRs, 3)
	assert.Equal(t, "a", res.PRs[0].Title)
	assert.Equal(t, "d", res.PRs[1].Title)
	assert.Equal(t, "f", res.PRs[2].Title)
}

func TestPipelineRun_PassesConfiguredCaps(t *testing.T) {
	src := &fakeSource{}
	cfg := config.DefaultConfig()
	cfg.Fetch = config.FetchConfig{PageSize: 25, Comments: 7, Reviews: 8, Files: 9}
	reg := provider.NewRegistry()
	reg.Register(src)
	p := NewPipeline(&cfg, reg, nil)

	_, err := p.Run(t.Context(), "octo/hello", "tok")
	require.NoError(t, err)

	assert.Equal(t, 25, src.gotOpts.PageSize)
	assert.Equal(t, 7, src.gotOpts.Comments)
	assert.Equal(t, 8, src.gotOpts.Reviews)
	assert.Equal(t, 9, src.gotOpts.Files)
	assert.Equal(t, "tok", src.gotOpts.Token)
}

func TestPipelineRun_TokenFallback(t *testing.T) {
	src := &fakeSource{}
	p := newTestPipeline(t, src, nil)

	_, err := p.Run(t.Context(), "octo/hello", "")
	require.NoError(t, err)
	assert.Equal(t, "configured-token", src.gotOpts.Token)

	_, err = p.Run(t.Context(), "octo/hello", "request-token")
	require.NoError(t, err)
	assert.Equal(t, "request-token", src.gotOpts.Token)
}

func TestPipelineRun_InvalidIdentifier(t *testing.T) {
	src := &fakeSource{}
	p := newTestPipeline(t, src, nil)

	res, err := p.Run(t.Context(), "not-a-repo", "")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, provider.ErrInvalidIdentifier)
	assert.Equal(t, 0, src.calls)
}

func TestPipelineRun_FetchFailed(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: GraphQL Error: boom", provider.ErrFetchFailed)}
	p := newTestPipeline(t, src, nil)

	res, err := p.Run(t.Context(), "octo/hello", "")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, provider.ErrFetchFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestPipelineRun_Enrichment(t *testing.T) {
	src := &fakeSource{pages: [][]provider.RawPullRequest{{rawPR(1, "a", "d", 1, 0)}}}
	enricher := &fakeEnricher{}
	p := newTestPipeline(t, src, enricher)

	res, err := p.Run(t.Context(), "octo/hello", "")
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	assert.Equal(t, "configured-token", enricher.gotToken)
	require.Len(t, res.PRs, 1)
	require.Len(t, res.PRs[0].Files, 1)
	assert.Equal(t, "enriched.go", res.PRs[0].Files[0].Path)
}

func TestPipelineRun_EnrichmentCanceled(t *testing.T) {
	src := &fakeSource{pages: [][]provider.RawPullRequest{{rawPR(1, "a", "d", 1, 0)}}}
	p := newTestPipeline(t, src, &fakeEnricher{err: context.Canceled})

	_, err := p.Run(t.Context(), "octo/hello", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrFetchFailed)
	assert.True(t, errors.Is(err, context.Canceled))
}

// --- End to end against a fake GraphQL endpoint ---

const twoPRPage = `{"data":{"repository":{"pullRequests":{
  "edges":[
    {"node":{"number":1,"title":"Fix bug","body":"desc",
      "comments":{"totalCount":1,"nodes":[{"body":"Nice catch","author":{"login":"alice"}}]},
      "reviews":{"totalCount":0,"nodes":[]},
      "files":{"totalCount":1,"nodes":[{"path":"main.go","additions":2,"deletions":1,"changeType":"MODIFIED"}]}}},
    {"node":{"number":2,"title":"WIP","body":"",
      "comments":{"totalCount":0,"nodes":[]},
      "reviews":{"totalCount":0,"nodes":[]},
      "files":{"totalCount":0,"nodes":[]}}}
  ],
  "pageInfo":{"endCursor":"Y3Vyc29yOjI=","hasNextPage":false}}}}}`

const wantTwoPRDocument = `[
  {
    "title": "Fix bug",
    "description": "desc",
    "comments": [
      {
        "body": "Nice catch",
        "author": "alice"
      }
    ],
    "reviews": [],
    "files": [
      {
        "path": "main.go",
        "additions": 2,
        "deletions": 1,
        "changeType": "MODIFIED"
      }
    ]
  }
]`

func newGraphQLPipeline(t *testing.T, body string) *Pipeline {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	reg := provider.NewRegistry()
	reg.Register(github.NewBackend(server.URL+"/graphql", server.Client()))
	return NewPipeline(&cfg, reg, nil)
}

func TestEndToEnd_TwoPullRequests(t *testing.T) {
	p := newGraphQLPipeline(t, twoPRPage)
	out := NewOutput(t.TempDir())

	res, err := p.Run(t.Context(), "https://github.com/octo/hello", "")
	require.NoError(t, err)
	require.Len(t, res.PRs, 1)
	assert.Equal(t, 1, res.Pages)

	path, err := out.Save(t.Context(), res)
	require.NoError(t, err)
	assert.Equal(t, "octo-hello-prs.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantTwoPRDocument, string(data))

	runs, err := out.ListRuns(t.Context())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "octo/hello", runs[0].Repo)
	assert.Equal(t, 1, runs[0].PRCount)
	assert.Equal(t, path, runs[0].File)
}

func TestEndToEnd_Idempotent(t *testing.T) {
	p := newGraphQLPipeline(t, twoPRPage)
	out := NewOutput(t.TempDir())

	var docs [][]byte
	for i := 0; i < 2; i++ {
		res, err := p.Run(t.Context(), "octo/hello", "")
		require.NoError(t, err)
		path, err := out.Save(t.Context(), res)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		docs = append(docs, data)
	}
	assert.Equal(t, docs[0], docs[1])
}

func TestEndToEnd_GraphQLErrorWritesNothing(t *testing.T) {
	p := newGraphQLPipeline(t, `{"data":null,"errors":[{"message":"API rate limit exceeded for user ID 1."}]}`)
	baseDir := t.TempDir()

	res, err := p.Run(t.Context(), "octo/hello", "")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, provider.ErrFetchFailed)
	assert.Contains(t, err.Error(), "API rate limit exceeded for user ID 1.")

	_, statErr := os.Stat(filepath.Join(baseDir, OutputDir))
	assert.True(t, os.IsNotExist(statErr), "no output directory should be created on failure")
}
