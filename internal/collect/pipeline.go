package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanmeadows/prharvest/internal/config"
	"github.com/alanmeadows/prharvest/internal/provider"
)

// Enricher completes pull requests whose nested lists were truncated by the
// fetch caps. It edits prs in place.
type Enricher interface {
	Enrich(ctx context.Context, id provider.RepoIdentifier, prs []provider.RawPullRequest, token string) error
}

// Result is the outcome of one collection run.
type Result struct {
	Repo   provider.RepoIdentifier
	Source string
	PRs    []QualifiedPR
	Pages  int
}

// Pipeline parses a repository reference, fetches its qualifying pull
// requests and projects them into output records.
type Pipeline struct {
	sources  *provider.Registry
	enricher Enricher
	fetch    config.FetchConfig
	token    string
}

// NewPipeline creates a Pipeline. A nil enricher disables enrichment.
func NewPipeline(cfg *config.Config, sources *provider.Registry, enricher Enricher) *Pipeline {
	return &Pipeline{
		sources:  sources,
		enricher: enricher,
		fetch:    cfg.Fetch,
		token:    cfg.GitHub.Token,
	}
}

// Run collects the qualifying pull requests of the repository named by input.
// An empty token falls back to the configured one. Errors wrapping
// provider.ErrInvalidIdentifier or provider.ErrFetchFailed are returned as is;
// no partial result is ever returned.
func (p *Pipeline) Run(ctx context.Context, input, token string) (*Result, error) {
	src, err := p.sources.Resolve(input)
	if err != nil {
		return nil, err
	}

	id, err := src.ParseIdentifier(input)
	if err != nil {
		return nil, err
	}

	if token == "" {
		token = p.token
	}

	start := time.Now()
	pages := 0
	raw, err := src.FetchAll(ctx, id, provider.FetchOptions{
		Token:    token,
		PageSize: p.fetch.PageSize,
		Comments: p.fetch.Comments,
		Reviews:  p.fetch.Reviews,
		Files:    p.fetch.Files,
		Keep:     Qualifies,
		OnPage: func(page, kept int) {
			pages = page
		},
	})
	if err != nil {
		return nil, err
	}

	if p.enricher != nil {
		if err := p.enricher.Enrich(ctx, id, raw, token); err != nil {
			return nil, fmt.Errorf("%w: enriching pull requests: %w", provider.ErrFetchFailed, err)
		}
	}

	res := &Result{
		Repo:   id,
		Source: src.Name(),
		PRs:    ProjectAll(raw),
		Pages:  pages,
	}
	slog.Info("collected pull requests",
		"repo", id.String(), "prs", len(res.PRs), "pages", pages, "elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}
