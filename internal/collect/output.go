package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alanmeadows/prharvest/internal/provider"
	"github.com/alanmeadows/prharvest/internal/store"
)

// OutputDir is the directory under the base dir that holds fetched documents.
const OutputDir = "fetched-prs"

// Output persists collection results under <baseDir>/fetched-prs.
type Output struct {
	baseDir string
	now     func() time.Time
}

// NewOutput creates an Output rooted at baseDir.
func NewOutput(baseDir string) *Output {
	return &Output{baseDir: baseDir, now: time.Now}
}

// Path returns the document path for a repository.
func (o *Output) Path(id provider.RepoIdentifier) string {
	path := filepath.Join(o.baseDir, OutputDir, fmt.Sprintf("%s-%s-prs.json", id.Owner, id.Name))
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Save writes the result document, replacing any previous one, and records
// the run. Writers for the same repository are serialised by a file lock.
// It returns the document path. Once the document is written the run record
// is best effort: a failure there is logged and Save still succeeds.
func (o *Output) Save(ctx context.Context, res *Result) (string, error) {
	path := o.Path(res.Repo)
	prs := res.PRs
	if prs == nil {
		prs = []QualifiedPR{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	err := store.WithLock(ctx, path, store.DefaultLockTimeout, func() error {
		if err := store.WriteJSON(path, prs); err != nil {
			return err
		}
		run := Run{
			Repo:      res.Repo.String(),
			Owner:     res.Repo.Owner,
			Name:      res.Repo.Name,
			Source:    res.Source,
			File:      path,
			PRCount:   len(prs),
			Pages:     res.Pages,
			FetchedAt: o.now(),
		}
		if err := o.saveRun(ctx, run); err != nil {
			slog.Warn("failed to record run", "repo", run.Repo, "error", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
