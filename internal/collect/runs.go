package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alanmeadows/prharvest/internal/store"
)

// runsDir holds one run record per repository inside OutputDir.
const runsDir = ".runs"

// Run describes the latest successful collection of a repository.
type Run struct {
	Repo      string    `json:"repo"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Source    string    `json:"provider"`
	File      string    `json:"file"`
	PRCount   int       `json:"pr_count"`
	Pages     int       `json:"pages"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (o *Output) runPath(owner, name string) string {
	return filepath.Join(o.baseDir, OutputDir, runsDir, fmt.Sprintf("%s-%s.md", owner, name))
}

// saveRun writes the run record as a markdown document with frontmatter,
// holding the record's lock so readers never see it mid-write.
func (o *Output) saveRun(ctx context.Context, run Run) error {
	doc := &store.Document{
		Frontmatter: map[string]any{
			"repo":       run.Repo,
			"owner":      run.Owner,
			"name":       run.Name,
			"provider":   run.Source,
			"file":       run.File,
			"pr_count":   run.PRCount,
			"pages":      run.Pages,
			"fetched_at": store.FormatTime(run.FetchedAt),
		},
		Body: fmt.Sprintf("# %s\n\nCollected %d qualifying pull requests over %d pages.\n",
			run.Repo, run.PRCount, run.Pages),
	}
	path := o.runPath(run.Owner, run.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("saving run record for %s: %w", run.Repo, err)
	}
	err := store.WithLock(ctx, path, store.DefaultLockTimeout, func() error {
		return store.WriteDocument(path, doc)
	})
	if err != nil {
		return fmt.Errorf("saving run record for %s: %w", run.Repo, err)
	}
	return nil
}

// ListRuns returns all run records, most recent first. Each record is read
// under a shared lock; unreadable records are skipped.
func (o *Output) ListRuns(ctx context.Context) ([]Run, error) {
	dir := filepath.Join(o.baseDir, OutputDir, runsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading runs directory: %w", err)
	}

	var runs []Run
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		var doc *store.Document
		err := store.WithReadLock(ctx, path, store.DefaultLockTimeout, func() error {
			var err error
			doc, err = store.ReadDocument(path)
			return err
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("skipping unreadable run record", "path", path, "error", err)
			continue
		}
		fm := doc.Frontmatter
		if store.GetString(fm, "repo") == "" {
			slog.Warn("skipping run record without repo", "path", path)
			continue
		}
		runs = append(runs, Run{
			Repo:      store.GetString(fm, "repo"),
			Owner:     store.GetString(fm, "owner"),
			Name:      store.GetString(fm, "name"),
			Source:    store.GetString(fm, "provider"),
			File:      store.GetString(fm, "file"),
			PRCount:   store.GetInt(fm, "pr_count"),
			Pages:     store.GetInt(fm, "pages"),
			FetchedAt: store.GetTime(fm, "fetched_at"),
		})
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].FetchedAt.After(runs[j].FetchedAt)
	})
	return runs, nil
}
