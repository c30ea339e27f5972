package collect

import "github.com/alanmeadows/prharvest/internal/provider"

// Qualifies reports whether a pull request carries enough human signal to
// keep: a title, a description, and at least one comment or review.
// Counts are those of the fetched (possibly capped) connections.
func Qualifies(pr *provider.RawPullRequest) bool {
	if pr.Title == "" || pr.Body == "" {
		return false
	}
	return len(pr.Comments) > 0 || len(pr.Reviews) > 0
}
