package collect

import "github.com/alanmeadows/prharvest/internal/provider"

// QualifiedPR is the persisted record for one pull request.
type QualifiedPR struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Comments    []CommentRecord `json:"comments"`
	Reviews     []ReviewRecord  `json:"reviews"`
	Files       []FileRecord    `json:"files"`
}

// CommentRecord is a comment in the output document.
type CommentRecord struct {
	Body   string `json:"body"`
	Author string `json:"author"`
}

// ReviewRecord is a review in the output document.
type ReviewRecord struct {
	State  provider.ReviewState `json:"state"`
	Body   string               `json:"body"`
	Author string               `json:"author"`
}

// FileRecord is a changed file in the output document.
type FileRecord struct {
	Path       string              `json:"path"`
	Additions  int                 `json:"additions"`
	Deletions  int                 `json:"deletions"`
	ChangeType provider.ChangeType `json:"changeType"`
}

// Project maps a raw pull request onto the output record, preserving the
// order of comments, reviews and files. Empty lists encode as [].
func Project(pr provider.RawPullRequest) QualifiedPR {
	out := QualifiedPR{
		Title:       pr.Title,
		Description: pr.Body,
		Comments:    make([]CommentRecord, 0, len(pr.Comments)),
		Reviews:     make([]ReviewRecord, 0, len(pr.Reviews)),
		Files:       make([]FileRecord, 0, len(pr.Files)),
	}
	for _, c := range pr.Comments {
		out.Comments = append(out.Comments, CommentRecord{Body: c.Body, Author: c.Author})
	}
	for _, r := range pr.Reviews {
		out.Reviews = append(out.Reviews, ReviewRecord{State: r.State, Body: r.Body, Author: r.Author})
	}
	for _, f := range pr.Files {
		out.Files = append(out.Files, FileRecord{
			Path:       f.Path,
			Additions:  f.Additions,
			Deletions:  f.Deletions,
			ChangeType: f.ChangeType,
		})
	}
	return out
}

// ProjectAll projects every pull request in order. The result is never nil.
func ProjectAll(prs []provider.RawPullRequest) []QualifiedPR {
	out := make([]QualifiedPR, 0, len(prs))
	for _, pr := range prs {
		out = append(out, Project(pr))
	}
	return out
}
