package github

import "github.com/shurcooL/githubv4"

// pullRequestsQuery is one page of a repository's pull requests with the
// nested connections capped by the $comments, $reviews and $files variables.
type pullRequestsQuery struct {
	Repository *struct {
		PullRequests struct {
			Edges []struct {
				Node pullRequestNode
			}
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
		} `graphql:"pullRequests(first: $pageSize, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type pullRequestNode struct {
	Number int
	Title  string
	Body   string

	Comments struct {
		TotalCount int
		Nodes      []struct {
			Body   string
			Author *actor
		}
	} `graphql:"comments(first: $comments)"`

	Reviews struct {
		TotalCount int
		Nodes      []struct {
			State  githubv4.PullRequestReviewState
			Body   string
			Author *actor
		}
	} `graphql:"reviews(first: $reviews)"`

	Files struct {
		TotalCount int
		Nodes      []struct {
			Path       string
			Additions  int
			Deletions  int
			ChangeType githubv4.PatchStatus
		}
	} `graphql:"files(first: $files)"`
}

// actor is null for deleted ("ghost") accounts.
type actor struct {
	Login string
}

func (a *actor) login() string {
	if a == nil {
		return ""
	}
	return a.Login
}
