package github

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alanmeadows/prharvest/internal/provider"
)

// repoPattern matches an optional github.com URL prefix followed by the
// owner and name segments. The scheme and host match case-insensitively;
// anything after the name is ignored.
var repoPattern = regexp.MustCompile(`^(?i:https?://(?:www\.)?github\.com/)?([^/\s?#]+)/([^/\s?#]+)`)

// ParseRepoIdentifier extracts the owner and repository name from a GitHub
// URL (https://github.com/<owner>/<name>[/...]) or a bare "<owner>/<name>".
func ParseRepoIdentifier(input string) (provider.RepoIdentifier, error) {
	trimmed := strings.TrimSpace(input)
	m := repoPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return provider.RepoIdentifier{}, fmt.Errorf("%w: %q", provider.ErrInvalidIdentifier, input)
	}

	name := strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return provider.RepoIdentifier{}, fmt.Errorf("%w: %q", provider.ErrInvalidIdentifier, input)
	}
	return provider.RepoIdentifier{Owner: m[1], Name: name}, nil
}
