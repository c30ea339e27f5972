package provider_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alanmeadows/prharvest/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a minimal Source implementation for testing the registry.
type mockSource struct {
	name    string
	matches func(string) bool
}

func (m *mockSource) Name() string               { return m.name }
func (m *mockSource) MatchesURL(url string) bool { return m.matches(url) }
func (m *mockSource) ParseIdentifier(input string) (provider.RepoIdentifier, error) {
	return provider.RepoIdentifier{}, provider.ErrUnsupported
}
func (m *mockSource) FetchAll(ctx context.Context, id provider.RepoIdentifier, opts provider.FetchOptions) ([]provider.RawPullRequest, error) {
	return nil, nil
}

func newTestRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register(&mockSource{
		name:    "github",
		matches: func(url string) bool { return strings.HasPrefix(url, "https://github.com/") },
	})
	reg.Register(&mockSource{
		name:    "gitlab",
		matches: func(url string) bool { return strings.HasPrefix(url, "https://gitlab.com/") },
	})
	return reg
}

func TestDetect(t *testing.T) {
	reg := newTestRegistry()

	t.Run("detect GitHub", func(t *testing.T) {
		s, err := reg.Detect("https://github.com/owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "github", s.Name())
	})

	t.Run("detect GitLab", func(t *testing.T) {
		s, err := reg.Detect("https://gitlab.com/owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "gitlab", s.Name())
	})

	t.Run("detect unknown", func(t *testing.T) {
		_, err := reg.Detect("https://bitbucket.org/owner/repo")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no registered source")
	})
}

func TestResolve(t *testing.T) {
	reg := newTestRegistry()

	t.Run("URL picks matching source", func(t *testing.T) {
		s, err := reg.Resolve("https://gitlab.com/owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "gitlab", s.Name())
	})

	t.Run("bare identifier falls back to first source", func(t *testing.T) {
		s, err := reg.Resolve("owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "github", s.Name())
	})

	t.Run("empty registry", func(t *testing.T) {
		_, err := provider.NewRegistry().Resolve("owner/repo")
		assert.Error(t, err)
	})
}

func TestRepoIdentifierString(t *testing.T) {
	assert.Equal(t, "octo/hello", provider.RepoIdentifier{Owner: "octo", Name: "hello"}.String())
}

func TestTruncated(t *testing.T) {
	pr := provider.RawPullRequest{
		Comments:      []provider.Comment{{Body: "a"}},
		CommentsTotal: 1,
	}
	assert.False(t, pr.Truncated())

	pr.FilesTotal = 3
	assert.True(t, pr.Truncated())
}
