package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// maxConnectionSize is GitHub's upper bound for first: on any connection.
const maxConnectionSize = 100

// Load reads and merges configuration from user-level and repo-level JSONC files.
// Resolution order: defaults → user config (~/.config/prharvest/prharvest.jsonc)
// → repo config (.prharvest/prharvest.jsonc) → the explicit path, if given → env.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if userPath := UserConfigPath(); userPath != "" {
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	if repoPath := RepoConfigPath(); repoPath != "" {
		if repoMap, err := loadJSONC(repoPath); err == nil {
			if err := mergeIntoConfig(&cfg, repoMap); err != nil {
				return nil, fmt.Errorf("merging repo config: %w", err)
			}
		}
	}

	// An explicit path must exist.
	if path != "" {
		m, err := loadJSONC(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if err := mergeIntoConfig(&cfg, m); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UserConfigPath returns the user-level config file path, or "" when the
// user config directory cannot be determined.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "prharvest", "prharvest.jsonc")
}

// RepoConfigPath returns the repo-level config file path. Outside a git
// checkout the current directory stands in for the repo root.
func RepoConfigPath() string {
	root := findRepoRoot()
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		root = wd
	}
	return filepath.Join(root, ".prharvest", "prharvest.jsonc")
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig round-trips cfg through a map so mergo can deep-merge src
// over it; src wins on conflicts.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// findRepoRoot finds the git repository root via git rev-parse.
func findRepoRoot() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numeric values are ignored.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if url := os.Getenv("PRHARVEST_GRAPHQL_URL"); url != "" {
		cfg.GitHub.GraphQLURL = url
	}
	if dir := os.Getenv("PRHARVEST_BASE_DIR"); dir != "" {
		cfg.Server.BaseDir = dir
	}
	if port := os.Getenv("PRHARVEST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// Validate checks connection caps against GitHub's limits and that the
// endpoints are set.
func (c *Config) Validate() error {
	caps := []struct {
		name  string
		value int
	}{
		{"fetch.page_size", c.Fetch.PageSize},
		{"fetch.comments", c.Fetch.Comments},
		{"fetch.reviews", c.Fetch.Reviews},
		{"fetch.files", c.Fetch.Files},
	}
	for _, limit := range caps {
		if limit.value < 1 || limit.value > maxConnectionSize {
			return fmt.Errorf("%s must be between 1 and %d, got %d", limit.name, maxConnectionSize, limit.value)
		}
	}
	if c.GitHub.GraphQLURL == "" {
		return fmt.Errorf("github.graphql_url cannot be empty")
	}
	if c.GitHub.APIURL == "" {
		return fmt.Errorf("github.api_url cannot be empty")
	}
	if c.Enrich.Enabled && c.Enrich.Concurrency < 1 {
		return fmt.Errorf("enrich.concurrency must be positive when enrichment is enabled, got %d", c.Enrich.Concurrency)
	}
	return nil
}
