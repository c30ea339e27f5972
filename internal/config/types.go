package config

// Config is the top-level prharvest configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	GitHub GitHubConfig `json:"github"`
	Fetch  FetchConfig  `json:"fetch"`
	Enrich EnrichConfig `json:"enrich"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Port int `json:"port"`
	// BaseDir is the directory under which fetched-prs/ is created.
	BaseDir string `json:"base_dir"`
	// UseConfiguredToken lets requests without a token fetch with the
	// operator's github.token. Off by default.
	UseConfiguredToken bool `json:"use_configured_token"`
}

// GitHubConfig holds API endpoints and the fallback token used by the CLI,
// and by the server only when server.use_configured_token is set.
type GitHubConfig struct {
	GraphQLURL string `json:"graphql_url"`
	APIURL     string `json:"api_url"`
	Token      string `json:"token,omitempty"`
}

// FetchConfig caps the GraphQL connections requested per page. Comments,
// reviews and files beyond these caps are not seen by the qualification
// filter unless enrichment is enabled.
type FetchConfig struct {
	PageSize int `json:"page_size"`
	Comments int `json:"comments"`
	Reviews  int `json:"reviews"`
	Files    int `json:"files"`
}

// EnrichConfig controls the optional REST pass that completes truncated
// comment, review and file lists.
type EnrichConfig struct {
	Enabled     bool `json:"enabled"`
	Concurrency int  `json:"concurrency"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:    4000,
			BaseDir: ".",
		},
		GitHub: GitHubConfig{
			GraphQLURL: "https://api.github.com/graphql",
			APIURL:     "https://api.github.com/",
		},
		Fetch: FetchConfig{
			PageSize: 100,
			Comments: 5,
			Reviews:  5,
			Files:    10,
		},
		Enrich: EnrichConfig{
			Enabled:     false,
			Concurrency: 4,
		},
	}
}
