package cli

import (
	"log/slog"
	"os/exec"
	"strings"

	"github.com/alanmeadows/prharvest/internal/collect"
	"github.com/alanmeadows/prharvest/internal/config"
	"github.com/alanmeadows/prharvest/internal/provider"
	ghsource "github.com/alanmeadows/prharvest/internal/provider/github"
)

// buildRegistry creates a source registry with the GitHub backend.
func buildRegistry(cfg *config.Config) *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register(ghsource.NewBackend(cfg.GitHub.GraphQLURL, nil))
	return reg
}

// buildPipeline wires the registry and, when enabled, the REST enricher.
func buildPipeline(cfg *config.Config) *collect.Pipeline {
	var enricher collect.Enricher
	if cfg.Enrich.Enabled {
		enricher = ghsource.NewEnricher(cfg.GitHub.APIURL, cfg.Enrich.Concurrency)
	}
	return collect.NewPipeline(cfg, buildRegistry(cfg), enricher)
}

// serverConfig returns the configuration the HTTP service runs with. The
// operator's token is dropped unless server.use_configured_token is set, so
// callers that omit a token fetch anonymously.
func serverConfig(cfg config.Config, port int) config.Config {
	if port != 0 {
		cfg.Server.Port = port
	}
	if !cfg.Server.UseConfiguredToken {
		cfg.GitHub.Token = ""
		return cfg
	}
	resolveToken(&cfg)
	return cfg
}

// resolveToken fills an empty configured token from the gh CLI, if present.
func resolveToken(cfg *config.Config) {
	if cfg.GitHub.Token != "" {
		return
	}
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		slog.Debug("no GitHub token configured; requests are anonymous")
		return
	}
	cfg.GitHub.Token = strings.TrimSpace(string(out))
}
