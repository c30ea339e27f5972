package cli

import (
	"errors"
	"fmt"

	"github.com/alanmeadows/prharvest/internal/config"
	"github.com/alanmeadows/prharvest/internal/logging"
	"github.com/alanmeadows/prharvest/internal/provider"
	"github.com/spf13/cobra"
)

// Exit codes returned by the prharvest binary.
const (
	ExitError             = 1
	ExitInvalidIdentifier = 2
	ExitFetchFailed       = 3
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config
	rootCmd    = &cobra.Command{
		Use:   "prharvest",
		Short: "Collect reviewed GitHub pull requests into JSON datasets",
		Long: `prharvest pages through a GitHub repository's pull requests, keeps the ones
with a title, a description and at least one comment or review, and writes
them to fetched-prs/<owner>-<name>-prs.json. It runs as an HTTP service or as
a one-shot command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file merged over user and repo config")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			// config set must still work when the current file is invalid.
			if cmd == configSetCmd {
				return nil
			}
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, provider.ErrInvalidIdentifier):
		return ExitInvalidIdentifier
	case errors.Is(err, provider.ErrFetchFailed):
		return ExitFetchFailed
	default:
		return ExitError
	}
}
