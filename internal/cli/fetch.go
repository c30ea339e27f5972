package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/alanmeadows/prharvest/internal/collect"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	fetchTokenFlag  string
	fetchOutDirFlag string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchTokenFlag, "token", "", "GitHub token (default from config, GITHUB_TOKEN or gh auth token)")
	fetchCmd.Flags().StringVar(&fetchOutDirFlag, "out-dir", "", "Base directory for fetched-prs/ (default from config)")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <repo>",
	Short: "Collect a repository's qualifying pull requests once",
	Long: `Fetch every pull request of a repository, keep those with a title, a
description and at least one comment or review, and write them to
<out-dir>/fetched-prs/<owner>-<name>-prs.json.

The repository may be a github.com URL or "owner/name".`,
	Example: `  prharvest fetch https://github.com/octo/hello
  prharvest fetch octo/hello --out-dir ./data`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if fetchOutDirFlag != "" {
			cfg.Server.BaseDir = fetchOutDirFlag
		}
		if fetchTokenFlag == "" {
			resolveToken(&cfg)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res, err := buildPipeline(&cfg).Run(ctx, args[0], fetchTokenFlag)
		if err != nil {
			return err
		}

		path, err := collect.NewOutput(cfg.Server.BaseDir).Save(ctx, res)
		if err != nil {
			return err
		}

		printFetchSummary(cmd.OutOrStdout(), res, path)
		return nil
	},
}

func printFetchSummary(w io.Writer, res *collect.Result, path string) {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("REPOSITORY", "PRS", "PAGES", "FILE").
		Row(res.Repo.String(), strconv.Itoa(len(res.PRs)), strconv.Itoa(res.Pages), path).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t)
}
