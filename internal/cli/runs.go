package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alanmeadows/prharvest/internal/collect"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past collections",
	Long: `Display the latest collection of each repository in a table, most
recent first.`,
	Example: `  prharvest runs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := collect.NewOutput(appConfig.Server.BaseDir).ListRuns(cmd.Context())
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No collections recorded.")
			return nil
		}

		printRunsTable(cmd.OutOrStdout(), runs)
		return nil
	},
}

func printRunsTable(w io.Writer, runs []collect.Run) {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.Repo,
			strconv.Itoa(r.PRCount),
			strconv.Itoa(r.Pages),
			r.FetchedAt.Local().Format(time.DateTime),
			r.File,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("REPOSITORY", "PRS", "PAGES", "FETCHED", "FILE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t)
}
