package cli

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	ledgersqlite "github.com/eipforge/eipharvest/internal/adapters/driven/ledger/sqlite"
)

var runsCmd = &cobra.Command{
	Use:   "runs [owner/repo]",
	Short: "List recorded harvest runs",
	Long: `List the harvest runs recorded in the run ledger, most recent
first. With a repository argument, only that repository's runs are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ledger, err := ledgersqlite.NewLedger("")
	if err != nil {
		return err
	}
	defer ledger.Close()

	repository := ""
	if len(args) > 0 {
		repository = args[0]
	}

	runs, err := ledger.Runs(cmd.Context(), repository)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Started", "Repository", "State", "Items", "Skipped", "Output"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.StartedAt.Local().Format(time.DateTime),
			run.Repository,
			stateLabel(run.State),
			run.Counters.ItemsProcessed,
			run.Counters.ItemsSkipped,
			run.OutputPath,
		})
	}
	t.Render()
	return nil
}
