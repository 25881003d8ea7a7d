package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eipforge/eipharvest/internal/adapters/driven/auth"
	ledgersqlite "github.com/eipforge/eipharvest/internal/adapters/driven/ledger/sqlite"
	"github.com/eipforge/eipharvest/internal/adapters/driven/sink/jsonl"
	"github.com/eipforge/eipharvest/internal/connectors/github"
	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
	"github.com/eipforge/eipharvest/internal/core/ports/driving"
	"github.com/eipforge/eipharvest/internal/core/services"
	"github.com/eipforge/eipharvest/internal/logger"
)

// DefaultOutput is the output file written when --output is not given.
const DefaultOutput = "github_discussions.jsonl"

var (
	harvestOutput string
	harvestToken  string
	harvestResume bool
	harvestYes    bool
)

// newHarvestSource builds the GitHub source. A package variable so tests
// can substitute an httptest-backed client.
var newHarvestSource = func(owner, repo string, provider driven.TokenProvider) driven.HarvestSource {
	return github.NewClient(owner, repo, provider)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest [owner/repo]",
	Short: "Harvest a repository's issues and pull requests",
	Long: `Harvest every issue and pull request of a repository - with comments,
review comments, and reaction tallies - into an append-only JSONL file.

The repository argument can be omitted if a default is configured:
  eipharvest config set repository ethereum/EIPs

Authentication is resolved from --token, then GITHUB_TOKEN, then the stored
config token. Unauthenticated harvests are limited to 60 requests per hour
and prompt for confirmation when the remaining quota is low.

Examples:
  eipharvest harvest ethereum/EIPs
  eipharvest harvest ethereum/EIPs --output eips.jsonl --resume
  GITHUB_TOKEN=ghp_xxx eipharvest harvest golang/go`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringVarP(&harvestOutput, "output", "o", "",
		"output JSONL file (default "+DefaultOutput+")")
	harvestCmd.Flags().StringVar(&harvestToken, "token", "",
		"GitHub personal access token")
	harvestCmd.Flags().BoolVar(&harvestResume, "resume", false,
		"skip items recorded by prior runs for this repository")
	harvestCmd.Flags().BoolVarP(&harvestYes, "yes", "y", false,
		"proceed without confirmation prompts")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	config, err := openConfig()
	if err != nil {
		return err
	}

	repository := config.GetString("repository")
	if len(args) > 0 {
		repository = args[0]
	}
	if repository == "" {
		return fmt.Errorf("no repository given and none configured")
	}
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return err
	}

	provider := auth.NewChainTokenProvider(
		auth.NewStaticTokenProvider(harvestToken),
		auth.NewEnvTokenProvider(),
		auth.NewConfigTokenProvider(config),
	)
	source := newHarvestSource(owner, repo, provider)

	output := harvestOutput
	if output == "" {
		output = config.GetString("output")
	}
	if output == "" {
		output = DefaultOutput
	}
	sink, err := jsonl.NewSink(output)
	if err != nil {
		return err
	}
	defer sink.Close()

	// The ledger is observability, not correctness: a broken ledger only
	// disables resume and run history.
	var runLedger driven.RunLedger
	if ledger, ledgerErr := ledgersqlite.NewLedger(""); ledgerErr == nil {
		runLedger = ledger
		defer ledger.Close()
	} else {
		if harvestResume {
			return fmt.Errorf("resume requested but ledger unavailable: %w", ledgerErr)
		}
		logger.Warn("Run ledger unavailable: %v", ledgerErr)
	}

	service := services.NewHarvestService(source, sink, runLedger, services.HarvestOptions{
		Resume:  harvestResume,
		Confirm: confirmLowQuota(cmd),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Harvesting %s into %s...\n", repository, output)
	result, err := harvestWithProgress(ctx, cmd, service)
	if result != nil {
		printSummary(cmd, *result)
	}
	return err
}

// harvestWithProgress runs the harvest while displaying progress updates.
func harvestWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	harvester driving.Harvester,
) (*domain.RunResult, error) {
	type outcome struct {
		result *domain.RunResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := harvester.Run(ctx)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := domain.Counters{}
	for {
		select {
		case o := <-done:
			cmd.Println()
			return o.result, o.err
		case <-ticker.C:
			status := harvester.Status()
			if status.Counters != last {
				cmd.Printf("\r%s: %d items, %d pages",
					stateLabel(status.State),
					status.Counters.ItemsProcessed, status.Counters.PagesSeen)
				last = status.Counters
			}
		}
	}
}

// confirmLowQuota builds the low-quota confirmation prompt. --yes skips
// the prompt; a non-interactive stdin declines.
func confirmLowQuota(cmd *cobra.Command) services.ConfirmFunc {
	return func(quota domain.Quota) bool {
		if harvestYes {
			return true
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return false
		}

		cmd.Printf("Only %d of %d unauthenticated requests remain (resets %s).\n",
			quota.Remaining, quota.Limit, quota.ResetAt.Format(time.Kitchen))
		cmd.Print("Continue anyway? [y/N]: ")

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func printSummary(cmd *cobra.Command, result domain.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Harvest", result.Repository})
	t.AppendRows([]table.Row{
		{"State", stateLabel(result.State)},
		{"Pages fetched", result.Counters.PagesSeen},
		{"Items harvested", result.Counters.ItemsProcessed},
		{"Items skipped", result.Counters.ItemsSkipped},
		{"Cross-references excluded", result.Counters.ItemsExcluded},
		{"Duplicates dropped", result.Counters.ItemsDeduplicated},
		{"Output", result.OutputPath},
		{"Duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Second)},
	})
	t.Render()
}

func stateLabel(state domain.RunState) string {
	switch state {
	case domain.RunInit:
		return "initialising"
	case domain.RunFetchingIssues:
		return "fetching issues"
	case domain.RunFetchingPulls:
		return "fetching pull requests"
	case domain.RunDone:
		return "done"
	case domain.RunAborted:
		return "aborted"
	default:
		return string(state)
	}
}
