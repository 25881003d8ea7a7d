// Package cli implements the eipharvest command line interface.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eipforge/eipharvest/internal/adapters/driven/config/file"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
	"github.com/eipforge/eipharvest/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "eipharvest",
	Short: "Harvest GitHub issue and pull request discussions",
	Long: `eipharvest downloads a repository's complete issue and pull request
history - bodies, comments, review comments, and reaction tallies - into an
append-only JSONL file suitable for training-data preparation.

The harvester tracks the API's rate budget, retries transient failures with
exponential backoff, and sleeps through rate-limit windows, so a multi-hour
run over a large repository completes unattended.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openConfig opens the config store at the default location.
func openConfig() (driven.ConfigStore, error) {
	store, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return store, nil
}

// splitRepository parses an owner/repo argument.
func splitRepository(arg string) (owner, repo string, err error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", arg)
	}
	return parts[0], parts[1], nil
}

// maskToken renders a credential safe for display.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
