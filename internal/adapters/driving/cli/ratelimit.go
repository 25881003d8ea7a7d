package cli

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/eipforge/eipharvest/internal/adapters/driven/auth"
)

var ratelimitToken string

var ratelimitCmd = &cobra.Command{
	Use:   "ratelimit [owner/repo]",
	Short: "Show the current API request budget",
	Long: `Query the core API rate limit: how many requests remain in the
current window and when it resets. The query itself does not count against
the quota.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRatelimit,
}

func init() {
	ratelimitCmd.Flags().StringVar(&ratelimitToken, "token", "",
		"GitHub personal access token")
	rootCmd.AddCommand(ratelimitCmd)
}

func runRatelimit(cmd *cobra.Command, args []string) error {
	config, err := openConfig()
	if err != nil {
		return err
	}

	repository := config.GetString("repository")
	if len(args) > 0 {
		repository = args[0]
	}
	// The rate-limit endpoint is repository-independent; any valid
	// owner/repo pair satisfies the client.
	if repository == "" {
		repository = "octocat/hello-world"
	}
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return err
	}

	provider := auth.NewChainTokenProvider(
		auth.NewStaticTokenProvider(ratelimitToken),
		auth.NewEnvTokenProvider(),
		auth.NewConfigTokenProvider(config),
	)
	source := newHarvestSource(owner, repo, provider)

	quota, err := source.Quota(cmd.Context())
	if err != nil {
		return err
	}

	mode := "authenticated"
	if !source.Authenticated() {
		mode = "unauthenticated"
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Rate Limit", mode})
	t.AppendRows([]table.Row{
		{"Remaining", quota.Remaining},
		{"Limit", quota.Limit},
		{"Resets", quota.ResetAt.Local().Format(time.RFC1123)},
	})
	t.Render()
	return nil
}
