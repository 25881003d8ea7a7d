package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persistent configuration",
	Long: `Get and set configuration values stored in ~/.eipharvest/config.toml.

Recognised keys:
  repository    default owner/repo for harvest and ratelimit
  output        default output file path
  github.token  personal access token (prefer 'auth set-token')`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	config, err := openConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if key == "repository" {
		if _, _, err := splitRepository(value); err != nil {
			return err
		}
	}

	if err := config.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	config, err := openConfig()
	if err != nil {
		return err
	}

	value, ok := config.Get(args[0])
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}
