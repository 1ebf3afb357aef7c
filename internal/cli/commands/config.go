package commands

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect bizzy-hooks configuration",
	Long: `Inspect the project configuration in .bizzy/config.yaml.

Projects without a configuration file use the defaults.`,
	Example: `  # View current configuration
  bizzy-hooks config show

  # Validate configuration
  bizzy-hooks config validate`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
