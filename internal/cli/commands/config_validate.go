package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/config"
)

func init() {
	configCmd.AddCommand(configValidateCmd())
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file.

This command checks:
- The file matches the configuration schema
- Durations parse
- Routing rules and disabled agents name known identities`,
		Example: `  # Validate current project configuration
  bizzy-hooks config validate

  # Validate with verbose output
  bizzy-hooks config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: validateConfig,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed validation information")

	return cmd
}

func validateConfig(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	configManager := config.NewManager(projectRoot)
	if !configManager.IsInitialized() {
		ui.Info("No configuration file; defaults are in use")
		return nil
	}

	// Load validates against the schema and the semantic checks.
	cfg, err := configManager.Load()
	if err != nil {
		ui.Error("Configuration validation failed: %v", err)
		return fmt.Errorf("invalid configuration")
	}

	ui.Success("Configuration is valid")

	if verbose {
		routes, err := cfg.RoutingTable()
		if err != nil {
			return err
		}
		ui.OutputLine("")
		ui.OutputLine("Configuration details:")
		ui.OutputLine("  Version: %s", cfg.Version)
		if cfg.Project.Name != "" {
			ui.OutputLine("  Project: %s", cfg.Project.Name)
		}
		ui.OutputLine("  Mailbox: max %d messages, ttl %s, lock timeout %s",
			cfg.Mailbox.MaxMessages, cfg.Mailbox.TTL, cfg.Mailbox.LockTimeout)
		if cfg.Memory.Enabled {
			ui.OutputLine("  Memory: %s (timeout %s)", cfg.Memory.CLI, cfg.Memory.Timeout)
		} else {
			ui.OutputLine("  Memory: disabled")
		}
		ui.OutputLine("  Routing rules: %d", len(routes.Rules()))
		ui.OutputLine("  Disabled agents: %s", ui.JoinOrDash(cfg.Agents.Disabled))
	}

	return nil
}
