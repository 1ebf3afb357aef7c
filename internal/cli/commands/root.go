// Package commands provides the bizzy-hooks CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
)

var flagFormat string

var rootCmd = &cobra.Command{
	Use:   "bizzy-hooks",
	Short: "Hook commands for a simulated multi-agent development team",
	Long: `bizzy-hooks is invoked by the coding assistant as a hook command.

Each hook runs one team agent: the agent drains its mailbox, reviews the
current tool event, notifies other agents and returns an advisory decision.
Memory hooks forward commits, finished tasks and resolved errors to the
external memory CLI.

The same binary lets you inspect mailboxes, routing and agent state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		if err := ui.SetGlobalFormatter(format); err != nil {
			return err
		}
		cmd.SetContext(logger.WithContext(cmd.Context(), CreateLogger()))
		return nil
	},
}

func init() {
	RegisterLoggerFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "pretty", "Output format (pretty, json)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(mailboxCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
