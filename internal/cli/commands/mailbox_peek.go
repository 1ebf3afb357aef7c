package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

var mailboxPeekCmd = &cobra.Command{
	Use:   "peek <agent>",
	Short: "Show pending messages without consuming them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showMailbox(cmd, args[0], (*mailbox.Manager).Peek)
	},
}

var mailboxDrainCmd = &cobra.Command{
	Use:     "drain <agent>",
	Aliases: []string{"recv"},
	Short:   "Consume and show pending messages",
	Long: `Consume and show pending messages. Drained messages are not delivered to
the agent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showMailbox(cmd, args[0], (*mailbox.Manager).Drain)
	},
}

type mailboxRead func(*mailbox.Manager, context.Context, team.Identity) ([]mailbox.Envelope, error)

func showMailbox(cmd *cobra.Command, name string, read mailboxRead) error {
	id, err := team.Parse(name)
	if err != nil {
		return err
	}
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	envs, err := read(p.mailbox, cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read mailbox: %w", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(envs)
	}
	ui.PrintEnvelopeList(string(id), envs)
	return nil
}
