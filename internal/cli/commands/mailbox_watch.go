package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/tail"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

var watchNew bool

var mailboxWatchCmd = &cobra.Command{
	Use:   "watch <agent>",
	Short: "Follow a mailbox and print messages as they arrive",
	Long: `Follow a mailbox and print messages as they arrive. Press Ctrl+C to stop.

Watching does not consume messages; the agent still receives them.`,
	Args: cobra.ExactArgs(1),
	RunE: runMailboxWatch,
}

func init() {
	mailboxWatchCmd.Flags().BoolVar(&watchNew, "new", false, "Only show messages sent after the watch starts")
}

func runMailboxWatch(cmd *cobra.Command, args []string) error {
	id, err := team.Parse(args[0])
	if err != nil {
		return err
	}
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !ui.GlobalFormatter.IsJSON() {
		ui.Info("Watching %s (Ctrl+C to stop)", id)
	}
	follower := tail.New(p.mailbox, id, tail.Options{
		SkipExisting: watchNew,
		Logger:       p.logger,
	})
	err = follower.Follow(ctx, func(env mailbox.Envelope) error {
		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(env)
		}
		ui.PrintEnvelope(env)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
