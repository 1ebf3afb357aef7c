package commands

import (
	"github.com/spf13/cobra"
)

var mailboxCmd = &cobra.Command{
	Use:     "mailbox",
	Aliases: []string{"mb"},
	Short:   "Inspect and manage agent mailboxes",
	Long: `Inspect and manage agent mailboxes.

Each agent has one mailbox under .bizzy/mailbox. Agents drain their mailbox
each time their hook runs; these commands let you look inside, inject
messages and clear stale ones.`,
}

func init() {
	mailboxCmd.AddCommand(mailboxSendCmd)
	mailboxCmd.AddCommand(mailboxPeekCmd)
	mailboxCmd.AddCommand(mailboxDrainCmd)
	mailboxCmd.AddCommand(mailboxListCmd)
	mailboxCmd.AddCommand(mailboxClearCmd)
	mailboxCmd.AddCommand(mailboxWatchCmd)
}
