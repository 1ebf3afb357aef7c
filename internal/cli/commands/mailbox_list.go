package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

var mailboxListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List mailboxes with pending counts",
	Args:    cobra.NoArgs,
	RunE:    runMailboxList,
}

var clearAll bool

var mailboxClearCmd = &cobra.Command{
	Use:   "clear [agent]",
	Short: "Discard pending messages",
	Example: `  # Clear one mailbox
  bizzy-hooks mailbox clear researcher

  # Clear every mailbox
  bizzy-hooks mailbox clear --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMailboxClear,
}

func init() {
	mailboxClearCmd.Flags().BoolVar(&clearAll, "all", false, "Clear every mailbox")
}

type mailboxSummary struct {
	Agent   string `json:"agent"`
	Pending int    `json:"pending"`
	High    int    `json:"high_priority"`
	Oldest  string `json:"oldest,omitempty"`
	Newest  string `json:"newest,omitempty"`
}

func runMailboxList(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	summaries, err := p.mailbox.List(cmd.Context())
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		out := make([]mailboxSummary, 0, len(summaries))
		for _, s := range summaries {
			item := mailboxSummary{Agent: string(s.Identity), Pending: s.Pending, High: s.High}
			if s.Pending > 0 {
				item.Oldest = s.Oldest.UTC().Format(time.RFC3339)
				item.Newest = s.Newest.UTC().Format(time.RFC3339)
			}
			out = append(out, item)
		}
		return ui.GlobalFormatter.Output(out)
	}
	ui.PrintMailboxSummaries(summaries)
	return nil
}

func runMailboxClear(cmd *cobra.Command, args []string) error {
	var ids []team.Identity
	switch {
	case clearAll && len(args) == 0:
		ids = team.All()
	case !clearAll && len(args) == 1:
		id, err := team.Parse(args[0])
		if err != nil {
			return err
		}
		ids = []team.Identity{id}
	default:
		return fmt.Errorf("specify an agent or --all")
	}

	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	total := 0
	for _, id := range ids {
		n, err := p.mailbox.Clear(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", id, err)
		}
		total += n
	}
	ui.Success("Cleared %d message(s)", total)
	return nil
}
