package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var routeTool string

var routesCmd = &cobra.Command{
	Use:   "routes [path]",
	Short: "Show which agents are notified about a file",
	Long: `Show which agents the coordinator notifies when a file changes, and whether
the change is significant enough to call a coordination meeting.

Without a path, the routing table is listed.`,
	Example: `  bizzy-hooks routes src/components/Button.tsx
  bizzy-hooks routes package.json --tool Write
  bizzy-hooks routes list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoutes,
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the routing table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		return printRoutingTable(p.routes)
	},
}

func init() {
	routesCmd.Flags().StringVar(&routeTool, "tool", hooks.ToolEdit, "Tool that changed the file (Write, Edit, MultiEdit)")
	routesCmd.AddCommand(routesListCmd)
}

type routeResult struct {
	FilePath    string   `json:"file_path"`
	ToolName    string   `json:"tool_name"`
	Agents      []string `json:"agents"`
	Significant bool     `json:"significant"`
}

func runRoutes(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return printRoutingTable(p.routes)
	}

	res := routeResult{
		FilePath:    args[0],
		ToolName:    routeTool,
		Agents:      identities(p.routes.Resolve(args[0])),
		Significant: p.routes.IsSignificant(args[0], routeTool),
	}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(res)
	}

	ui.OutputLine("%s %s", ui.RouteIcon, res.FilePath)
	if len(res.Agents) == 0 {
		ui.OutputLine("  No agent is notified")
	} else {
		ui.OutputLine("  Agents:      %s", strings.Join(res.Agents, ", "))
	}
	if res.Significant {
		ui.OutputLine("  Significant: yes (%s calls a coordination meeting)", res.ToolName)
	} else {
		ui.OutputLine("  Significant: no")
	}
	return nil
}

type ruleRow struct {
	Agents       []string `json:"agents"`
	Extensions   []string `json:"extensions,omitempty"`
	PathContains []string `json:"path_contains,omitempty"`
	Filenames    []string `json:"filenames,omitempty"`
}

func printRoutingTable(t *routing.Table) error {
	rules := t.Rules()
	sig := t.Significance()

	if ui.GlobalFormatter.IsJSON() {
		rows := make([]ruleRow, 0, len(rules))
		for _, r := range rules {
			rows = append(rows, ruleRow{
				Agents:       identities(r.Agents),
				Extensions:   r.Extensions,
				PathContains: r.PathContains,
				Filenames:    r.Filenames,
			})
		}
		return ui.GlobalFormatter.Output(map[string]any{
			"rules":               rows,
			"significant_markers": sig.Markers,
			"source_dirs":         sig.SourceDirs,
			"create_tools":        sig.CreateTools,
		})
	}

	tbl := ui.NewTable("AGENTS", "EXTENSIONS", "PATH CONTAINS", "FILENAMES")
	for _, r := range rules {
		tbl.AddRow(
			strings.Join(identities(r.Agents), ", "),
			ui.JoinOrDash(r.Extensions),
			ui.JoinOrDash(r.PathContains),
			ui.JoinOrDash(r.Filenames),
		)
	}
	ui.PrintSectionHeader(ui.RouteIcon, "Routing rules", len(rules))
	tbl.Print()

	ui.OutputLine("\nSignificant changes:")
	ui.OutputLine("  Markers:      %s", ui.JoinOrDash(sig.Markers))
	ui.OutputLine("  Source dirs:  %s (with %s)", ui.JoinOrDash(sig.SourceDirs), ui.JoinOrDash(sig.CreateTools))
	return nil
}

func identities(ids []team.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
