package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

var agentsCmd = &cobra.Command{
	Use:   "agents [agent]",
	Short: "Show the team roster or one agent's state",
	Long: `Without an argument, list every agent with its pending message count and
last activity. With an agent identity, show its recorded state: recent
activity, assigned tasks and reports received from teammates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAgents,
}

type agentRow struct {
	Identity    string `json:"identity"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Pending     int    `json:"pending"`
	High        int    `json:"high_priority"`
	Invocations int    `json:"invocations"`
	LastActive  string `json:"last_active,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

func runAgents(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	states := agent.NewStateStore(p.config.GetStateDir())

	if len(args) == 1 {
		id, err := team.Parse(args[0])
		if err != nil {
			return err
		}
		st, err := states.Load(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load agent state: %w", err)
		}
		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(st)
		}
		a, err := agent.New(id)
		if err != nil {
			return err
		}
		printAgentState(a.Profile(), st)
		return nil
	}

	summaries, err := p.mailbox.List(cmd.Context())
	if err != nil {
		return err
	}
	pending := make(map[team.Identity]mailbox.Summary, len(summaries))
	for _, s := range summaries {
		pending[s.Identity] = s
	}

	rows := make([]agentRow, 0, len(team.All()))
	for _, a := range agent.All() {
		prof := a.Profile()
		st, err := states.Load(cmd.Context(), prof.Identity)
		if err != nil {
			p.logger.Warn("failed to load agent state", "agent", prof.Identity, "error", err)
			st = &agent.State{}
		}
		row := agentRow{
			Identity:    string(prof.Identity),
			Icon:        prof.Icon,
			Title:       prof.Title,
			Pending:     pending[prof.Identity].Pending,
			High:        pending[prof.Identity].High,
			Invocations: st.Invocations,
			Disabled:    p.isDisabled(prof.Identity),
		}
		if !st.LastActive.IsZero() {
			row.LastActive = ui.FormatTime(st.LastActive)
		}
		rows = append(rows, row)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(rows)
	}

	tbl := ui.NewTable("AGENT", "ROLE", "PENDING", "RUNS", "LAST ACTIVE")
	for _, r := range rows {
		name := r.Identity
		if r.Disabled {
			name += " (disabled)"
		}
		pendingCol := fmt.Sprint(r.Pending)
		if r.High > 0 {
			pendingCol = fmt.Sprintf("%d (%d high)", r.Pending, r.High)
		}
		last := r.LastActive
		if last == "" {
			last = "never"
		}
		tbl.AddRow(name, r.Icon+" "+r.Title, pendingCol, r.Invocations, last)
	}
	ui.PrintSectionHeader(ui.TeamIcon, "Team", len(rows))
	tbl.Print()
	return nil
}

func printAgentState(prof agent.Profile, st *agent.State) {
	ui.OutputLine("%s %s (%s)", prof.Icon, prof.Title, prof.Identity)
	if st.LastActive.IsZero() {
		ui.OutputLine("  Never run")
		return
	}
	ui.OutputLine("  Last active: %s", ui.FormatTime(st.LastActive))
	ui.OutputLine("  Runs:        %d", st.Invocations)
	if st.Project != nil {
		ui.OutputLine("  Project:     %s (%s)", st.Project.Name, st.Project.Type)
	}

	if len(st.ActiveTasks) > 0 {
		ui.PrintSectionHeader("📋", "Tasks", len(st.ActiveTasks))
		for _, t := range st.ActiveTasks {
			ui.OutputLine("  [%s] %s (from %s)", t.Status, t.Description, t.AssignedBy)
		}
	}
	if len(st.Reports) > 0 {
		ui.PrintSectionHeader(ui.MessageIcon, "Reports", len(st.Reports))
		for _, r := range st.Reports {
			line := fmt.Sprintf("  %s from %s", r.Type, r.From)
			if r.File != "" {
				line += " on " + r.File
			}
			if r.Summary != "" {
				line += ": " + r.Summary
			}
			ui.OutputLine("%s", line)
		}
	}
	if n := len(st.Activity); n > 0 {
		recent := st.Activity
		if n > 10 {
			recent = recent[n-10:]
		}
		ui.PrintSectionHeader("🕑", "Recent activity", len(recent))
		for _, a := range recent {
			ui.OutputLine("  %s  %s %s", ui.FormatTime(a.At), a.Tool, a.File)
		}
	}
}
