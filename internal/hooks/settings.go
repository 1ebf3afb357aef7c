package hooks

import (
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Host event names a settings entry can subscribe to.
const (
	HostPreToolUse   = "PreToolUse"
	HostPostToolUse  = "PostToolUse"
	HostSessionStart = "SessionStart"
	HostSubagentStop = "SubagentStop"
	HostStop         = "Stop"
)

// Command is one hook command in the host settings file.
type Command struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// Matcher groups commands under a tool-name pattern.
type Matcher struct {
	Matcher string    `json:"matcher,omitempty"`
	Hooks   []Command `json:"hooks"`
}

// Settings is the "hooks" section of the host settings file.
type Settings struct {
	Hooks map[string][]Matcher `json:"hooks"`
}

// DefaultSettings wires every agent and memory hook to binary. File and
// command analysis run before the tool so a critical finding can block it.
func DefaultSettings(binary string, agents []team.Identity) Settings {
	agentCmds := make([]Command, 0, len(agents))
	for _, id := range agents {
		agentCmds = append(agentCmds, Command{
			Type:    "command",
			Command: fmt.Sprintf("%s hook agent %s", binary, id),
			Timeout: 30,
		})
	}
	memory := func(event string) Command {
		return Command{Type: "command", Command: fmt.Sprintf("%s hook memory %s", binary, event), Timeout: 60}
	}

	return Settings{Hooks: map[string][]Matcher{
		HostPreToolUse: {
			{Matcher: "Write|Edit|MultiEdit|Bash", Hooks: agentCmds},
		},
		HostPostToolUse: {
			{Matcher: "Edit|Bash", Hooks: []Command{memory("error-resolved")}},
			{Matcher: "mcp__task.*", Hooks: []Command{memory("task-complete"), memory("prd-parsed")}},
		},
		HostSessionStart: {
			{Hooks: []Command{
				memory("session-start"),
				{Type: "command", Command: fmt.Sprintf("%s hook agent %s --event %s", binary, team.Coordinator, EventSessionStart), Timeout: 30},
			}},
		},
		HostSubagentStop: {
			{Hooks: []Command{memory("agent-task")}},
		},
		HostStop: {
			{Hooks: []Command{memory("session-end")}},
		},
	}}
}
