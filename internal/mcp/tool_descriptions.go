package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	Examples    []string
	NextTools   []string
}

var toolDescriptions = map[string]ToolDescription{
	"mailbox_send": {
		Description: "Send a message to an agent's mailbox. The agent reads it the next time its hook runs",
		WhenToUse: []string{
			"When a teammate should review a file or answer a question",
			"When assigning a task to a specific agent",
			"When replaying a message by hand while debugging the team",
		},
		Examples: []string{
			`mailbox_send(to: "security-engineer", type: "review_request", data: {"file_path": "auth/login.py"})`,
			`mailbox_send(to: "frontend-developer", type: "task_assignment", data: {"task_id": "12", "description": "Build the settings page"}, priority: "high")`,
		},
		NextTools: []string{
			"mailbox_peek - Check the message is queued",
			"list_agents - See pending counts for every agent",
		},
	},

	"mailbox_peek": {
		Description: "Show the pending messages of an agent without consuming them",
		WhenToUse: []string{
			"To see what an agent will process on its next run",
			"To check whether a notification was delivered",
		},
		Examples: []string{
			`mailbox_peek(agent: "project-manager")`,
		},
		NextTools: []string{
			"mailbox_drain - Consume the messages",
		},
	},

	"mailbox_drain": {
		Description: "Return and remove every pending message of an agent. Drained messages are not delivered to the agent",
		WhenToUse: []string{
			"To clear a backlog that should not be processed",
			"To act on messages on an agent's behalf",
		},
		Examples: []string{
			`mailbox_drain(agent: "tester")`,
		},
		NextTools: []string{
			"list_agents - Confirm the mailbox is empty",
		},
	},

	"route_file": {
		Description: "Resolve which agents the coordinator notifies when a file changes, and whether the change calls a meeting",
		WhenToUse: []string{
			"Before editing a file, to learn which specialists will review it",
			"When checking routing rule overrides in .bizzy/config.yaml",
		},
		Examples: []string{
			`route_file(file_path: "package.json", tool_name: "Write")`,
			`route_file(file_path: "src/components/Button.tsx")`,
		},
		NextTools: []string{
			"mailbox_send - Ask a matched agent for a review",
		},
	},

	"list_agents": {
		Description: "List the team roster with each agent's icon, title and pending message count",
		WhenToUse: []string{
			"To find valid agent identities",
			"To see which agents have unprocessed messages",
		},
		Examples: []string{
			`list_agents()`,
		},
		NextTools: []string{
			"mailbox_peek - Inspect an agent's pending messages",
		},
	},
}

// GetEnhancedDescription returns the enhanced description for a tool
func GetEnhancedDescription(toolName string) string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(desc.Description)
	sb.WriteString("\n\nWHEN TO USE THIS TOOL:\n")
	for _, when := range desc.WhenToUse {
		sb.WriteString("- " + when + "\n")
	}
	if len(desc.Examples) > 0 {
		sb.WriteString("\nEXAMPLES:\n")
		for _, example := range desc.Examples {
			sb.WriteString(example + "\n")
		}
	}
	return sb.String()
}

// GetNextToolSuggestions returns suggested next tools for a given tool
func GetNextToolSuggestions(toolName string) []map[string]string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return nil
	}
	suggestions := make([]map[string]string, 0, len(desc.NextTools))
	for _, next := range desc.NextTools {
		suggestions = append(suggestions, map[string]string{"tool": next})
	}
	return suggestions
}
