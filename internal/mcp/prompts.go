package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"agent-briefing",
		mcp.WithPromptDescription("Summarise an agent's pending messages so you can act on them in its role"),
		mcp.WithArgument("agent",
			mcp.ArgumentDescription("Agent identity, e.g. tester"),
			mcp.RequiredArgument(),
		),
	), s.handleAgentBriefingPrompt)

	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"change-review",
		mcp.WithPromptDescription("Plan reviews for a file change: who is notified and whether a meeting is called"),
		mcp.WithArgument("file_path",
			mcp.ArgumentDescription("Path of the file you are about to change"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tool_name",
			mcp.ArgumentDescription("Write, Edit or MultiEdit (default Edit)"),
		),
	), s.handleChangeReviewPrompt)
}

func (s *Server) handleAgentBriefingPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Arguments["agent"]
	if name == "" {
		return nil, fmt.Errorf("agent is required")
	}
	id, err := parseAgent(name)
	if err != nil {
		return nil, err
	}
	a, err := agent.New(id)
	if err != nil {
		return nil, err
	}
	envs, err := s.mailbox.Peek(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox: %w", err)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Briefing for %s", id),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf("Brief me as the %s on what is waiting.", id)),
			},
			{
				Role:    mcp.RoleAssistant,
				Content: mcp.NewTextContent(buildBriefingText(a.Profile(), envs, time.Now())),
			},
		},
	}, nil
}

func buildBriefingText(p agent.Profile, envs []mailbox.Envelope, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s\n\n", p.Icon, p.Title)

	if len(envs) == 0 {
		sb.WriteString("No pending messages. The mailbox is empty.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d pending message(s), oldest first:\n\n", len(envs))
	for i, env := range envs {
		marker := ""
		if env.Priority == mailbox.PriorityHigh {
			marker = " ⚠️ high priority"
		}
		fmt.Fprintf(&sb, "%d. **%s** from %s, %s%s\n", i+1, env.Type, env.From, formatAge(now, env.CreatedAt), marker)
		if file := env.Str("file_path"); file != "" {
			fmt.Fprintf(&sb, "   file: %s\n", file)
		}
	}

	sb.WriteString("\nThese are delivered the next time the agent's hook runs. ")
	sb.WriteString("Use `mailbox_drain` only if they should not be processed.\n")
	return sb.String()
}

func (s *Server) handleChangeReviewPrompt(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	filePath := request.Params.Arguments["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	toolName := request.Params.Arguments["tool_name"]
	if toolName == "" {
		toolName = "Edit"
	}

	agents := s.routes.Resolve(filePath)
	significant := s.routes.IsSignificant(filePath, toolName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Review plan for `%s`\n\n", filePath)
	if len(agents) == 0 {
		sb.WriteString("No agent is routed for this path. The coordinator will not notify anyone.\n")
	} else {
		sb.WriteString("The coordinator notifies:\n\n")
		for _, id := range agents {
			if a, err := agent.New(id); err == nil {
				p := a.Profile()
				fmt.Fprintf(&sb, "- %s %s (`%s`)\n", p.Icon, p.Title, id)
			}
		}
		if significant {
			sb.WriteString("\nThis change is significant, so a coordination meeting is called for these agents.\n")
		}
	}
	fmt.Fprintf(&sb, "\nTo ask for an explicit review, send `review_request` with `file_path: %q` to any of them via `mailbox_send`.\n", filePath)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review plan for %s", filePath),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf("I am about to %s %s. Who reviews it?", strings.ToLower(toolName), filePath)),
			},
			{
				Role:    mcp.RoleAssistant,
				Content: mcp.NewTextContent(sb.String()),
			},
		},
	}, nil
}

// formatAge renders how long ago t was.
func formatAge(now, t time.Time) string {
	if t.IsZero() {
		return "at an unknown time"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
