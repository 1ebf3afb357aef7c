package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// AgentInfo is one roster entry returned by list_agents.
type AgentInfo struct {
	Identity string `json:"identity"`
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Pending  int    `json:"pending"`
	High     int    `json:"high_priority"`
}

// RouteInfo is the result of route_file.
type RouteInfo struct {
	FilePath    string   `json:"file_path"`
	ToolName    string   `json:"tool_name"`
	Agents      []string `json:"agents"`
	Significant bool     `json:"significant"`
}

// MailboxContents is the result of mailbox_peek and mailbox_drain.
type MailboxContents struct {
	Agent    string             `json:"agent"`
	Count    int                `json:"count"`
	Messages []mailbox.Envelope `json:"messages"`
}

func (s *Server) registerTools() error {
	tools := []struct {
		name    string
		params  interface{}
		handler server.ToolHandlerFunc
	}{
		{"mailbox_send", MailboxSendParams{}, s.handleMailboxSend},
		{"mailbox_peek", MailboxParams{}, s.handleMailboxPeek},
		{"mailbox_drain", MailboxParams{}, s.handleMailboxDrain},
		{"route_file", RouteFileParams{}, s.handleRouteFile},
		{"list_agents", ListAgentsParams{}, s.handleListAgents},
	}
	for _, t := range tools {
		opts, err := WithStructOptions(GetEnhancedDescription(t.name), t.params)
		if err != nil {
			return fmt.Errorf("failed to create %s options: %w", t.name, err)
		}
		s.mcpServer.AddTool(mcp.NewTool(t.name, opts...), t.handler)
	}
	return nil
}

func (s *Server) handleMailboxSend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params MailboxSendParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, InvalidParameterError("arguments", "to, type, and an optional data object")
	}

	to, err := parseAgent(params.To)
	if err != nil {
		return nil, err
	}
	from := team.Coordinator
	if params.From != "" {
		if from, err = parseAgent(params.From); err != nil {
			return nil, err
		}
	}
	typ, err := mailbox.ParseMessageType(params.Type)
	if err != nil {
		return nil, UnknownMessageTypeError(params.Type)
	}
	priority, err := mailbox.ParsePriority(params.Priority)
	if err != nil {
		return nil, InvalidParameterError("priority", "normal or high")
	}

	env := mailbox.NewEnvelope(from, to, typ, params.Data)
	env.Priority = priority
	sent, err := s.mailbox.Send(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.logger.Info("message sent via MCP", "to", to, "type", typ, "id", sent.ID)
	return createEnhancedResult("mailbox_send", sent)
}

func (s *Server) handleMailboxPeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.readMailbox(ctx, request, "mailbox_peek", s.mailbox.Peek)
}

func (s *Server) handleMailboxDrain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.readMailbox(ctx, request, "mailbox_drain", s.mailbox.Drain)
}

func (s *Server) readMailbox(
	ctx context.Context,
	request mcp.CallToolRequest,
	toolName string,
	read func(context.Context, team.Identity) ([]mailbox.Envelope, error),
) (*mcp.CallToolResult, error) {
	var params MailboxParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, InvalidParameterError("agent", "an agent identity string")
	}
	id, err := parseAgent(params.Agent)
	if err != nil {
		return nil, err
	}

	envs, err := read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox: %w", err)
	}
	return createEnhancedResult(toolName, MailboxContents{
		Agent:    string(id),
		Count:    len(envs),
		Messages: envs,
	})
}

func (s *Server) handleRouteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params RouteFileParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, InvalidParameterError("file_path", "a file path string")
	}
	if params.FilePath == "" {
		return nil, InvalidParameterError("file_path", "a non-empty path")
	}
	if params.ToolName == "" {
		params.ToolName = "Edit"
	}

	agents := []string{}
	for _, id := range s.routes.Resolve(params.FilePath) {
		agents = append(agents, string(id))
	}
	return createEnhancedResult("route_file", RouteInfo{
		FilePath:    params.FilePath,
		ToolName:    params.ToolName,
		Agents:      agents,
		Significant: s.routes.IsSignificant(params.FilePath, params.ToolName),
	})
}

func (s *Server) handleListAgents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := s.agentInfos(ctx)
	if err != nil {
		return nil, err
	}
	return createEnhancedResult("list_agents", agents)
}

func (s *Server) agentInfos(ctx context.Context) ([]AgentInfo, error) {
	summaries, err := s.mailbox.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}
	pending := make(map[team.Identity]mailbox.Summary, len(summaries))
	for _, sum := range summaries {
		pending[sum.Identity] = sum
	}

	infos := make([]AgentInfo, 0, len(team.All()))
	for _, a := range agent.All() {
		p := a.Profile()
		sum := pending[p.Identity]
		infos = append(infos, AgentInfo{
			Identity: string(p.Identity),
			Icon:     p.Icon,
			Title:    p.Title,
			Pending:  sum.Pending,
			High:     sum.High,
		})
	}
	return infos, nil
}

func parseAgent(s string) (team.Identity, error) {
	id, err := team.Parse(s)
	if err != nil {
		return "", UnknownAgentError(s)
	}
	return id, nil
}
