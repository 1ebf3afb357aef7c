package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	agentsResourceURI = "bizzy://agents"
	routesResourceURI = "bizzy://routes"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		agentsResourceURI,
		"Team Roster",
		mcp.WithResourceDescription("Agents with their pending mailbox counts"),
		mcp.WithMIMEType("application/json"),
	), s.handleAgentsResource)

	s.mcpServer.AddResource(mcp.NewResource(
		routesResourceURI,
		"Routing Table",
		mcp.WithResourceDescription("Rules the coordinator uses to route file changes"),
		mcp.WithMIMEType("application/json"),
	), s.handleRoutesResource)
}

// mailboxStatus is the roster resource entry.
type mailboxStatus struct {
	AgentInfo
	Oldest *time.Time `json:"oldest,omitempty"`
}

func (s *Server) handleAgentsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	infos, err := s.agentInfos(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.mailbox.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}
	oldest := make(map[string]time.Time, len(summaries))
	for _, sum := range summaries {
		if !sum.Oldest.IsZero() {
			oldest[string(sum.Identity)] = sum.Oldest
		}
	}

	out := make([]mailboxStatus, 0, len(infos))
	for _, info := range infos {
		st := mailboxStatus{AgentInfo: info}
		if t, ok := oldest[info.Identity]; ok {
			st.Oldest = &t
		}
		out = append(out, st)
	}
	return jsonResource(request.Params.URI, out)
}

// routeRule is the JSON form of a routing rule.
type routeRule struct {
	Agents       []string `json:"agents"`
	Extensions   []string `json:"extensions,omitempty"`
	PathContains []string `json:"path_contains,omitempty"`
	Filenames    []string `json:"filenames,omitempty"`
}

func (s *Server) handleRoutesResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rules := s.routes.Rules()
	out := struct {
		Rules       []routeRule `json:"rules"`
		Significant []string    `json:"significant_markers"`
		SourceDirs  []string    `json:"source_dirs"`
	}{
		Rules:       make([]routeRule, 0, len(rules)),
		Significant: s.routes.Significance().Markers,
		SourceDirs:  s.routes.Significance().SourceDirs,
	}
	for _, r := range rules {
		agents := make([]string, len(r.Agents))
		for i, id := range r.Agents {
			agents[i] = string(id)
		}
		out.Rules = append(out.Rules, routeRule{
			Agents:       agents,
			Extensions:   r.Extensions,
			PathContains: r.PathContains,
			Filenames:    r.Filenames,
		})
	}
	return jsonResource(request.Params.URI, out)
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
