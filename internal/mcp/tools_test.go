package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

func TestMailboxTools(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	result, err := s.handleMailboxSend(ctx, callRequest("mailbox_send", map[string]interface{}{
		"to":       "security-engineer",
		"type":     "review_request",
		"priority": "high",
		"data":     map[string]interface{}{"file_path": "auth/login.py"},
	}))
	require.NoError(t, err)

	var sent mailbox.Envelope
	decodeResult(t, result, &sent)
	assert.NotEmpty(t, sent.ID)
	assert.Equal(t, team.Coordinator, sent.From)
	assert.Equal(t, team.SecurityEngineer, sent.To)
	assert.Equal(t, mailbox.PriorityHigh, sent.Priority)

	t.Run("peek keeps messages", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			result, err := s.handleMailboxPeek(ctx, callRequest("mailbox_peek", map[string]interface{}{
				"agent": "security-engineer",
			}))
			require.NoError(t, err)

			var contents MailboxContents
			decodeResult(t, result, &contents)
			assert.Equal(t, 1, contents.Count)
			require.Len(t, contents.Messages, 1)
			assert.Equal(t, sent.ID, contents.Messages[0].ID)
			assert.Equal(t, "auth/login.py", contents.Messages[0].Str("file_path"))
		}
	})

	t.Run("drain consumes messages", func(t *testing.T) {
		result, err := s.handleMailboxDrain(ctx, callRequest("mailbox_drain", map[string]interface{}{
			"agent": "security-engineer",
		}))
		require.NoError(t, err)
		var contents MailboxContents
		decodeResult(t, result, &contents)
		assert.Equal(t, 1, contents.Count)

		result, err = s.handleMailboxDrain(ctx, callRequest("mailbox_drain", map[string]interface{}{
			"agent": "security-engineer",
		}))
		require.NoError(t, err)
		decodeResult(t, result, &contents)
		assert.Equal(t, 0, contents.Count)
		assert.Empty(t, contents.Messages)
	})
}

func TestMailboxSendValidation(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{
			name:    "unknown recipient",
			args:    map[string]interface{}{"to": "ghost", "type": "review_request"},
			wantErr: "unknown agent: ghost",
		},
		{
			name:    "unknown sender",
			args:    map[string]interface{}{"to": "tester", "from": "ghost", "type": "review_request"},
			wantErr: "unknown agent: ghost",
		},
		{
			name:    "unknown type",
			args:    map[string]interface{}{"to": "tester", "type": "gossip"},
			wantErr: "unknown message type: gossip",
		},
		{
			name:    "bad priority",
			args:    map[string]interface{}{"to": "tester", "type": "test_request", "priority": "urgent"},
			wantErr: "invalid priority",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleMailboxSend(ctx, callRequest("mailbox_send", tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	envs, err := s.mailbox.Peek(ctx, team.Tester)
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestRouteFileTool(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		args        map[string]interface{}
		agents      []string
		significant bool
	}{
		{
			args:        map[string]interface{}{"file_path": "package.json", "tool_name": "Write"},
			agents:      []string{"frontend-developer", "backend-developer"},
			significant: true,
		},
		{
			args:   map[string]interface{}{"file_path": "src/components/Button.tsx"},
			agents: []string{"frontend-developer"},
		},
		{
			args:   map[string]interface{}{"file_path": "README.md"},
			agents: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.args["file_path"].(string), func(t *testing.T) {
			result, err := s.handleRouteFile(ctx, callRequest("route_file", tt.args))
			require.NoError(t, err)

			var route RouteInfo
			decodeResult(t, result, &route)
			assert.Equal(t, tt.agents, route.Agents)
			assert.Equal(t, tt.significant, route.Significant)
		})
	}

	_, err := s.handleRouteFile(ctx, callRequest("route_file", map[string]interface{}{}))
	assert.Error(t, err)
}

func TestListAgentsTool(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	env := mailbox.NewEnvelope(team.Coordinator, team.Tester, mailbox.TestRequest, nil)
	env.Priority = mailbox.PriorityHigh
	_, err := s.mailbox.Send(ctx, env)
	require.NoError(t, err)

	result, err := s.handleListAgents(ctx, callRequest("list_agents", nil))
	require.NoError(t, err)

	var agents []AgentInfo
	decodeResult(t, result, &agents)
	require.Len(t, agents, len(team.All()))
	assert.Equal(t, "project-manager", agents[0].Identity)
	assert.Equal(t, "🎯", agents[0].Icon)

	for _, a := range agents {
		if a.Identity == string(team.Tester) {
			assert.Equal(t, 1, a.Pending)
			assert.Equal(t, 1, a.High)
		} else {
			assert.Zero(t, a.Pending, a.Identity)
		}
	}
}
