package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/agent"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

func promptRequest(args map[string]string) mcp.GetPromptRequest {
	return mcp.GetPromptRequest{
		Params: mcp.GetPromptParams{Arguments: args},
	}
}

func assistantText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, result.Messages, 2)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)
	assert.Equal(t, mcp.RoleAssistant, result.Messages[1].Role)
	text, ok := result.Messages[1].Content.(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAgentBriefingPrompt(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	result, err := s.handleAgentBriefingPrompt(ctx, promptRequest(map[string]string{"agent": "tester"}))
	require.NoError(t, err)
	assert.Equal(t, "Briefing for tester", result.Description)
	assert.Contains(t, assistantText(t, result), "No pending messages")

	env := mailbox.NewEnvelope(team.Coordinator, team.Tester, mailbox.TestRequest, map[string]any{"file_path": "lib/calc.py"})
	env.Priority = mailbox.PriorityHigh
	_, err = s.mailbox.Send(ctx, env)
	require.NoError(t, err)

	result, err = s.handleAgentBriefingPrompt(ctx, promptRequest(map[string]string{"agent": "tester"}))
	require.NoError(t, err)
	text := assistantText(t, result)
	assert.Contains(t, text, "## 🧪 Tester")
	assert.Contains(t, text, "1. **test_request** from project-manager")
	assert.Contains(t, text, "high priority")
	assert.Contains(t, text, "file: lib/calc.py")

	// the briefing never consumes messages
	envs, err := s.mailbox.Peek(ctx, team.Tester)
	require.NoError(t, err)
	assert.Len(t, envs, 1)

	_, err = s.handleAgentBriefingPrompt(ctx, promptRequest(map[string]string{}))
	assert.Error(t, err)
	_, err = s.handleAgentBriefingPrompt(ctx, promptRequest(map[string]string{"agent": "ghost"}))
	assert.Error(t, err)
}

func TestChangeReviewPrompt(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	result, err := s.handleChangeReviewPrompt(ctx, promptRequest(map[string]string{
		"file_path": "package.json",
		"tool_name": "Write",
	}))
	require.NoError(t, err)
	text := assistantText(t, result)
	assert.Contains(t, text, "- ⚛️ Frontend Developer (`frontend-developer`)")
	assert.Contains(t, text, "- 🔧 Backend Developer (`backend-developer`)")
	assert.Contains(t, text, "coordination meeting")

	result, err = s.handleChangeReviewPrompt(ctx, promptRequest(map[string]string{"file_path": "README.md"}))
	require.NoError(t, err)
	assert.Contains(t, assistantText(t, result), "No agent is routed")
}

func TestBuildBriefingText(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	envs := []mailbox.Envelope{
		{Type: mailbox.ReviewComplete, From: team.BackendDeveloper, CreatedAt: now.Add(-90 * time.Minute), Priority: mailbox.PriorityNormal},
		{Type: mailbox.CriticalIssueFound, From: team.FrontendDeveloper, CreatedAt: now.Add(-50 * time.Hour), Priority: mailbox.PriorityHigh},
	}
	text := buildBriefingText(agent.Coordinator{}.Profile(), envs, now)
	assert.Contains(t, text, "2 pending message(s)")
	assert.Contains(t, text, "1. **review_complete** from backend-developer, 1h ago\n")
	assert.Contains(t, text, "2. **critical_issue_found** from frontend-developer, 2d ago ⚠️ high priority\n")
}
