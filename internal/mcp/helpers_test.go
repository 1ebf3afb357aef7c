package mcp

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
)

// setupTestServer creates a server over an empty mailbox directory.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	mb := mailbox.NewManager(filepath.Join(t.TempDir(), ".bizzy", "mailbox"))
	s, err := NewServer(mb, nil)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// decodeResult unmarshals the "result" field of an enhanced tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult, target interface{}) {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var envelope struct {
		Result   json.RawMessage    `json:"result"`
		Metadata ToolResultMetadata `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NotEmpty(t, envelope.Metadata.ToolUsed)
	require.NoError(t, json.Unmarshal(envelope.Result, target))
}
