package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructToToolOptions(t *testing.T) {
	tests := []struct {
		name       string
		structType interface{}
		properties []string
		required   []string
	}{
		{
			name:       "mailbox send",
			structType: MailboxSendParams{},
			properties: []string{"to", "type", "from", "priority", "data"},
			required:   []string{"to", "type"},
		},
		{
			name:       "mailbox",
			structType: &MailboxParams{},
			properties: []string{"agent"},
			required:   []string{"agent"},
		},
		{
			name:       "route file",
			structType: RouteFileParams{},
			properties: []string{"file_path", "tool_name"},
			required:   []string{"file_path"},
		},
		{
			name:       "no parameters",
			structType: ListAgentsParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := StructToToolOptions(tt.structType)
			require.NoError(t, err)
			assert.Len(t, opts, len(tt.properties))

			tool := mcp.NewTool("probe", opts...)
			for _, p := range tt.properties {
				assert.Contains(t, tool.InputSchema.Properties, p)
			}
			assert.ElementsMatch(t, tt.required, tool.InputSchema.Required)
		})
	}
}

func TestStructToToolOptionsRejectsNonStruct(t *testing.T) {
	_, err := StructToToolOptions("not a struct")
	assert.Error(t, err)
}

func TestUnmarshalArgs(t *testing.T) {
	req := callRequest("mailbox_send", map[string]interface{}{
		"to":   "tester",
		"type": "test_request",
		"data": map[string]interface{}{"file_path": "lib/calc.py"},
	})

	var params MailboxSendParams
	require.NoError(t, UnmarshalArgs(req, &params))
	assert.Equal(t, "tester", params.To)
	assert.Equal(t, "test_request", params.Type)
	assert.Equal(t, "lib/calc.py", params.Data["file_path"])
}
