// Package hooks defines the boundary between the host assistant and the
// hook commands: the JSON event read from stdin and the decision written
// back to stdout.
package hooks

import (
	"encoding/json"
	"strings"
)

// Tool names the host reports in tool_name.
const (
	ToolWrite     = "Write"
	ToolEdit      = "Edit"
	ToolMultiEdit = "MultiEdit"
	ToolBash      = "Bash"
	ToolTask      = "Task"

	// EventSessionStart and EventPreCommit are delivered in tool_name by
	// the session and git integrations.
	EventSessionStart = "session_start"
	EventPreCommit    = "pre_commit"
)

// Kind classifies an event for dispatch.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindCommand
)

// KindOf maps a tool name to the analysis path that handles it.
func KindOf(toolName string) Kind {
	switch toolName {
	case ToolWrite, ToolEdit, ToolMultiEdit:
		return KindFile
	case ToolBash:
		return KindCommand
	default:
		return KindOther
	}
}

// Input is one hook event as delivered by the host.
type Input struct {
	ToolName      string          `json:"tool_name"`
	ToolInput     map[string]any  `json:"tool_input"`
	ToolResult    json.RawMessage `json:"tool_result,omitempty"`
	ToolResponse  json.RawMessage `json:"tool_response,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	HookEventName string          `json:"hook_event_name,omitempty"`
	CWD           string          `json:"cwd,omitempty"`
	SubagentType  string          `json:"subagent_type,omitempty"`

	// Raw holds the full decoded object, including fields not mapped above.
	Raw map[string]any `json:"-"`
}

// Str returns tool_input[key] when it is a string.
func (in Input) Str(key string) string {
	if v, ok := in.ToolInput[key].(string); ok {
		return v
	}
	return ""
}

// Field returns a top-level string field from the raw event.
func (in Input) Field(key string) string {
	if v, ok := in.Raw[key].(string); ok {
		return v
	}
	return ""
}

// FilePath returns the file the tool operated on, if any.
func (in Input) FilePath() string {
	for _, key := range []string{"file_path", "path", "notebook_path"} {
		if p := in.Str(key); p != "" {
			return p
		}
	}
	return ""
}

// Content returns the text written by a file tool: the full content for
// Write, the replacement for Edit, and every replacement for MultiEdit.
func (in Input) Content() string {
	switch in.ToolName {
	case ToolEdit:
		return in.Str("new_string")
	case ToolMultiEdit:
		edits, _ := in.ToolInput["edits"].([]any)
		parts := make([]string, 0, len(edits))
		for _, e := range edits {
			if m, ok := e.(map[string]any); ok {
				if s, ok := m["new_string"].(string); ok {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		if c := in.Str("content"); c != "" {
			return c
		}
		return in.Str("new_string")
	}
}

// Command returns the shell command of a Bash event.
func (in Input) Command() string {
	return in.Str("command")
}

// ResultText returns the tool result as text. String results are
// unquoted; anything else is returned as raw JSON.
func (in Input) ResultText() string {
	raw := in.ToolResult
	if len(raw) == 0 {
		raw = in.ToolResponse
	}
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ResultObject decodes the tool result as a JSON object, or returns nil.
func (in Input) ResultObject() map[string]any {
	raw := in.ToolResult
	if len(raw) == 0 {
		raw = in.ToolResponse
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// Decision is the advisory answer returned to the host.
type Decision struct {
	Message string `json:"message"`
	Block   bool   `json:"block"`
}

// NoOp is the decision returned when there is nothing to say.
func NoOp() Decision {
	return Decision{}
}
