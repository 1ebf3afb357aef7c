package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StructToToolOptions converts a struct with tags into MCP tool options.
// Fields use tags like `json:"to" mcp:"required" description:"Recipient"`
// and optionally `enum:"\"a\",\"b\""`.
func StructToToolOptions(structType interface{}) ([]mcp.ToolOption, error) {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %v", t.Kind())
	}

	var toolOptions []mcp.ToolOption
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		fieldName, _, _ := strings.Cut(jsonTag, ",")

		description := field.Tag.Get("description")
		if description == "" {
			description = fmt.Sprintf("%s field", fieldName)
		}

		opts := []mcp.PropertyOption{mcp.Description(description)}
		if field.Tag.Get("mcp") == "required" {
			opts = append(opts, mcp.Required())
		}

		switch field.Type.Kind() { //nolint:exhaustive // Only handling types we support
		case reflect.String:
			if enumTag := field.Tag.Get("enum"); enumTag != "" {
				var enumValues []string
				if err := json.Unmarshal([]byte("["+enumTag+"]"), &enumValues); err == nil {
					opts = append(opts, mcp.Enum(enumValues...))
				}
			}
			toolOptions = append(toolOptions, mcp.WithString(fieldName, opts...))
		case reflect.Int, reflect.Int64:
			toolOptions = append(toolOptions, mcp.WithNumber(fieldName, opts...))
		case reflect.Bool:
			toolOptions = append(toolOptions, mcp.WithBoolean(fieldName, opts...))
		case reflect.Map:
			toolOptions = append(toolOptions, mcp.WithObject(fieldName, opts...))
		default:
			continue
		}
	}
	return toolOptions, nil
}

// WithStructOptions combines a description with struct-based options.
func WithStructOptions(description string, structType interface{}) ([]mcp.ToolOption, error) {
	structOpts, err := StructToToolOptions(structType)
	if err != nil {
		return nil, err
	}
	return append([]mcp.ToolOption{mcp.WithDescription(description)}, structOpts...), nil
}

// UnmarshalArgs unmarshals CallToolRequest arguments into a struct.
func UnmarshalArgs[T any](request mcp.CallToolRequest, target *T) error {
	jsonBytes, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal arguments to struct: %w", err)
	}
	return nil
}

// MailboxSendParams are the arguments of mailbox_send.
type MailboxSendParams struct {
	To       string         `json:"to" mcp:"required" description:"Recipient agent identity, e.g. backend-developer"`
	Type     string         `json:"type" mcp:"required" description:"Message type, e.g. review_request"`
	From     string         `json:"from,omitempty" description:"Sender identity (defaults to project-manager)"`
	Priority string         `json:"priority,omitempty" description:"Message priority" enum:"\"normal\",\"high\""`
	Data     map[string]any `json:"data,omitempty" description:"Message payload object"`
}

// MailboxParams identify a mailbox.
type MailboxParams struct {
	Agent string `json:"agent" mcp:"required" description:"Agent identity whose mailbox to read"`
}

// RouteFileParams are the arguments of route_file.
type RouteFileParams struct {
	FilePath string `json:"file_path" mcp:"required" description:"Path of the changed file, relative to the project root"`
	ToolName string `json:"tool_name,omitempty" description:"Tool that changed the file (Write, Edit or MultiEdit)" enum:"\"Write\",\"Edit\",\"MultiEdit\""`
}

// ListAgentsParams are the arguments of list_agents.
type ListAgentsParams struct{}
