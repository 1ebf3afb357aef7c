package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/cli/ui"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Flags for send command
var (
	sendFrom     string
	sendData     []string
	sendPriority string
)

var mailboxSendCmd = &cobra.Command{
	Use:   "send <to> <type>",
	Short: "Send a message to an agent",
	Long: `Send a message to an agent's mailbox. It is delivered the next time the
agent's hook runs.

Payload fields are given with --data, either as key=value pairs or as a JSON
object. Values that parse as JSON keep their type; anything else is a string.`,
	Example: `  # Ask the tester for recommendations
  bizzy-hooks mailbox send tester test_request --data file_path=src/app.py

  # JSON payload, high priority, explicit sender
  bizzy-hooks mb send security-engineer security_review_needed \
    --from backend-developer --priority high \
    --data '{"file_path": "api/users.py", "issues": ["hardcoded secret"]}'`,
	Args: cobra.ExactArgs(2),
	RunE: runMailboxSend,
}

func init() {
	mailboxSendCmd.Flags().StringVar(&sendFrom, "from", string(team.Coordinator), "Sender identity")
	mailboxSendCmd.Flags().StringArrayVarP(&sendData, "data", "d", nil, "Payload as key=value or a JSON object (repeatable)")
	mailboxSendCmd.Flags().StringVarP(&sendPriority, "priority", "p", string(mailbox.PriorityNormal), "Priority (normal, high)")
}

func runMailboxSend(cmd *cobra.Command, args []string) error {
	to, err := team.Parse(args[0])
	if err != nil {
		return err
	}
	from, err := team.Parse(sendFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	typ, err := mailbox.ParseMessageType(args[1])
	if err != nil {
		return err
	}
	priority, err := mailbox.ParsePriority(sendPriority)
	if err != nil {
		return err
	}
	data, err := parseData(sendData)
	if err != nil {
		return err
	}

	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	env := mailbox.NewEnvelope(from, to, typ, data)
	env.Priority = priority
	sent, err := p.mailbox.Send(cmd.Context(), env)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(sent)
	}
	ui.Success("Sent %s to %s (%s)", sent.Type, sent.To, sent.ID)
	return nil
}

// parseData merges key=value pairs and JSON objects into one payload.
func parseData(items []string) (map[string]any, error) {
	data := map[string]any{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if strings.HasPrefix(item, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(item), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON payload: %w", err)
			}
			for k, v := range obj {
				data[k] = v
			}
			continue
		}

		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid payload field %q: expected key=value", item)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			data[key] = decoded
		} else {
			data[key] = value
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
