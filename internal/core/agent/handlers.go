package agent

import (
	"context"
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// replyTo returns the sender of env, or fallback when the sender is not a
// team member.
func replyTo(env mailbox.Envelope, fallback team.Identity) team.Identity {
	if env.From.IsKnown() {
		return env.From
	}
	return fallback
}

// acknowledgeReview answers file change notifications for files matching
// rule with a review_complete to the coordinator.
func acknowledgeReview(rule routing.Rule) Handler {
	return func(ctx context.Context, c *Context, env mailbox.Envelope) error {
		filePath := env.Str("file_path")
		if filePath == "" {
			return fmt.Errorf("%s without file_path", env.Type)
		}
		if !rule.Match(filePath) {
			return nil
		}
		c.Send(ctx, team.Coordinator, mailbox.ReviewComplete, map[string]any{
			"file_path": filePath,
			"status":    "reviewed",
			"agent":     string(c.Self.Identity),
		})
		return nil
	}
}

// recordReport stores the envelope as a report in the agent's state.
func recordReport(_ context.Context, c *Context, env mailbox.Envelope) error {
	c.AddReport(Report{
		From:    env.From,
		Type:    env.Type,
		File:    env.Str("file_path"),
		Summary: summarize(env),
	})
	return nil
}

func summarize(env mailbox.Envelope) string {
	switch env.Type {
	case mailbox.CriticalIssueFound:
		issues, _ := env.Data["issues"].([]any)
		return fmt.Sprintf("%d critical issue(s)", len(issues))
	case mailbox.SecurityReviewNeeded:
		issues, _ := env.Data["security_issues"].([]any)
		return fmt.Sprintf("%d security issue(s)", len(issues))
	case mailbox.TestCoverageAnalysis:
		if env.Bool("test_file_exists") {
			return "test file exists"
		}
		return "missing test file " + env.Str("test_file_path")
	case mailbox.MeetingAccepted:
		return "accepted meeting " + env.Str("meeting_id")
	case mailbox.GitOperationAlert:
		return env.Str("command")
	default:
		if status := env.Str("status"); status != "" {
			return status
		}
		return ""
	}
}
