// Package agent implements the simulated development team: each agent
// drains its mailbox, reacts to the current hook event and returns an
// advisory decision.
package agent

import (
	"context"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// Profile is how an agent presents itself.
type Profile struct {
	Identity    team.Identity
	Icon        string
	Title       string
	Affirmation string
	Labels      review.Labels
}

// Header returns the report header for this profile.
func (p Profile) Header() review.Header {
	return review.Header{
		Icon:        p.Icon,
		Title:       p.Title,
		Affirmation: p.Affirmation,
		Labels:      p.Labels,
	}
}

// Handler processes one envelope from the agent's mailbox.
type Handler func(ctx context.Context, c *Context, env mailbox.Envelope) error

// Handlers maps message types to handlers. Types without an entry are
// ignored.
type Handlers map[mailbox.MessageType]Handler

// Outcome is the result of analysing one event. When Report is set the
// runtime applies the decision policy to it; otherwise Decision is returned
// as is.
type Outcome struct {
	FilePath string
	Report   *review.Report
	Decision hooks.Decision
}

// Agent is one member of the team.
type Agent interface {
	Profile() Profile
	// Relevant reports whether changes to filePath concern the agent.
	Relevant(filePath string) bool
	Handlers() Handlers
	Analyze(ctx context.Context, c *Context, in hooks.Input) (Outcome, error)
}

// reviewOutcome wraps findings for filePath in a report that affirms
// clean files.
func reviewOutcome(p Profile, filePath string, findings review.Findings) Outcome {
	return Outcome{
		FilePath: filePath,
		Report: &review.Report{
			Header:   p.Header(),
			Subject:  baseName(filePath),
			Findings: findings,
			Affirm:   true,
		},
	}
}

func adviceOutcome(a review.Advice) Outcome {
	return Outcome{Decision: a.Decision()}
}
