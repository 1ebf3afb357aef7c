package agent

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Context is what an agent sees during one invocation.
type Context struct {
	Self   Profile
	Root   string
	Routes *routing.Table
	Logger logger.Logger

	mailbox  *mailbox.Manager
	disabled map[team.Identity]bool
	now      func() time.Time
	changes  changes
}

// Now returns the invocation clock.
func (c *Context) Now() time.Time {
	return c.now()
}

// Send enqueues a normal-priority message. Failures are logged and
// otherwise ignored so the agent's own answer is unaffected.
func (c *Context) Send(ctx context.Context, to team.Identity, typ mailbox.MessageType, data map[string]any) {
	c.SendPriority(ctx, to, typ, data, mailbox.PriorityNormal)
}

// SendPriority enqueues a message with the given priority.
func (c *Context) SendPriority(ctx context.Context, to team.Identity, typ mailbox.MessageType, data map[string]any, prio mailbox.Priority) {
	if to == c.Self.Identity || c.disabled[to] {
		return
	}
	env := mailbox.NewEnvelope(c.Self.Identity, to, typ, data)
	env.Priority = prio
	if _, err := c.mailbox.Send(ctx, env); err != nil {
		c.Logger.Warn("failed to send message", "to", to, "type", typ, "error", err)
		return
	}
	c.Logger.Debug("message sent", "to", to, "type", typ, "priority", prio)
}

// Broadcast sends one copy of a message to each recipient.
func (c *Context) Broadcast(ctx context.Context, to []team.Identity, typ mailbox.MessageType, data map[string]any, prio mailbox.Priority) {
	for _, id := range to {
		c.SendPriority(ctx, id, typ, data, prio)
	}
}

// Teammates returns every other team member that is not disabled.
func (c *Context) Teammates() []team.Identity {
	var out []team.Identity
	for _, id := range team.All() {
		if id != c.Self.Identity && !c.disabled[id] {
			out = append(out, id)
		}
	}
	return out
}

// Resolve makes a relative path absolute against the project root.
func (c *Context) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Root == "" {
		return path
	}
	return filepath.Join(c.Root, path)
}

// LogActivity records a handled event in the agent's state.
func (c *Context) LogActivity(tool, file string) {
	c.changes.activity = append(c.changes.activity, Activity{At: c.now(), Tool: tool, File: file})
}

// AddTask records a task assignment.
func (c *Context) AddTask(t Task) {
	if t.AssignedAt.IsZero() {
		t.AssignedAt = c.now()
	}
	c.changes.tasks = append(c.changes.tasks, t)
}

// AddReport records a teammate's report.
func (c *Context) AddReport(r Report) {
	if r.At.IsZero() {
		r.At = c.now()
	}
	c.changes.reports = append(c.changes.reports, r)
}

// SetProject records project detection results.
func (c *Context) SetProject(p ProjectInfo) {
	c.changes.project = &p
}
