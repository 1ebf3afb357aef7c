package agent

import (
	"context"
	"fmt"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// Runtime runs agents for single hook invocations.
type Runtime struct {
	mailbox  *mailbox.Manager
	states   *StateStore
	routes   *routing.Table
	root     string
	disabled map[team.Identity]bool
	logger   logger.Logger
	now      func() time.Time
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStateStore persists per-agent state. Without it state is discarded.
func WithStateStore(s *StateStore) Option {
	return func(r *Runtime) { r.states = s }
}

// WithRoutes sets the coordinator's routing table.
func WithRoutes(t *routing.Table) Option {
	return func(r *Runtime) { r.routes = t }
}

// WithRoot sets the project root used to resolve relative paths.
func WithRoot(root string) Option {
	return func(r *Runtime) { r.root = root }
}

// WithDisabled excludes agents from receiving messages.
func WithDisabled(ids ...team.Identity) Option {
	return func(r *Runtime) {
		for _, id := range ids {
			r.disabled[id] = true
		}
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// NewRuntime creates a runtime delivering messages through mb.
func NewRuntime(mb *mailbox.Manager, opts ...Option) *Runtime {
	r := &Runtime{
		mailbox:  mb,
		routes:   routing.DefaultTable(),
		disabled: make(map[team.Identity]bool),
		logger:   logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessHookInput runs agent a for one event and never fails. Errors and panics
// are logged and turned into a no-op decision.
func (r *Runtime) ProcessHookInput(ctx context.Context, a Agent, in hooks.Input) (d hooks.Decision) {
	id := a.Profile().Identity
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("agent panicked", "agent", id, "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			d = hooks.NoOp()
		}
	}()

	d, err := r.Run(ctx, a, in)
	if err != nil {
		r.logger.Error("agent failed", "agent", id, "tool", in.ToolName, "error", err)
		return hooks.NoOp()
	}
	return d
}

// Run drains the agent's mailbox, dispatches each envelope, analyses the
// event and applies the decision policy.
func (r *Runtime) Run(ctx context.Context, a Agent, in hooks.Input) (hooks.Decision, error) {
	profile := a.Profile()
	c := &Context{
		Self:     profile,
		Root:     r.root,
		Routes:   r.routes,
		Logger:   r.logger.With("agent", profile.Identity),
		mailbox:  r.mailbox,
		disabled: r.disabled,
		now:      r.now,
	}

	r.dispatch(ctx, c, a)

	var decision hooks.Decision
	if in.ToolName != "" {
		out, err := a.Analyze(ctx, c, in)
		if err != nil {
			return hooks.NoOp(), fmt.Errorf("analysis failed: %w", err)
		}
		decision = r.decide(ctx, c, out)
		c.LogActivity(in.ToolName, in.FilePath())
	}

	if r.states != nil {
		if err := r.states.record(ctx, profile.Identity, r.now(), c.changes); err != nil {
			c.Logger.Warn("failed to save agent state", "error", err)
		}
	}
	return decision, nil
}

func (r *Runtime) dispatch(ctx context.Context, c *Context, a Agent) {
	envs, err := r.mailbox.Drain(ctx, c.Self.Identity)
	if err != nil {
		c.Logger.Warn("failed to drain mailbox", "error", err)
		return
	}
	handlers := a.Handlers()
	for _, env := range envs {
		h, ok := handlers[env.Type]
		if !ok {
			c.Logger.Debug("ignoring message", "type", env.Type, "from", env.From)
			continue
		}
		if err := h(ctx, c, env); err != nil {
			c.Logger.Warn("message handler failed", "type", env.Type, "from", env.From, "id", env.ID, "error", err)
		}
	}
}

// decide applies the decision policy. Critical findings are escalated to
// the coordinator, and critical security findings to the security
// engineer, before the blocking decision is returned.
func (r *Runtime) decide(ctx context.Context, c *Context, out Outcome) hooks.Decision {
	if out.Report == nil {
		return out.Decision
	}
	critical := out.Report.Findings.Of(review.Critical)
	if len(critical) > 0 {
		c.SendPriority(ctx, team.Coordinator, mailbox.CriticalIssueFound, map[string]any{
			"file_path": out.FilePath,
			"issues":    critical,
			"agent":     string(c.Self.Identity),
		}, mailbox.PriorityHigh)

		if security := critical.Security(); len(security) > 0 {
			c.SendPriority(ctx, team.SecurityEngineer, mailbox.SecurityReviewNeeded, map[string]any{
				"file_path":       out.FilePath,
				"security_issues": security,
				"agent":           string(c.Self.Identity),
			}, mailbox.PriorityHigh)
		}
	}
	return out.Report.Decision()
}

func baseName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
